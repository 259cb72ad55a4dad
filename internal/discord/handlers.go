package discord

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/chris/mentor/internal/model"
)

const (
	maxMessageLen = 2000
	replyTimeout  = 30 * time.Second
)

const slowDownText = "You're sending messages faster than I can think. Give me a minute and try again."

func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore own messages and other bots
	if m.Author == nil || m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}

	// Only respond to DMs or when mentioned
	isDM := m.GuildID == ""
	isMentioned := false
	for _, u := range m.Mentions {
		if u.ID == s.State.User.ID {
			isMentioned = true
			break
		}
	}
	if !isDM && !isMentioned {
		return
	}

	content := strings.TrimSpace(stripMention(m.Content, s.State.User.ID))
	if content == "" {
		return
	}

	var reply string
	if b.limiter.Allow(m.Author.ID) {
		_ = s.ChannelTyping(m.ChannelID)
		ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
		var err error
		reply, err = b.respond(ctx, m.Author.ID, content)
		cancel()
		if err != nil {
			b.log.Error("handling message", "user_id", m.Author.ID, "error", err)
			reply = "Something went wrong. Try again?"
		}
	} else {
		b.log.Info("rate limited", "user_id", m.Author.ID)
		reply = slowDownText
	}

	for _, chunk := range splitMessage(reply, maxMessageLen) {
		if _, err := s.ChannelMessageSend(m.ChannelID, chunk); err != nil {
			b.log.Warn("sending reply", "channel_id", m.ChannelID, "error", err)
			return
		}
	}
}

// respond routes "!" commands to the analysis pipeline and everything else
// to the chat responder.
func (b *Bot) respond(ctx context.Context, userID, content string) (string, error) {
	if !strings.HasPrefix(content, "!") {
		reply, err := b.svc.Chat(ctx, userID, content)
		if err != nil {
			return "", err
		}
		return reply.Message, nil
	}

	fields := strings.Fields(content)
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	switch cmd {
	case "!analytics":
		period := "week"
		if len(args) > 0 {
			period = args[0]
		}
		rep, err := b.svc.GetHabitAnalytics(ctx, userID, period)
		if errors.Is(err, model.ErrInvalidPeriod) {
			return "Pick a period: week, month or quarter.", nil
		}
		if err != nil {
			return "", err
		}
		return formatAnalytics(rep), nil

	case "!recommend", "!recommendations":
		recs, err := b.svc.GetRecommendations(ctx, userID)
		if err != nil {
			return "", err
		}
		return formatRecommendations(recs), nil

	case "!predict":
		var date time.Time
		if len(args) > 0 {
			d, err := time.Parse(time.DateOnly, args[0])
			if err != nil {
				return "Dates look like 2026-03-14.", nil
			}
			date = d
		}
		p, err := b.svc.PredictRoutine(ctx, userID, date)
		if err != nil {
			return "", err
		}
		return formatPrediction(p), nil

	case "!profile":
		s, err := b.svc.GetProfileAnalysis(ctx, userID)
		if err != nil {
			return "", err
		}
		return formatProfile(s), nil
	}
	return helpText, nil
}

func stripMention(s, userID string) string {
	s = strings.ReplaceAll(s, "<@"+userID+">", "")
	s = strings.ReplaceAll(s, "<@!"+userID+">", "")
	return s
}

func splitMessage(s string, maxLen int) []string {
	if len(s) <= maxLen {
		return []string{s}
	}
	var chunks []string
	for len(s) > 0 {
		end := maxLen
		if end > len(s) {
			end = len(s)
		}
		// Try to split at a newline
		if idx := strings.LastIndex(s[:end], "\n"); idx > 0 {
			end = idx + 1
		}
		chunks = append(chunks, s[:end])
		s = s[end:]
	}
	return chunks
}
