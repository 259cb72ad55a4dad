package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/chris/mentor/internal/agent"
	"github.com/chris/mentor/internal/insight"
	"github.com/chris/mentor/internal/logger"
)

// Mentor is the slice of the service the bot talks to. Discord author IDs
// are used as user IDs.
type Mentor interface {
	Chat(ctx context.Context, userID, message string) (*agent.Reply, error)
	GetProfileAnalysis(ctx context.Context, userID string) (*insight.ProfileSummary, error)
	GetRecommendations(ctx context.Context, userID string) ([]insight.Recommendation, error)
	PredictRoutine(ctx context.Context, userID string, date time.Time) (*insight.RoutinePrediction, error)
	GetHabitAnalytics(ctx context.Context, userID, period string) (*insight.AnalyticsReport, error)
}

type Bot struct {
	session *discordgo.Session
	svc     Mentor
	limiter *userLimiter
	log     *logger.Logger
}

// NewBot connects to Discord. ratePerMinute caps messages per user.
func NewBot(token string, svc Mentor, ratePerMinute int, log *logger.Logger) (*Bot, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating Discord session: %w", err)
	}

	bot := &Bot{session: s, svc: svc, limiter: newUserLimiter(ratePerMinute), log: log.Named("discord")}
	s.AddHandler(bot.onMessage)
	s.Identify.Intents = discordgo.IntentsDirectMessages | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	if err := s.Open(); err != nil {
		return nil, fmt.Errorf("opening Discord connection: %w", err)
	}

	bot.log.Info("Discord bot connected", "username", s.State.User.Username)
	return bot, nil
}

// SendDM opens (or reuses) a DM channel with the user and sends content.
func (b *Bot) SendDM(userID, content string) error {
	ch, err := b.session.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("opening DM with %s: %w", userID, err)
	}
	for _, chunk := range splitMessage(content, maxMessageLen) {
		if _, err := b.session.ChannelMessageSend(ch.ID, chunk); err != nil {
			return fmt.Errorf("sending DM to %s: %w", userID, err)
		}
	}
	return nil
}

func (b *Bot) Close() {
	if err := b.session.Close(); err != nil {
		b.log.Warn("closing Discord session", "error", err)
	}
}
