package mentor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/chris/mentor/internal/insight"
	"github.com/chris/mentor/internal/model"
	"github.com/dustin/go-humanize"
)

// goalsDueWithin is how far ahead the digest looks for goal deadlines.
const goalsDueWithin = 7 * 24 * time.Hour

// CheckIn is one composed digest.
type CheckIn struct {
	UserID     string    `json:"user_id"`
	Summary    string    `json:"summary"`
	CreatedAt  time.Time `json:"created_at"`
	PreviousAt time.Time `json:"previous_at,omitempty"`
}

// CheckIn composes the user's digest and records it.
func (s *Service) CheckIn(ctx context.Context, userID string) (*CheckIn, error) {
	c, err := s.Digest(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.RecordCheckIn(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RecordCheckIn stores a digest once it has been delivered.
func (s *Service) RecordCheckIn(ctx context.Context, c *CheckIn) error {
	if s.checkins == nil {
		return errors.New("recording check-in: no check-in store configured")
	}
	if _, err := s.checkins.CreateCheckIn(ctx, c.UserID, c.Summary, c.CreatedAt); err != nil {
		return fmt.Errorf("recording check-in: %w", err)
	}
	return nil
}

// Digest builds the check-in text from the local pipeline only: profile,
// weekly analytics, goals due soon and the top recommendation. The same
// data and clock always give the same text.
func (s *Service) Digest(ctx context.Context, userID string) (*CheckIn, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	c := &CheckIn{UserID: userID, CreatedAt: now}

	var b strings.Builder
	fmt.Fprintf(&b, "Check-in for %s\n", now.Format("Monday, January 2"))

	if s.checkins != nil {
		_, last, err := s.checkins.LastCheckIn(ctx, userID)
		if err != nil {
			s.log.Warn("getting last check-in", "user_id", userID, "error", err)
		}
		if !last.IsZero() {
			c.PreviousAt = last
			fmt.Fprintf(&b, "Last check-in was %s.\n", humanize.RelTime(last, now, "ago", "from now"))
		} else {
			b.WriteString("This is your first check-in.\n")
		}
	}

	summary, err := s.profiler.Build(ctx, userID, now, s.windowDays)
	if err != nil {
		return nil, fmt.Errorf("building check-in: %w", err)
	}
	if summary.InsufficientData {
		fmt.Fprintf(&b, "\nNothing logged in the last %d days. Log today's habits to get started.\n", summary.WindowDays)
	} else {
		fmt.Fprintf(&b, "\nConsistency %.1f/10, %d of the last %d days tracked.\n",
			summary.ConsistencyScore, summary.DaysTracked, summary.WindowDays)
	}

	report, err := s.reporter.Build(ctx, userID, insight.PeriodWeek)
	if err != nil {
		return nil, fmt.Errorf("building check-in: %w", err)
	}
	if len(report.Insights) > 0 {
		b.WriteString("\n## This week\n")
		for _, in := range report.Insights {
			fmt.Fprintf(&b, "- %s\n", in)
		}
	}
	if streaks := describeStreaks(report); len(streaks) > 0 {
		b.WriteString("\n## Streaks\n")
		for _, line := range streaks {
			fmt.Fprintf(&b, "- %s\n", line)
		}
	}

	goals, err := s.Goals(ctx, userID)
	if err != nil {
		s.log.Warn("listing goals for check-in", "user_id", userID, "error", err)
	}
	if due := goalsDueSoon(goals, now); len(due) > 0 {
		b.WriteString("\n## Goals due soon\n")
		for _, g := range due {
			fmt.Fprintf(&b, "- %s, due %s\n", g.Title, humanize.RelTime(*g.TargetDate, now, "ago", "from now"))
		}
	}

	prefs, err := s.Profile(ctx, userID)
	if err != nil {
		s.log.Warn("reading profile for check-in", "user_id", userID, "error", err)
	}
	if recs := s.recommender.Recommend(userID, summary, prefs); len(recs) > 0 {
		top := recs[0]
		fmt.Fprintf(&b, "\nFocus for today: %s.", top.Title)
		if len(top.Steps) > 0 {
			fmt.Fprintf(&b, " %s.", top.Steps[0])
		}
		b.WriteString("\n")
	}

	c.Summary = strings.TrimSpace(b.String())
	return c, nil
}

// describeStreaks lists live streaks, longest current run first.
func describeStreaks(rep *insight.AnalyticsReport) []string {
	names := make([]string, 0, len(rep.Streaks))
	for name, st := range rep.Streaks {
		if st.Current > 0 {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := rep.Streaks[names[i]], rep.Streaks[names[j]]
		if a.Current != b.Current {
			return a.Current > b.Current
		}
		return names[i] < names[j]
	})
	lines := make([]string, 0, len(names))
	for _, name := range names {
		st := rep.Streaks[name]
		lines = append(lines, fmt.Sprintf("%s: %d %s (best %d)",
			strings.ReplaceAll(name, "_", " "), st.Current, plural(st.Current, "day", "days"), st.Longest))
	}
	return lines
}

func goalsDueSoon(goals []model.Goal, now time.Time) []model.Goal {
	var out []model.Goal
	for _, g := range goals {
		if !g.Active(now) || g.TargetDate == nil {
			continue
		}
		if g.TargetDate.Sub(now) <= goalsDueWithin {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TargetDate.Before(*out[j].TargetDate) })
	return out
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
