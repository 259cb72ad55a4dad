package discord

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/chris/mentor/internal/agent"
	"github.com/chris/mentor/internal/aggregate"
	"github.com/chris/mentor/internal/insight"
	"github.com/chris/mentor/internal/logger"
	"github.com/chris/mentor/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMentor struct {
	lastUser   string
	lastPeriod string
	lastDate   time.Time
}

func (f *fakeMentor) Chat(_ context.Context, userID, message string) (*agent.Reply, error) {
	f.lastUser = userID
	return &agent.Reply{Message: "echo: " + message, Source: model.SourceModel}, nil
}

func (f *fakeMentor) GetProfileAnalysis(_ context.Context, userID string) (*insight.ProfileSummary, error) {
	f.lastUser = userID
	return &insight.ProfileSummary{
		UserID:           userID,
		WindowDays:       30,
		DaysTracked:      12,
		ConsistencyScore: 6.5,
		Strengths:        []insight.Finding{{Metric: "sleep", Statement: "You average 7.8 hours of sleep"}},
		Patterns:         []string{"More exercise goes with higher energy the next day"},
	}, nil
}

func (f *fakeMentor) GetRecommendations(_ context.Context, userID string) ([]insight.Recommendation, error) {
	f.lastUser = userID
	return []insight.Recommendation{{
		Type: "workout", Title: "Move a little every day", Description: "Short sessions count.",
		Reasoning: "Exercise days are 40% of the target.", Priority: insight.PriorityHigh,
		Steps: []string{"Walk 10 minutes after lunch", "Book a swim"},
	}}, nil
}

func (f *fakeMentor) PredictRoutine(_ context.Context, userID string, date time.Time) (*insight.RoutinePrediction, error) {
	f.lastUser, f.lastDate = userID, date
	if date.IsZero() {
		date = time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	}
	return &insight.RoutinePrediction{
		UserID:            userID,
		Date:              date,
		ProductiveHours:   []string{"9-11 AM"},
		HabitLikelihood:   map[string]*float64{"exercise": model.Ptr(0.5), "reading": nil},
		WeekdayLikelihood: map[string]*float64{"exercise": model.Ptr(1.0)},
	}, nil
}

func (f *fakeMentor) GetHabitAnalytics(_ context.Context, userID, period string) (*insight.AnalyticsReport, error) {
	f.lastUser, f.lastPeriod = userID, period
	p, err := insight.ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	return &insight.AnalyticsReport{
		UserID:      userID,
		Period:      p,
		Start:       time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		DaysTracked: 5,
		Insights:    []string{"Exercise rose 100.0% this week (20 min to 40 min), improving."},
		Streaks:     map[string]aggregate.Streak{"exercise": {Current: 2, Longest: 3}, "reading": {}},
	}, nil
}

func newTestBot(svc Mentor) *Bot {
	return &Bot{svc: svc, limiter: newUserLimiter(0), log: logger.Nop()}
}

func TestRespond_PlainTextIsChat(t *testing.T) {
	svc := &fakeMentor{}
	out, err := newTestBot(svc).respond(context.Background(), "42", "how was my week?")
	require.NoError(t, err)
	assert.Equal(t, "echo: how was my week?", out)
	assert.Equal(t, "42", svc.lastUser)
}

func TestRespond_Commands(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"!analytics", []string{"**Your week**", "Exercise rose 100.0%", "exercise: 2 now, best 3"}},
		{"!ANALYTICS month", []string{"**Your month**"}},
		{"!analytics decade", []string{"Pick a period"}},
		{"!recommend", []string{"**Move a little every day** (high priority)", "_Exercise days", "1. Walk 10 minutes", "2. Book a swim"}},
		{"!profile", []string{"**Consistency 6.5/10** (12 of 30 days tracked)", "__Strengths__", "- You average 7.8 hours"}},
		{"!predict", []string{"**Wednesday, March 11**", "Most productive: 9-11 AM", "exercise: 50% overall, 100% on Wednesdays", "reading: no data"}},
		{"!predict tomorrow", []string{"Dates look like"}},
		{"!what", []string{"`!analytics"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			out, err := newTestBot(&fakeMentor{}).respond(context.Background(), "42", tt.in)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestRespond_PredictParsesDate(t *testing.T) {
	svc := &fakeMentor{}
	_, err := newTestBot(svc).respond(context.Background(), "42", "!predict 2026-03-14")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), svc.lastDate)
}

func TestFormatAnalytics_SkipsEmptyStreaks(t *testing.T) {
	rep, err := (&fakeMentor{}).GetHabitAnalytics(context.Background(), "42", "week")
	require.NoError(t, err)
	assert.NotContains(t, formatAnalytics(rep), "reading")
}

func TestUserLimiter(t *testing.T) {
	l := newUserLimiter(2)
	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "buckets are per user")

	unlimited := newUserLimiter(0)
	for i := 0; i < 100; i++ {
		require.True(t, unlimited.Allow("a"))
	}
}

func TestStripMention(t *testing.T) {
	tests := []struct{ in, userID, want string }{
		{"<@123456> hello", "123456", " hello"},
		{"<@!123456> hello", "123456", " hello"},
		{"<@123> and <@!123>", "123", " and "},
		{"just text", "123", "just text"},
		{"<@999> hello", "123", "<@999> hello"},
		{"", "123", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripMention(tt.in, tt.userID), tt.in)
	}
}

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		maxLen int
		want   []string
	}{
		{"short", "hello", 2000, []string{"hello"}},
		{"exact limit", strings.Repeat("a", 2000), 2000, []string{strings.Repeat("a", 2000)}},
		{"at newline", strings.Repeat("a", 15) + "\n" + strings.Repeat("b", 15), 20,
			[]string{strings.Repeat("a", 15) + "\n", strings.Repeat("b", 15)}},
		{"hard split", strings.Repeat("x", 50), 20,
			[]string{strings.Repeat("x", 20), strings.Repeat("x", 20), strings.Repeat("x", 10)}},
		{"empty", "", 2000, []string{""}},
		{"last newline wins", "line1\nline2\nline3\nline4", 12, []string{"line1\nline2\n", "line3\n", "line4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitMessage(tt.in, tt.maxLen)
			assert.Equal(t, tt.want, got, fmt.Sprintf("%q", got))
		})
	}
}
