package agent

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/chris/mentor/internal/insight"
	"github.com/chris/mentor/internal/logger"
	"github.com/chris/mentor/internal/model"
	"github.com/dustin/go-humanize"
)

// DefaultHistoryTurns is how many recent chat turns the context starts from.
const DefaultHistoryTurns = 10

// section is one block of the context. When over budget, lines are removed
// from the front (dropOldest) or the back.
type section struct {
	title      string
	lines      []string
	dropOldest bool
}

func (s section) render() string {
	if len(s.lines) == 0 {
		return ""
	}
	return "## " + s.title + "\n" + strings.Join(s.lines, "\n")
}

func renderSections(sections []section) string {
	var parts []string
	for _, s := range sections {
		if r := s.render(); r != "" {
			parts = append(parts, r)
		}
	}
	return strings.Join(parts, "\n\n")
}

// ContextBuilder assembles the per-user prompt context in priority order:
// profile, active goals, recent chat, today's logs.
type ContextBuilder struct {
	repo         model.Repository
	profiler     *insight.Profiler
	log          *logger.Logger
	now          func() time.Time
	historyTurns int
	windowDays   int
}

func NewContextBuilder(repo model.Repository, profiler *insight.Profiler, log *logger.Logger, now func() time.Time, historyTurns, windowDays int) *ContextBuilder {
	if now == nil {
		now = time.Now
	}
	if historyTurns <= 0 {
		historyTurns = DefaultHistoryTurns
	}
	return &ContextBuilder{
		repo:         repo,
		profiler:     profiler,
		log:          log.Named("context"),
		now:          now,
		historyTurns: historyTurns,
		windowDays:   windowDays,
	}
}

// Build renders the context for userID within maxChars (no limit when
// maxChars <= 0). Records owned by anyone else are dropped and logged.
func (b *ContextBuilder) Build(ctx context.Context, userID string, maxChars int) (string, error) {
	now := b.now()
	today := model.Day(now)

	profile, err := b.profileSection(ctx, userID, today)
	if err != nil {
		return "", err
	}
	goals, err := b.goalSection(ctx, userID, now)
	if err != nil {
		return "", err
	}
	chat, err := b.chatSection(ctx, userID, now)
	if err != nil {
		return "", err
	}
	logs, err := b.todaySection(ctx, userID, now)
	if err != nil {
		return "", err
	}

	sections := []section{profile, goals, chat, logs}
	out := renderSections(sections)
	if maxChars <= 0 || len(out) <= maxChars {
		return out, nil
	}
	return truncate(sections, maxChars), nil
}

// truncate removes lines from the lowest-priority section first. The first
// line of the top section survives until the end, then is hard cut.
func truncate(sections []section, maxChars int) string {
	for i := len(sections) - 1; i >= 0; i-- {
		s := &sections[i]
		floor := 0
		if i == 0 {
			floor = 1
		}
		for len(s.lines) > floor && len(renderSections(sections)) > maxChars {
			if s.dropOldest {
				s.lines = s.lines[1:]
			} else {
				s.lines = s.lines[:len(s.lines)-1]
			}
		}
		if len(renderSections(sections)) <= maxChars {
			break
		}
	}
	out := renderSections(sections)
	if len(out) > maxChars {
		out = cutRunes(out, maxChars)
	}
	return out
}

// cutRunes shortens s to at most n bytes on a rune boundary.
func cutRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// owned keeps records that belong to userID. Anything else is a
// cross-user violation: dropped and logged at error level.
func (b *ContextBuilder) owned(userID string, recs []model.Record) []model.Record {
	out := recs[:0:0]
	for _, r := range recs {
		if r.Owner() != userID {
			b.log.Error("cross_user_violation", "user_id", userID, "record_owner", r.Owner(), "kind", r.Kind())
			continue
		}
		out = append(out, r)
	}
	return out
}

func (b *ContextBuilder) read(ctx context.Context, userID string, kind model.Kind, start, end time.Time) ([]model.Record, error) {
	recs, err := b.repo.ReadRecords(ctx, userID, kind, start, end)
	if err != nil {
		return nil, fmt.Errorf("building context: %w", err)
	}
	return b.owned(userID, recs), nil
}

func (b *ContextBuilder) profileSection(ctx context.Context, userID string, today time.Time) (section, error) {
	s := section{title: "Profile"}

	recs, err := b.read(ctx, userID, model.KindProfile, time.Time{}, today)
	if err != nil {
		return s, err
	}
	if profiles := model.Collect[model.Profile](recs); len(profiles) > 0 {
		s.lines = append(s.lines, describeProfile(profiles[0])...)
	}

	if b.profiler == nil {
		return s, nil
	}
	sum, err := b.profiler.Build(ctx, userID, today, b.windowDays)
	if err != nil {
		return s, fmt.Errorf("building context: %w", err)
	}
	if sum.UserID != userID {
		b.log.Error("cross_user_violation", "user_id", userID, "record_owner", sum.UserID, "kind", "profile_summary")
		return s, nil
	}
	s.lines = append(s.lines, describeSummary(sum)...)
	return s, nil
}

func describeProfile(p model.Profile) []string {
	var about []string
	if p.Occupation != "" {
		about = append(about, p.Occupation)
	}
	if p.Age != nil {
		about = append(about, fmt.Sprintf("age %d", *p.Age))
	}
	if p.PersonalityType != "" {
		about = append(about, p.PersonalityType)
	}
	if p.DisciplineLevel != nil {
		about = append(about, fmt.Sprintf("self-rated discipline %d/10", *p.DisciplineLevel))
	}

	var lines []string
	if len(about) > 0 {
		lines = append(lines, "About: "+strings.Join(about, ", "))
	}
	prefs := []string{fmt.Sprintf("sleep goal %.1fh", p.SleepGoalHours)}
	if p.ExercisePreference != "" {
		prefs = append(prefs, "exercise: "+p.ExercisePreference)
	}
	if p.PreferredWorkHours != "" {
		prefs = append(prefs, "work hours: "+p.PreferredWorkHours)
	}
	return append(lines, "Preferences: "+strings.Join(prefs, ", "))
}

func describeSummary(s *insight.ProfileSummary) []string {
	if s.InsufficientData {
		return []string{fmt.Sprintf("No logs in the last %d days yet.", s.WindowDays)}
	}
	lines := []string{fmt.Sprintf("Consistency %.1f/10, %d of the last %d days tracked", s.ConsistencyScore, s.DaysTracked, s.WindowDays)}
	for _, f := range s.Strengths {
		lines = append(lines, "Strength: "+f.Statement)
	}
	for _, f := range s.Weaknesses {
		lines = append(lines, "Weakness: "+f.Statement)
	}
	for _, p := range s.Patterns {
		lines = append(lines, "Pattern: "+p)
	}
	return lines
}

func (b *ContextBuilder) goalSection(ctx context.Context, userID string, now time.Time) (section, error) {
	s := section{title: "Active goals"}
	recs, err := b.read(ctx, userID, model.KindGoal, time.Time{}, model.Day(now))
	if err != nil {
		return s, err
	}
	for _, g := range model.Collect[model.Goal](recs) {
		if !g.Active(now) {
			continue
		}
		line := fmt.Sprintf("- %s (%s", g.Title, g.GoalType)
		if g.Category != "" {
			line += ", " + g.Category
		}
		line += ")"
		if p, ok := g.Progress(); ok {
			line += fmt.Sprintf(": %.0f%% done (%g/%g %s)", p*100, g.CurrentProgress, *g.TargetValue, g.Unit)
		}
		if g.TargetDate != nil {
			line += fmt.Sprintf(", due %s (%s)", g.TargetDate.Format("2006-01-02"), humanize.RelTime(*g.TargetDate, now, "ago", "from now"))
		}
		s.lines = append(s.lines, line)
	}
	return s, nil
}

func (b *ContextBuilder) chatSection(ctx context.Context, userID string, now time.Time) (section, error) {
	s := section{title: "Recent conversation", dropOldest: true}
	recs, err := b.read(ctx, userID, model.KindChat, time.Time{}, model.Day(now))
	if err != nil {
		return s, err
	}
	turns := model.Collect[model.ChatTurn](recs)
	if len(turns) > b.historyTurns {
		turns = turns[len(turns)-b.historyTurns:]
	}
	for _, t := range turns {
		s.lines = append(s.lines, fmt.Sprintf("- [%s] %s: %s", humanize.RelTime(t.Timestamp, now, "ago", "from now"), t.Role, oneLine(t.Message)))
	}
	return s, nil
}

func (b *ContextBuilder) todaySection(ctx context.Context, userID string, now time.Time) (section, error) {
	s := section{title: "Today so far"}
	today := model.Day(now)
	for _, kind := range []model.Kind{model.KindHabit, model.KindProductivity, model.KindMood} {
		recs, err := b.read(ctx, userID, kind, today, today)
		if err != nil {
			return s, err
		}
		for _, r := range recs {
			s.lines = append(s.lines, describeLog(r, now))
		}
	}
	return s, nil
}

func describeLog(r model.Record, now time.Time) string {
	switch l := r.(type) {
	case model.HabitLog:
		parts := []string{}
		if l.SleepHours != nil {
			parts = append(parts, fmt.Sprintf("slept %.1fh", *l.SleepHours))
		}
		parts = append(parts,
			fmt.Sprintf("exercise %d min", l.ExerciseMinutes),
			fmt.Sprintf("reading %d min", l.ReadingMinutes),
			fmt.Sprintf("meditation %d min", l.MeditationMinutes),
			fmt.Sprintf("social media %d min", l.SocialMediaMinutes))
		if l.ProcrastinationLevel != nil {
			parts = append(parts, fmt.Sprintf("procrastination %d/10", *l.ProcrastinationLevel))
		}
		return "- Habits: " + strings.Join(parts, ", ")
	case model.ProductivityLog:
		line := fmt.Sprintf("- Work: %d/%d tasks done, %d min focus", l.TasksCompleted, l.TasksPlanned, l.FocusTimeMinutes)
		if l.ProductivityScore != nil {
			line += fmt.Sprintf(", score %d/10", *l.ProductivityScore)
		}
		return line
	case model.MoodLog:
		line := fmt.Sprintf("- Mood (%s): stress %d, happiness %d, energy %d, motivation %d, anxiety %d",
			humanize.RelTime(l.Timestamp, now, "ago", "from now"),
			l.StressLevel, l.HappinessLevel, l.EnergyLevel, l.MotivationLevel, l.AnxietyLevel)
		if len(l.Triggers) > 0 {
			line += " (triggers: " + strings.Join(l.Triggers, ", ") + ")"
		}
		return line
	}
	return "- " + string(r.Kind())
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
