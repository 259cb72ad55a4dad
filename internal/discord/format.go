package discord

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chris/mentor/internal/insight"
)

const helpText = "Talk to me normally, or use a command:\n" +
	"`!analytics [week|month|quarter]` trends and streaks\n" +
	"`!recommend` what to work on next\n" +
	"`!predict [YYYY-MM-DD]` tomorrow's likely routine\n" +
	"`!profile` your consistency, strengths and weaknesses"

func formatProfile(s *insight.ProfileSummary) string {
	if s.InsufficientData {
		return fmt.Sprintf("I don't have any logs from the last %d days yet. Log a day of habits and ask again.", s.WindowDays)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**Consistency %.1f/10** (%d of %d days tracked)\n", s.ConsistencyScore, s.DaysTracked, s.WindowDays)
	writeList(&b, "Strengths", findingStatements(s.Strengths))
	writeList(&b, "Needs work", findingStatements(s.Weaknesses))
	writeList(&b, "Patterns", s.Patterns)
	return strings.TrimSpace(b.String())
}

func findingStatements(fs []insight.Finding) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Statement
	}
	return out
}

func formatRecommendations(recs []insight.Recommendation) string {
	var b strings.Builder
	for i, r := range recs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "**%s** (%s priority)\n%s\n", r.Title, r.Priority, r.Description)
		if r.Reasoning != "" {
			fmt.Fprintf(&b, "_%s_\n", r.Reasoning)
		}
		for n, step := range r.Steps {
			fmt.Fprintf(&b, "%d. %s\n", n+1, step)
		}
	}
	return strings.TrimSpace(b.String())
}

func formatPrediction(p *insight.RoutinePrediction) string {
	if p.InsufficientData {
		return "Not enough history to predict " + p.Date.Format("Monday, January 2") + " yet."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n", p.Date.Format("Monday, January 2"))
	if len(p.ProductiveHours) > 0 {
		fmt.Fprintf(&b, "Most productive: %s\n", strings.Join(p.ProductiveHours, ", "))
	}
	var habits []string
	for _, name := range sortedKeys(p.HabitLikelihood) {
		line := name + ": " + percent(p.HabitLikelihood[name])
		if wd := p.WeekdayLikelihood[name]; wd != nil {
			line += fmt.Sprintf(" overall, %s on %ss", percent(wd), p.Date.Weekday())
		}
		habits = append(habits, line)
	}
	writeList(&b, "Likely habits", habits)
	writeList(&b, "Suggestions", p.Suggestions)
	return strings.TrimSpace(b.String())
}

func formatAnalytics(r *insight.AnalyticsReport) string {
	if r.InsufficientData {
		return fmt.Sprintf("Nothing logged between %s and %s.", r.Start.Format("Jan 2"), r.End.Format("Jan 2"))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**Your %s** (%s to %s, %d days tracked)\n", r.Period, r.Start.Format("Jan 2"), r.End.Format("Jan 2"), r.DaysTracked)
	writeList(&b, "Trends", r.Insights)

	var streaks []string
	for _, name := range sortedKeys(r.Streaks) {
		st := r.Streaks[name]
		if st.Longest == 0 {
			continue
		}
		streaks = append(streaks, fmt.Sprintf("%s: %d now, best %d", strings.ReplaceAll(name, "_", " "), st.Current, st.Longest))
	}
	writeList(&b, "Streaks", streaks)
	return strings.TrimSpace(b.String())
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n__%s__\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
}

func percent(p *float64) string {
	if p == nil {
		return "no data"
	}
	return fmt.Sprintf("%.0f%%", *p*100)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
