package insight

import (
	"fmt"
	"sort"

	"github.com/chris/mentor/internal/model"
)

// Priority of a recommendation.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	}
	return 1
}

// PriorityFor maps a relative deviation from target to a priority:
// above 30% is high, 10-30% medium, anything less low.
func PriorityFor(deviation float64) Priority {
	switch {
	case deviation > 0.30:
		return PriorityHigh
	case deviation >= 0.10:
		return PriorityMedium
	}
	return PriorityLow
}

// Recommendation is one actionable suggestion.
type Recommendation struct {
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Reasoning   string   `json:"reasoning"`
	Priority    Priority `json:"priority"`
	Steps       []string `json:"steps"`
	Metric      string   `json:"metric,omitempty"`
}

type recTemplate struct {
	typ   string
	title string
	build func(f Finding, prefs *model.Profile) (description string, steps []string)
}

var recTemplates = map[string]recTemplate{
	MetricSleep: {
		typ:   "sleep",
		title: "Improve your sleep schedule",
		build: func(f Finding, prefs *model.Profile) (string, []string) {
			goal := f.Target.Midpoint()
			if goal == 0 {
				goal = 8
			}
			if prefs != nil && prefs.SleepGoalHours > 0 {
				goal = prefs.SleepGoalHours
			}
			return fmt.Sprintf("You are averaging %.1fh of sleep. Aim for a steady %.1fh with a fixed bedtime and wake time.", f.Value, goal),
				[]string{
					"Set a bedtime alarm 30 minutes before lights out",
					"Keep screens out of the bedroom for the last hour",
					"Wake up at the same time every day, weekends included",
				}
		},
	},
	MetricExercise: {
		typ:   "workout",
		title: "Build a regular workout routine",
		build: func(f Finding, prefs *model.Profile) (string, []string) {
			activity := "a brisk walk"
			if prefs != nil && prefs.ExercisePreference != "" {
				activity = prefs.ExercisePreference
			}
			return fmt.Sprintf("You exercised on %.0f%% of logged days. Schedule %s at least every other day.", f.Value*100, activity),
				[]string{
					fmt.Sprintf("Put three %s sessions in your calendar this week", activity),
					"Start with 20 minutes so the habit is easy to keep",
					"Log each session the same day",
				}
		},
	},
	MetricTaskCompletion: {
		typ:   "productivity",
		title: "Plan fewer, finish more",
		build: func(f Finding, prefs *model.Profile) (string, []string) {
			steps := []string{
				"Pick at most three must-do tasks each morning",
				"Break large tasks into pieces under an hour",
			}
			if prefs != nil && prefs.PreferredWorkHours != "" {
				steps = append(steps, fmt.Sprintf("Do the hardest task during your preferred hours (%s)", prefs.PreferredWorkHours))
			} else {
				steps = append(steps, "Do the hardest task first")
			}
			return fmt.Sprintf("You are completing %.0f%% of planned tasks. Smaller plans that get finished build momentum.", f.Value*100), steps
		},
	},
	MetricProcrastination: {
		typ:   "productivity",
		title: "Beat procrastination with short starts",
		build: func(f Finding, prefs *model.Profile) (string, []string) {
			return fmt.Sprintf("Your procrastination level averages %.1f/10. Lower the cost of starting.", f.Value),
				[]string{
					"Use a 25-minute timer and commit only to starting",
					"Write down the very next physical action for each task",
					"Silence notifications during focus blocks",
				}
		},
	},
	MetricStress: {
		typ:   "relaxation",
		title: "Make room to decompress",
		build: func(f Finding, prefs *model.Profile) (string, []string) {
			return fmt.Sprintf("Your stress averages %.1f/10. Short daily recovery breaks help bring it down.", f.Value),
				[]string{
					"Take a 10-minute breathing or meditation break each afternoon",
					"Note what triggered stress when you log your mood",
					"Protect one evening a week with no work",
				}
		},
	},
	MetricHappiness: {
		typ:   "wellbeing",
		title: "Schedule things that lift your mood",
		build: func(f Finding, prefs *model.Profile) (string, []string) {
			return fmt.Sprintf("Your happiness averages %.1f/10. Plan small activities you enjoy.", f.Value),
				[]string{
					"List three activities that reliably improve your mood",
					"Put one of them on the calendar every day this week",
					"Spend time outside or with friends at least twice a week",
				}
		},
	},
	MetricSocialMedia: {
		typ:   "digital_wellbeing",
		title: "Cut back on social media",
		build: func(f Finding, prefs *model.Profile) (string, []string) {
			return fmt.Sprintf("You spend about %.0f minutes a day on social media. Reclaim some of that time.", f.Value),
				[]string{
					"Set a daily app limit 30 minutes below your current average",
					"Move social apps off your home screen",
					"Replace the first scroll of the day with reading",
				}
		},
	},
}

// Recommender turns profile weaknesses into ranked suggestions.
type Recommender struct{}

func NewRecommender() *Recommender { return &Recommender{} }

// Recommend ranks one suggestion per weakness, highest priority first and
// in discovery order among equals, keeping one per type. It never returns
// an empty list. Output depends only on its inputs.
func (r *Recommender) Recommend(userID string, summary *ProfileSummary, prefs *model.Profile) []Recommendation {
	if summary != nil && summary.UserID != "" && summary.UserID != userID {
		summary = nil
	}
	if prefs != nil && prefs.UserID != "" && prefs.UserID != userID {
		prefs = nil
	}

	var recs []Recommendation
	if summary != nil {
		for _, f := range summary.Weaknesses {
			tpl, ok := recTemplates[f.Metric]
			if !ok {
				continue
			}
			desc, steps := tpl.build(f, prefs)
			recs = append(recs, Recommendation{
				Type:        tpl.typ,
				Title:       tpl.title,
				Description: desc,
				Reasoning:   fmt.Sprintf("%s, %.0f%% away from target.", f.Statement, f.Deviation*100),
				Priority:    PriorityFor(f.Deviation),
				Steps:       steps,
				Metric:      f.Metric,
			})
		}
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Priority.rank() > recs[j].Priority.rank() })
	recs = dedupeByType(recs)

	if len(recs) == 0 {
		return []Recommendation{encouragement(summary)}
	}
	return recs
}

// dedupeByType keeps the first occurrence of each type. recs must already
// be sorted by priority.
func dedupeByType(recs []Recommendation) []Recommendation {
	seen := make(map[string]bool, len(recs))
	out := recs[:0]
	for _, rec := range recs {
		if seen[rec.Type] {
			continue
		}
		seen[rec.Type] = true
		out = append(out, rec)
	}
	return out
}

func encouragement(summary *ProfileSummary) Recommendation {
	if summary == nil || summary.InsufficientData {
		return Recommendation{
			Type:        "encouragement",
			Title:       "Start tracking your days",
			Description: "Log your sleep, mood and tasks for a week to unlock personal insights.",
			Reasoning:   "There is not enough data yet to spot patterns.",
			Priority:    PriorityLow,
			Steps: []string{
				"Log sleep and exercise each morning",
				"Record your mood once a day",
				"Note planned and completed tasks in the evening",
			},
		}
	}
	return Recommendation{
		Type:        "encouragement",
		Title:       "Keep up the good work",
		Description: "Every tracked area is on target. Stay consistent and consider a new stretch goal.",
		Reasoning:   fmt.Sprintf("No weaknesses found over the last %d days; consistency score %.1f/10.", summary.WindowDays, summary.ConsistencyScore),
		Priority:    PriorityLow,
		Steps: []string{
			"Keep logging daily to protect your streaks",
			"Pick one habit to push a little further this week",
		},
	}
}
