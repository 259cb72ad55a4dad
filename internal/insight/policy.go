package insight

import (
	"fmt"

	"github.com/chris/mentor/internal/aggregate"
)

// Range is a reference target. Min 0 means no lower bound, Max 0 means no
// upper bound.
type Range struct {
	Min float64 `json:"min,omitempty"`
	Max float64 `json:"max,omitempty"`
}

// Deviation returns the relative distance of v outside the range, 0 inside.
func (r Range) Deviation(v float64) float64 {
	switch {
	case r.Min > 0 && v < r.Min:
		return (r.Min - v) / r.Min
	case r.Max > 0 && v > r.Max:
		return (v - r.Max) / r.Max
	}
	return 0
}

// Midpoint is the middle of a two-sided range, else whichever bound is set.
func (r Range) Midpoint() float64 {
	if r.Min > 0 && r.Max > 0 {
		return (r.Min + r.Max) / 2
	}
	return r.Min + r.Max
}

func (r Range) Contains(v float64) bool {
	return r.Deviation(v) == 0
}

// Policy holds the tunable constants of profiling. They are product
// choices; tests assert direction and monotonicity, not exact values.
type Policy struct {
	WindowDays int

	// Consistency = 10 * (CoverageWeight*coverage + RegularityWeight*regularity)
	// / (CoverageWeight + RegularityWeight), where coverage is the fraction of
	// window days with any log and regularity is 1/(1+var(sleep)/SleepVarianceScale).
	CoverageWeight     float64
	RegularityWeight   float64
	SleepVarianceScale float64

	MinPairedSamples int
	MinCorrelation   float64

	Targets map[string]Range
}

// DefaultPolicy returns the documented defaults.
func DefaultPolicy() Policy {
	return Policy{
		WindowDays:         30,
		CoverageWeight:     0.6,
		RegularityWeight:   0.4,
		SleepVarianceScale: 1.0,
		MinPairedSamples:   7,
		MinCorrelation:     0.3,
		Targets: map[string]Range{
			MetricSleep:           {Min: 7, Max: 9},
			MetricExercise:        {Min: 0.5},
			MetricTaskCompletion:  {Min: 0.7},
			MetricStress:          {Max: 5},
			MetricHappiness:       {Min: 6},
			MetricSocialMedia:     {Max: 90},
			MetricProcrastination: {Max: 5},
		},
	}
}

// Metrics compared against targets.
const (
	MetricSleep           = "sleep"
	MetricExercise        = "exercise"
	MetricTaskCompletion  = "task_completion"
	MetricStress          = "stress"
	MetricHappiness       = "happiness"
	MetricSocialMedia     = "social_media"
	MetricProcrastination = "procrastination"
)

// windows bundles the three aggregations a profile is built from.
type windows struct {
	habit, productivity, mood *aggregate.WindowStats
}

type metric struct {
	name    string
	measure func(w windows) (float64, bool)
	// describe renders the statement for a strength (met) or weakness.
	describe func(v float64, r Range, met bool) string
}

func fieldMean(w *aggregate.WindowStats, field string) (float64, bool) {
	fs, ok := w.Fields[field]
	if !ok || fs.Count == 0 {
		return 0, false
	}
	return fs.Mean, true
}

// metrics is evaluated in order; the order is the discovery order the
// recommender uses to break priority ties.
var metrics = []metric{
	{
		name:    MetricSleep,
		measure: func(w windows) (float64, bool) { return fieldMean(w.habit, "sleep_hours") },
		describe: func(v float64, r Range, met bool) string {
			switch {
			case met:
				return fmt.Sprintf("Healthy sleep: averaging %.1fh per night (target %.0f-%.0fh)", v, r.Min, r.Max)
			case v < r.Min:
				return fmt.Sprintf("Short on sleep: averaging %.1fh per night (target %.0f-%.0fh)", v, r.Min, r.Max)
			default:
				return fmt.Sprintf("Oversleeping: averaging %.1fh per night (target %.0f-%.0fh)", v, r.Min, r.Max)
			}
		},
	},
	{
		name: MetricExercise,
		measure: func(w windows) (float64, bool) {
			if w.habit.DaysWithData == 0 {
				return 0, false
			}
			p, _ := aggregate.LookupPredicate(w.habit.Kind, "exercise")
			days := 0
			for _, r := range w.habit.Records() {
				if p.Holds(r) {
					days++
				}
			}
			return float64(days) / float64(w.habit.DaysWithData), true
		},
		describe: func(v float64, r Range, met bool) string {
			if met {
				return fmt.Sprintf("Regular exercise: active on %.0f%% of logged days", v*100)
			}
			return fmt.Sprintf("Infrequent exercise: active on only %.0f%% of logged days (target %.0f%%)", v*100, r.Min*100)
		},
	},
	{
		name:    MetricTaskCompletion,
		measure: func(w windows) (float64, bool) { return fieldMean(w.productivity, "completion_ratio") },
		describe: func(v float64, r Range, met bool) string {
			if met {
				return fmt.Sprintf("Strong follow-through: completing %.0f%% of planned tasks", v*100)
			}
			return fmt.Sprintf("Low task completion: finishing %.0f%% of planned tasks (target %.0f%%)", v*100, r.Min*100)
		},
	},
	{
		name:    MetricStress,
		measure: func(w windows) (float64, bool) { return fieldMean(w.mood, "stress_level") },
		describe: func(v float64, r Range, met bool) string {
			if met {
				return fmt.Sprintf("Stress under control: averaging %.1f/10", v)
			}
			return fmt.Sprintf("Elevated stress: averaging %.1f/10 (target %.0f or below)", v, r.Max)
		},
	},
	{
		name:    MetricHappiness,
		measure: func(w windows) (float64, bool) { return fieldMean(w.mood, "happiness_level") },
		describe: func(v float64, r Range, met bool) string {
			if met {
				return fmt.Sprintf("Positive mood: happiness averaging %.1f/10", v)
			}
			return fmt.Sprintf("Low mood: happiness averaging %.1f/10 (target %.0f or above)", v, r.Min)
		},
	},
	{
		name:    MetricSocialMedia,
		measure: func(w windows) (float64, bool) { return fieldMean(w.habit, "social_media_minutes") },
		describe: func(v float64, r Range, met bool) string {
			if met {
				return fmt.Sprintf("Moderate screen time: %.0f min of social media per day", v)
			}
			return fmt.Sprintf("Heavy screen time: %.0f min of social media per day (target %.0f or below)", v, r.Max)
		},
	},
	{
		name:    MetricProcrastination,
		measure: func(w windows) (float64, bool) { return fieldMean(w.habit, "procrastination_level") },
		describe: func(v float64, r Range, met bool) string {
			if met {
				return fmt.Sprintf("Low procrastination: averaging %.1f/10", v)
			}
			return fmt.Sprintf("Frequent procrastination: averaging %.1f/10 (target %.0f or below)", v, r.Max)
		},
	},
}
