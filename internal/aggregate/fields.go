package aggregate

import (
	"fmt"

	"github.com/chris/mentor/internal/model"
)

// Field is a numeric value extracted from one record kind. ok is false when
// the record does not carry the value.
type Field struct {
	Name          string
	Label         string
	Unit          string
	LowerIsBetter bool
	extract       func(model.Record) (float64, bool)
}

// Predicate is a boolean derived from a record, used for streaks.
type Predicate struct {
	Name string
	test func(model.Record) bool
}

func habitField(name, label, unit string, lower bool, f func(model.HabitLog) (float64, bool)) Field {
	return Field{Name: name, Label: label, Unit: unit, LowerIsBetter: lower, extract: func(r model.Record) (float64, bool) {
		h, ok := r.(model.HabitLog)
		if !ok {
			return 0, false
		}
		return f(h)
	}}
}

func productivityField(name, label, unit string, lower bool, f func(model.ProductivityLog) (float64, bool)) Field {
	return Field{Name: name, Label: label, Unit: unit, LowerIsBetter: lower, extract: func(r model.Record) (float64, bool) {
		p, ok := r.(model.ProductivityLog)
		if !ok {
			return 0, false
		}
		return f(p)
	}}
}

func moodField(name, label string, lower bool, f func(model.MoodLog) int) Field {
	return Field{Name: name, Label: label, LowerIsBetter: lower, extract: func(r model.Record) (float64, bool) {
		m, ok := r.(model.MoodLog)
		if !ok {
			return 0, false
		}
		return float64(f(m)), true
	}}
}

func optFloat(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

func optInt(p *int) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return float64(*p), true
}

func always(n int) (float64, bool) { return float64(n), true }

var registry = map[model.Kind][]Field{
	model.KindHabit: {
		habitField("sleep_hours", "Sleep", "h", false, func(h model.HabitLog) (float64, bool) { return optFloat(h.SleepHours) }),
		habitField("exercise_minutes", "Exercise", "min", false, func(h model.HabitLog) (float64, bool) { return always(h.ExerciseMinutes) }),
		habitField("reading_minutes", "Reading", "min", false, func(h model.HabitLog) (float64, bool) { return always(h.ReadingMinutes) }),
		habitField("meditation_minutes", "Meditation", "min", false, func(h model.HabitLog) (float64, bool) { return always(h.MeditationMinutes) }),
		habitField("social_media_minutes", "Social media", "min", true, func(h model.HabitLog) (float64, bool) { return always(h.SocialMediaMinutes) }),
		habitField("gaming_minutes", "Gaming", "min", true, func(h model.HabitLog) (float64, bool) { return always(h.GamingMinutes) }),
		habitField("work_study_hours", "Work/study", "h", false, func(h model.HabitLog) (float64, bool) { return optFloat(h.WorkStudyHours) }),
		habitField("procrastination_level", "Procrastination", "", true, func(h model.HabitLog) (float64, bool) { return optInt(h.ProcrastinationLevel) }),
		habitField("water_intake_liters", "Water intake", "L", false, func(h model.HabitLog) (float64, bool) { return optFloat(h.WaterIntakeLiters) }),
		habitField("healthy_eating_score", "Healthy eating", "", false, func(h model.HabitLog) (float64, bool) { return optInt(h.HealthyEatingScore) }),
	},
	model.KindProductivity: {
		productivityField("tasks_planned", "Tasks planned", "", false, func(p model.ProductivityLog) (float64, bool) { return always(p.TasksPlanned) }),
		productivityField("tasks_completed", "Tasks completed", "", false, func(p model.ProductivityLog) (float64, bool) { return always(p.TasksCompleted) }),
		productivityField("completion_ratio", "Task completion", "", false, model.ProductivityLog.CompletionRatio),
		productivityField("focus_time_minutes", "Focus time", "min", false, func(p model.ProductivityLog) (float64, bool) { return always(p.FocusTimeMinutes) }),
		productivityField("productivity_score", "Productivity score", "", false, func(p model.ProductivityLog) (float64, bool) { return optInt(p.ProductivityScore) }),
		productivityField("energy_level", "Work energy", "", false, func(p model.ProductivityLog) (float64, bool) { return optInt(p.EnergyLevel) }),
		productivityField("deadlines_met", "Deadlines met", "", false, func(p model.ProductivityLog) (float64, bool) { return always(p.DeadlinesMet) }),
		productivityField("deadlines_missed", "Deadlines missed", "", true, func(p model.ProductivityLog) (float64, bool) { return always(p.DeadlinesMissed) }),
		productivityField("distraction_count", "Distractions", "", true, func(p model.ProductivityLog) (float64, bool) { return always(p.DistractionCount) }),
	},
	model.KindMood: {
		moodField("stress_level", "Stress", true, func(m model.MoodLog) int { return m.StressLevel }),
		moodField("happiness_level", "Happiness", false, func(m model.MoodLog) int { return m.HappinessLevel }),
		moodField("energy_level", "Energy", false, func(m model.MoodLog) int { return m.EnergyLevel }),
		moodField("motivation_level", "Motivation", false, func(m model.MoodLog) int { return m.MotivationLevel }),
		moodField("anxiety_level", "Anxiety", true, func(m model.MoodLog) int { return m.AnxietyLevel }),
	},
}

var predicates = map[model.Kind][]Predicate{
	model.KindHabit: {
		habitPredicate("exercise", func(h model.HabitLog) bool { return h.ExerciseMinutes > 0 }),
		habitPredicate("meditation", func(h model.HabitLog) bool { return h.MeditationMinutes > 0 }),
		habitPredicate("reading", func(h model.HabitLog) bool { return h.ReadingMinutes > 0 }),
	},
	model.KindProductivity: {
		productivityPredicate("focus", func(p model.ProductivityLog) bool { return p.FocusTimeMinutes > 0 }),
		productivityPredicate("all_tasks_done", func(p model.ProductivityLog) bool {
			return p.TasksPlanned > 0 && p.TasksCompleted >= p.TasksPlanned
		}),
	},
}

func habitPredicate(name string, f func(model.HabitLog) bool) Predicate {
	return Predicate{Name: name, test: func(r model.Record) bool {
		h, ok := r.(model.HabitLog)
		return ok && f(h)
	}}
}

func productivityPredicate(name string, f func(model.ProductivityLog) bool) Predicate {
	return Predicate{Name: name, test: func(r model.Record) bool {
		p, ok := r.(model.ProductivityLog)
		return ok && f(p)
	}}
}

// Fields returns every registered field for a kind, in a stable order.
func Fields(kind model.Kind) []Field {
	return registry[kind]
}

// LookupField finds one field by name.
func LookupField(kind model.Kind, name string) (Field, bool) {
	for _, f := range registry[kind] {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Value extracts the field from a record.
func (f Field) Value(r model.Record) (float64, bool) {
	return f.extract(r)
}

// Holds reports whether the predicate is true for a record.
func (p Predicate) Holds(r model.Record) bool {
	return p.test(r)
}

// Predicates returns the streak predicates of a kind.
func Predicates(kind model.Kind) []Predicate {
	return predicates[kind]
}

// LookupPredicate finds a streak predicate by kind and name.
func LookupPredicate(kind model.Kind, name string) (Predicate, bool) {
	for _, p := range predicates[kind] {
		if p.Name == name {
			return p, true
		}
	}
	return Predicate{}, false
}

func resolveFields(kind model.Kind, names []string) ([]Field, error) {
	all, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no numeric fields", model.ErrUnknownField, kind)
	}
	if len(names) == 0 {
		return all, nil
	}
	out := make([]Field, 0, len(names))
	for _, n := range names {
		f, ok := LookupField(kind, n)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", model.ErrUnknownField, kind, n)
		}
		out = append(out, f)
	}
	return out, nil
}
