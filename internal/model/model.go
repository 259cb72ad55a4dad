package model

import "time"

// Record is one stored row of any kind. The concrete types below are the
// only implementations.
type Record interface {
	Kind() Kind
	Owner() string
	// Day is the calendar day the record belongs to, in UTC.
	Day() time.Time
}

// HabitLog is the daily lifestyle log. One per user per date.
type HabitLog struct {
	ID                   int64     `json:"id,omitempty"`
	UserID               string    `json:"user_id" validate:"required"`
	Date                 time.Time `json:"date" validate:"required"`
	SleepHours           *float64  `json:"sleep_hours,omitempty" validate:"omitempty,gte=0,lte=24"`
	WakeTime             string    `json:"wake_time,omitempty" validate:"omitempty,datetime=15:04"`
	SleepTime            string    `json:"sleep_time,omitempty" validate:"omitempty,datetime=15:04"`
	ExerciseMinutes      int       `json:"exercise_minutes" validate:"gte=0,lte=1440"`
	ReadingMinutes       int       `json:"reading_minutes" validate:"gte=0,lte=1440"`
	MeditationMinutes    int       `json:"meditation_minutes" validate:"gte=0,lte=1440"`
	SocialMediaMinutes   int       `json:"social_media_minutes" validate:"gte=0,lte=1440"`
	GamingMinutes        int       `json:"gaming_minutes" validate:"gte=0,lte=1440"`
	WorkStudyHours       *float64  `json:"work_study_hours,omitempty" validate:"omitempty,gte=0,lte=24"`
	ProcrastinationLevel *int      `json:"procrastination_level,omitempty" validate:"omitempty,gte=1,lte=10"`
	MealsCount           *int      `json:"meals_count,omitempty" validate:"omitempty,gte=0,lte=20"`
	WaterIntakeLiters    *float64  `json:"water_intake_liters,omitempty" validate:"omitempty,gte=0,lte=20"`
	HealthyEatingScore   *int      `json:"healthy_eating_score,omitempty" validate:"omitempty,gte=1,lte=10"`
	Notes                string    `json:"notes,omitempty" validate:"max=2000"`
}

func (h HabitLog) Kind() Kind     { return KindHabit }
func (h HabitLog) Owner() string  { return h.UserID }
func (h HabitLog) Day() time.Time { return Day(h.Date) }

// ProductivityLog is the daily work log. One per user per date.
type ProductivityLog struct {
	ID                 int64     `json:"id,omitempty"`
	UserID             string    `json:"user_id" validate:"required"`
	Date               time.Time `json:"date" validate:"required"`
	TasksPlanned       int       `json:"tasks_planned" validate:"gte=0"`
	TasksCompleted     int       `json:"tasks_completed" validate:"gte=0,ltefield=TasksPlanned"`
	TasksPending       int       `json:"tasks_pending" validate:"gte=0"`
	DeadlinesMet       int       `json:"deadlines_met" validate:"gte=0"`
	DeadlinesMissed    int       `json:"deadlines_missed" validate:"gte=0"`
	FocusTimeMinutes   int       `json:"focus_time_minutes" validate:"gte=0,lte=1440"`
	DistractionCount   int       `json:"distraction_count" validate:"gte=0"`
	ProductivityScore  *int      `json:"productivity_score,omitempty" validate:"omitempty,gte=1,lte=10"`
	EnergyLevel        *int      `json:"energy_level,omitempty" validate:"omitempty,gte=1,lte=10"`
	MostProductiveHour string    `json:"most_productive_hour,omitempty" validate:"max=32"`
	Notes              string    `json:"notes,omitempty" validate:"max=2000"`
}

func (p ProductivityLog) Kind() Kind     { return KindProductivity }
func (p ProductivityLog) Owner() string  { return p.UserID }
func (p ProductivityLog) Day() time.Time { return Day(p.Date) }

// CompletionRatio is completed/planned, false when nothing was planned.
func (p ProductivityLog) CompletionRatio() (float64, bool) {
	if p.TasksPlanned <= 0 {
		return 0, false
	}
	return float64(p.TasksCompleted) / float64(p.TasksPlanned), true
}

// MoodLog is a point-in-time mood sample. Several per day are allowed.
type MoodLog struct {
	ID              int64     `json:"id,omitempty"`
	UserID          string    `json:"user_id" validate:"required"`
	Timestamp       time.Time `json:"timestamp" validate:"required"`
	StressLevel     int       `json:"stress_level" validate:"gte=1,lte=10"`
	HappinessLevel  int       `json:"happiness_level" validate:"gte=1,lte=10"`
	EnergyLevel     int       `json:"energy_level" validate:"gte=1,lte=10"`
	MotivationLevel int       `json:"motivation_level" validate:"gte=1,lte=10"`
	AnxietyLevel    int       `json:"anxiety_level" validate:"gte=1,lte=10"`
	Triggers        []string  `json:"mood_triggers,omitempty" validate:"dive,min=1,max=64"`
	Note            string    `json:"note,omitempty" validate:"max=2000"`
}

func (m MoodLog) Kind() Kind     { return KindMood }
func (m MoodLog) Owner() string  { return m.UserID }
func (m MoodLog) Day() time.Time { return Day(m.Timestamp) }

// Goal is a user goal. Created by append, updated by upsert on ID.
type Goal struct {
	ID              int64      `json:"id,omitempty"`
	UserID          string     `json:"user_id" validate:"required"`
	Title           string     `json:"title" validate:"required,max=200"`
	Description     string     `json:"description,omitempty" validate:"max=2000"`
	GoalType        string     `json:"goal_type" validate:"oneof=short-term long-term"`
	Category        string     `json:"category,omitempty" validate:"max=64"`
	TargetValue     *float64   `json:"target_value,omitempty" validate:"omitempty,gt=0"`
	CurrentProgress float64    `json:"current_progress" validate:"gte=0"`
	Unit            string     `json:"unit,omitempty" validate:"max=32"`
	StartDate       time.Time  `json:"start_date"`
	TargetDate      *time.Time `json:"target_date,omitempty"`
	Completed       bool       `json:"completed"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

func (g Goal) Kind() Kind     { return KindGoal }
func (g Goal) Owner() string  { return g.UserID }
func (g Goal) Day() time.Time { return Day(g.StartDate) }

// Active reports whether the goal is open: not completed and not past its
// target date.
func (g Goal) Active(today time.Time) bool {
	if g.Completed {
		return false
	}
	return g.TargetDate == nil || !Day(*g.TargetDate).Before(Day(today))
}

// Progress returns current/target in [0,1], false without a target.
func (g Goal) Progress() (float64, bool) {
	if g.TargetValue == nil || *g.TargetValue <= 0 {
		return 0, false
	}
	p := g.CurrentProgress / *g.TargetValue
	if p > 1 {
		p = 1
	}
	return p, true
}

// Profile holds user preferences. One per user.
type Profile struct {
	UserID             string    `json:"user_id" validate:"required"`
	Age                *int      `json:"age,omitempty" validate:"omitempty,gte=1,lte=130"`
	Gender             string    `json:"gender,omitempty" validate:"max=32"`
	Occupation         string    `json:"occupation,omitempty" validate:"max=100"`
	Lifestyle          string    `json:"lifestyle,omitempty" validate:"max=100"`
	PersonalityType    string    `json:"personality_type,omitempty" validate:"max=32"`
	DisciplineLevel    *int      `json:"discipline_level,omitempty" validate:"omitempty,gte=1,lte=10"`
	SleepGoalHours     float64   `json:"sleep_goal_hours,omitempty" validate:"omitempty,gte=4,lte=12"`
	ExercisePreference string    `json:"exercise_preference,omitempty" validate:"max=64"`
	PreferredWorkHours string    `json:"preferred_work_hours,omitempty" validate:"max=64"`
	Strengths          string    `json:"strengths,omitempty" validate:"max=2000"`
	Weaknesses         string    `json:"weaknesses,omitempty" validate:"max=2000"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (p Profile) Kind() Kind     { return KindProfile }
func (p Profile) Owner() string  { return p.UserID }
func (p Profile) Day() time.Time { return Day(p.UpdatedAt) }

// Chat roles and reply sources.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	SourceModel    = "model"
	SourceFallback = "fallback"
)

// ChatTurn is one message of the conversation history.
type ChatTurn struct {
	ID             int64     `json:"id,omitempty"`
	UserID         string    `json:"user_id" validate:"required"`
	Timestamp      time.Time `json:"timestamp" validate:"required"`
	Role           string    `json:"role" validate:"oneof=user assistant"`
	Message        string    `json:"message" validate:"required"`
	Intent         string    `json:"detected_intent,omitempty"`
	Sentiment      string    `json:"sentiment,omitempty"`
	Source         string    `json:"source,omitempty" validate:"omitempty,oneof=model fallback"`
	FallbackReason string    `json:"fallback_reason,omitempty"`
	ReplyID        string    `json:"reply_id,omitempty"`
}

func (c ChatTurn) Kind() Kind     { return KindChat }
func (c ChatTurn) Owner() string  { return c.UserID }
func (c ChatTurn) Day() time.Time { return Day(c.Timestamp) }

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts calendar days in the inclusive range [start, end].
func DaysBetween(start, end time.Time) int {
	return int(Day(end).Sub(Day(start)).Hours()/24) + 1
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// Collect filters recs down to the concrete type T.
func Collect[T Record](recs []Record) []T {
	out := make([]T, 0, len(recs))
	for _, r := range recs {
		if v, ok := r.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
