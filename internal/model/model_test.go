package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day1 = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	got, err := ParseKind(" Habit ")
	require.NoError(t, err)
	assert.Equal(t, KindHabit, got)

	_, err = ParseKind("sleep")
	assert.True(t, errors.Is(err, ErrUnknownRecordKind))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		wantErr bool
	}{
		{"valid habit", HabitLog{UserID: "u1", Date: day1, SleepHours: Ptr(7.5), ProcrastinationLevel: Ptr(3)}, false},
		{"procrastination out of range", HabitLog{UserID: "u1", Date: day1, ProcrastinationLevel: Ptr(11)}, true},
		{"negative exercise", HabitLog{UserID: "u1", Date: day1, ExerciseMinutes: -5}, true},
		{"bad wake time", HabitLog{UserID: "u1", Date: day1, WakeTime: "7am"}, true},
		{"missing user", HabitLog{Date: day1}, true},
		{"completed above planned", ProductivityLog{UserID: "u1", Date: day1, TasksPlanned: 3, TasksCompleted: 4}, true},
		{"completed equals planned", ProductivityLog{UserID: "u1", Date: day1, TasksPlanned: 3, TasksCompleted: 3}, false},
		{"score zero", ProductivityLog{UserID: "u1", Date: day1, ProductivityScore: Ptr(0)}, true},
		{"mood valid", MoodLog{UserID: "u1", Timestamp: day1, StressLevel: 5, HappinessLevel: 5, EnergyLevel: 5, MotivationLevel: 5, AnxietyLevel: 5}, false},
		{"mood unset level", MoodLog{UserID: "u1", Timestamp: day1, StressLevel: 5, HappinessLevel: 5, EnergyLevel: 5, MotivationLevel: 5}, true},
		{"goal bad type", Goal{UserID: "u1", Title: "run", GoalType: "someday"}, true},
		{"goal valid", Goal{UserID: "u1", Title: "run", GoalType: "short-term"}, false},
		{"profile sleep goal too low", Profile{UserID: "u1", SleepGoalHours: 2}, true},
		{"chat bad role", ChatTurn{UserID: "u1", Timestamp: day1, Role: "system", Message: "hi"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.rec)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidRecord), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGoalActive(t *testing.T) {
	today := day1.Add(10 * time.Hour)
	past := day1.AddDate(0, 0, -1)
	future := day1.AddDate(0, 0, 5)

	assert.True(t, Goal{}.Active(today))
	assert.True(t, Goal{TargetDate: &future}.Active(today))
	assert.True(t, Goal{TargetDate: &day1}.Active(today), "due today is still active")
	assert.False(t, Goal{TargetDate: &past}.Active(today))
	assert.False(t, Goal{Completed: true}.Active(today))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 1, DaysBetween(day1, day1.Add(23*time.Hour)))
	assert.Equal(t, 7, DaysBetween(day1, day1.AddDate(0, 0, 6)))
}

func TestCheckRange(t *testing.T) {
	assert.NoError(t, CheckRange(day1, day1))
	assert.NoError(t, CheckRange(time.Time{}, day1))
	assert.ErrorIs(t, CheckRange(day1, day1.AddDate(0, 0, -1)), ErrInvalidRange)
}

func TestEncodeDecodeRecords(t *testing.T) {
	recs := []Record{
		HabitLog{UserID: "u1", Date: day1, SleepHours: Ptr(8.0), ExerciseMinutes: 30},
		HabitLog{UserID: "u1", Date: day1.AddDate(0, 0, 1), ExerciseMinutes: 0},
	}
	data, err := EncodeRecords(recs)
	require.NoError(t, err)

	got, err := DecodeRecords(KindHabit, data)
	require.NoError(t, err)
	require.Len(t, got, 2)
	h := got[0].(HabitLog)
	assert.Equal(t, 8.0, *h.SleepHours)
	assert.Nil(t, got[1].(HabitLog).SleepHours)

	_, err = DecodeRecords(Kind("nope"), data)
	assert.ErrorIs(t, err, ErrUnknownRecordKind)
}

func TestCollect(t *testing.T) {
	recs := []Record{
		HabitLog{UserID: "u1"},
		MoodLog{UserID: "u1"},
		HabitLog{UserID: "u2"},
	}
	habits := Collect[HabitLog](recs)
	require.Len(t, habits, 2)
	assert.Equal(t, "u2", habits[1].UserID)
}
