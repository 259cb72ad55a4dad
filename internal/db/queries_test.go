package db

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/chris/mentor/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

var (
	ctx  = context.Background()
	day0 = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
)

func day(n int) time.Time { return day0.AddDate(0, 0, n) }

// --- Habit logs ---

func TestUpsertHabitLog_RoundTrip(t *testing.T) {
	d := openTestDB(t)

	err := d.UpsertRecord(ctx, "u1", model.HabitLog{UserID: "u1", Date: day(2), SleepHours: model.Ptr(6.0), ExerciseMinutes: 10})
	require.NoError(t, err)
	err = d.UpsertRecord(ctx, "u1", model.HabitLog{UserID: "u1", Date: day(2).Add(15 * time.Hour), SleepHours: model.Ptr(7.5), ReadingMinutes: 20})
	require.NoError(t, err)

	recs, err := d.ReadRecords(ctx, "u1", model.KindHabit, day(0), day(5))
	require.NoError(t, err)
	require.Len(t, recs, 1, "repeated upserts on the same date must not duplicate")

	h := recs[0].(model.HabitLog)
	assert.Equal(t, 7.5, *h.SleepHours)
	assert.Equal(t, 20, h.ReadingMinutes)
	assert.Equal(t, 0, h.ExerciseMinutes, "upsert replaces the whole record")
	assert.True(t, h.Date.Equal(day(2)))
}

func TestUpsertHabitLog_OptionalFieldsStayNil(t *testing.T) {
	d := openTestDB(t)

	require.NoError(t, d.UpsertRecord(ctx, "u1", model.HabitLog{UserID: "u1", Date: day(0)}))
	recs, err := d.ReadRecords(ctx, "u1", model.KindHabit, day(0), day(0))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	h := recs[0].(model.HabitLog)
	assert.Nil(t, h.SleepHours)
	assert.Nil(t, h.ProcrastinationLevel)
}

func TestUpsertHabitLog_Concurrent(t *testing.T) {
	d := openTestDB(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = d.UpsertRecord(ctx, "u1", model.HabitLog{UserID: "u1", Date: day(0), ExerciseMinutes: i, ReadingMinutes: i})
		}(i)
	}
	wg.Wait()

	recs, err := d.ReadRecords(ctx, "u1", model.KindHabit, day(0), day(0))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	h := recs[0].(model.HabitLog)
	assert.Equal(t, h.ExerciseMinutes, h.ReadingMinutes, "fields from different writers must not interleave")
}

func TestReadRecords_RangeIsInclusiveAndScoped(t *testing.T) {
	d := openTestDB(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, d.UpsertRecord(ctx, "u1", model.HabitLog{UserID: "u1", Date: day(i)}))
	}
	require.NoError(t, d.UpsertRecord(ctx, "u2", model.HabitLog{UserID: "u2", Date: day(2)}))

	recs, err := d.ReadRecords(ctx, "u1", model.KindHabit, day(1), day(3))
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for _, r := range recs {
		assert.Equal(t, "u1", r.Owner())
	}

	all, err := d.ReadRecords(ctx, "u1", model.KindHabit, time.Time{}, day(10))
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestReadRecords_InvalidRange(t *testing.T) {
	d := openTestDB(t)
	_, err := d.ReadRecords(ctx, "u1", model.KindHabit, day(3), day(1))
	assert.ErrorIs(t, err, model.ErrInvalidRange)
}

func TestReadRecords_UnknownKind(t *testing.T) {
	d := openTestDB(t)
	_, err := d.ReadRecords(ctx, "u1", model.Kind("sleep"), day(0), day(1))
	assert.ErrorIs(t, err, model.ErrUnknownRecordKind)
}

// --- Write guards ---

func TestUpsertRecord_RejectsForeignOwner(t *testing.T) {
	d := openTestDB(t)
	err := d.UpsertRecord(ctx, "u1", model.HabitLog{UserID: "u2", Date: day(0)})
	assert.ErrorIs(t, err, model.ErrCrossUser)
}

func TestUpsertRecord_RejectsInvalid(t *testing.T) {
	d := openTestDB(t)
	err := d.UpsertRecord(ctx, "u1", model.ProductivityLog{UserID: "u1", Date: day(0), TasksPlanned: 2, TasksCompleted: 3})
	assert.ErrorIs(t, err, model.ErrInvalidRecord)
}

func TestWriteModes(t *testing.T) {
	d := openTestDB(t)

	_, err := d.AppendRecord(ctx, "u1", model.HabitLog{UserID: "u1", Date: day(0)})
	assert.ErrorIs(t, err, model.ErrUnsupportedWrite, "habit logs are upsert-only")

	err = d.UpsertRecord(ctx, "u1", model.MoodLog{UserID: "u1", Timestamp: day(0), StressLevel: 1, HappinessLevel: 1, EnergyLevel: 1, MotivationLevel: 1, AnxietyLevel: 1})
	assert.ErrorIs(t, err, model.ErrUnsupportedWrite, "mood logs are append-only")
}

// --- Productivity logs ---

func TestProductivityLog_RoundTrip(t *testing.T) {
	d := openTestDB(t)

	p := model.ProductivityLog{
		UserID: "u1", Date: day(1), TasksPlanned: 5, TasksCompleted: 4,
		FocusTimeMinutes: 90, ProductivityScore: model.Ptr(8), MostProductiveHour: "09:00-10:00",
	}
	require.NoError(t, d.UpsertRecord(ctx, "u1", p))
	p.TasksCompleted = 5
	require.NoError(t, d.UpsertRecord(ctx, "u1", p))

	recs, err := d.ReadRecords(ctx, "u1", model.KindProductivity, day(0), day(2))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	got := recs[0].(model.ProductivityLog)
	assert.Equal(t, 5, got.TasksCompleted)
	assert.Equal(t, 8, *got.ProductivityScore)
	assert.Nil(t, got.EnergyLevel)
	assert.Equal(t, "09:00-10:00", got.MostProductiveHour)
}

// --- Mood logs ---

func TestMoodLogs_AppendOnly(t *testing.T) {
	d := openTestDB(t)

	m := model.MoodLog{UserID: "u1", Timestamp: day(1).Add(9 * time.Hour), StressLevel: 4, HappinessLevel: 7, EnergyLevel: 6, MotivationLevel: 5, AnxietyLevel: 3, Triggers: []string{"work", "sleep"}}
	_, err := d.AppendRecord(ctx, "u1", m)
	require.NoError(t, err)
	m.Timestamp = day(1).Add(18 * time.Hour)
	m.Triggers = nil
	_, err = d.AppendRecord(ctx, "u1", m)
	require.NoError(t, err)

	recs, err := d.ReadRecords(ctx, "u1", model.KindMood, day(1), day(1))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	first := recs[0].(model.MoodLog)
	assert.Equal(t, []string{"work", "sleep"}, first.Triggers)
	assert.Equal(t, 9, first.Timestamp.Hour())
	assert.Nil(t, recs[1].(model.MoodLog).Triggers)
}

// --- Goals ---

func TestGoals_AppendAndUpdate(t *testing.T) {
	d := openTestDB(t)

	due := day(30)
	g := model.Goal{UserID: "u1", Title: "Read 12 books", GoalType: "long-term", TargetValue: model.Ptr(12.0), Unit: "books", StartDate: day(0), TargetDate: &due}
	id, err := d.AppendRecord(ctx, "u1", g)
	require.NoError(t, err)

	g.ID = id
	g.CurrentProgress = 3
	require.NoError(t, d.UpsertRecord(ctx, "u1", g))

	recs, err := d.ReadRecords(ctx, "u1", model.KindGoal, time.Time{}, day(60))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	got := recs[0].(model.Goal)
	assert.Equal(t, 3.0, got.CurrentProgress)
	require.NotNil(t, got.TargetDate)
	assert.True(t, got.TargetDate.Equal(due))
	assert.False(t, got.Completed)

	g.ID = 999
	err = d.UpsertRecord(ctx, "u1", g)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

// --- Profile ---

func TestProfile_Singleton(t *testing.T) {
	d := openTestDB(t)

	recs, err := d.ReadRecords(ctx, "u1", model.KindProfile, time.Time{}, day(0))
	require.NoError(t, err)
	assert.Empty(t, recs)

	require.NoError(t, d.UpsertRecord(ctx, "u1", model.Profile{UserID: "u1", Occupation: "nurse", UpdatedAt: day(0)}))
	require.NoError(t, d.UpsertRecord(ctx, "u1", model.Profile{UserID: "u1", Occupation: "nurse", ExercisePreference: "yoga", UpdatedAt: day(1)}))

	recs, err = d.ReadRecords(ctx, "u1", model.KindProfile, time.Time{}, day(0))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	p := recs[0].(model.Profile)
	assert.Equal(t, "nurse", p.Occupation)
	assert.Equal(t, "yoga", p.ExercisePreference)
	assert.Equal(t, 8.0, p.SleepGoalHours, "defaults to 8 hours")
}

// --- Chat turns and check-ins ---

func TestChatTurns_Ordered(t *testing.T) {
	d := openTestDB(t)

	base := day(0).Add(10 * time.Hour)
	for i, role := range []string{model.RoleUser, model.RoleAssistant, model.RoleUser} {
		_, err := d.AppendRecord(ctx, "u1", model.ChatTurn{UserID: "u1", Timestamp: base.Add(time.Duration(i) * time.Minute), Role: role, Message: "m", Intent: "general"})
		require.NoError(t, err)
	}

	recs, err := d.ReadRecords(ctx, "u1", model.KindChat, time.Time{}, day(0))
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, model.RoleAssistant, recs[1].(model.ChatTurn).Role)
}

func TestCheckIns(t *testing.T) {
	d := openTestDB(t)

	summary, at, err := d.LastCheckIn(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, summary)
	assert.True(t, at.IsZero())

	_, err = d.CreateCheckIn(ctx, "u1", "first", day(0))
	require.NoError(t, err)
	_, err = d.CreateCheckIn(ctx, "u1", "second", day(1))
	require.NoError(t, err)

	summary, at, err = d.LastCheckIn(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "second", summary)
	assert.True(t, at.Equal(day(1)))
}

func TestListUserIDs(t *testing.T) {
	d := openTestDB(t)

	require.NoError(t, d.UpsertRecord(ctx, "b", model.HabitLog{UserID: "b", Date: day(0)}))
	require.NoError(t, d.UpsertRecord(ctx, "a", model.Profile{UserID: "a"}))
	require.NoError(t, d.UpsertRecord(ctx, "b", model.Profile{UserID: "b"}))

	ids, err := d.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}
