package cache

import (
	"context"
	"testing"
	"time"

	"github.com/chris/mentor/internal/logger"
	"github.com/chris/mentor/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func TestMemory_Expiry(t *testing.T) {
	m := NewMemory(10)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 5*time.Second))
	got, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(got))

	now = now.Add(5 * time.Second)
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok, "entry must expire at its deadline")
	assert.Equal(t, 0, m.Len())
}

func TestMemory_EvictsLeastRecentlyUsed(t *testing.T) {
	m := NewMemory(2)
	_ = m.Set(ctx, "a", []byte("1"), time.Minute)
	_ = m.Set(ctx, "b", []byte("2"), time.Minute)
	_, _, _ = m.Get(ctx, "a")
	_ = m.Set(ctx, "c", []byte("3"), time.Minute)

	_, ok, _ := m.Get(ctx, "b")
	assert.False(t, ok, "b was least recently used")
	_, ok, _ = m.Get(ctx, "a")
	assert.True(t, ok)
	_, ok, _ = m.Get(ctx, "c")
	assert.True(t, ok)
}

func TestMemory_DeletePrefix(t *testing.T) {
	m := NewMemory(10)
	_ = m.Set(ctx, "mentor:u1:habit:a", []byte("1"), time.Minute)
	_ = m.Set(ctx, "mentor:u1:mood:a", []byte("2"), time.Minute)
	_ = m.Set(ctx, "mentor:u10:habit:a", []byte("3"), time.Minute)

	require.NoError(t, m.DeletePrefix(ctx, "mentor:u1:habit:"))
	assert.Equal(t, 2, m.Len())
}

// countingRepo is an in-memory repository that counts reads. afterRead,
// when set, runs once after a read has taken its snapshot.
type countingRepo struct {
	recs      map[string][]model.Record
	reads     int
	afterRead func()
}

func (c *countingRepo) ReadRecords(_ context.Context, userID string, kind model.Kind, _, _ time.Time) ([]model.Record, error) {
	c.reads++
	snapshot := append([]model.Record(nil), c.recs[userID+string(kind)]...)
	if f := c.afterRead; f != nil {
		c.afterRead = nil
		f()
	}
	return snapshot, nil
}

func (c *countingRepo) UpsertRecord(_ context.Context, userID string, rec model.Record) error {
	c.recs[userID+string(rec.Kind())] = []model.Record{rec}
	return nil
}

func (c *countingRepo) AppendRecord(_ context.Context, userID string, rec model.Record) (int64, error) {
	key := userID + string(rec.Kind())
	c.recs[key] = append(c.recs[key], rec)
	return int64(len(c.recs[key])), nil
}

func TestRepository_CachesAndInvalidates(t *testing.T) {
	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	next := &countingRepo{recs: map[string][]model.Record{}}
	repo := NewRepository(next, NewMemory(10), time.Minute, logger.Nop())

	require.NoError(t, repo.UpsertRecord(ctx, "u1", model.HabitLog{UserID: "u1", Date: day, ExerciseMinutes: 10}))

	for i := 0; i < 3; i++ {
		recs, err := repo.ReadRecords(ctx, "u1", model.KindHabit, day, day)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, 10, recs[0].(model.HabitLog).ExerciseMinutes)
	}
	assert.Equal(t, 1, next.reads)

	require.NoError(t, repo.UpsertRecord(ctx, "u1", model.HabitLog{UserID: "u1", Date: day, ExerciseMinutes: 45}))
	recs, err := repo.ReadRecords(ctx, "u1", model.KindHabit, day, day)
	require.NoError(t, err)
	assert.Equal(t, 45, recs[0].(model.HabitLog).ExerciseMinutes, "write must invalidate cached ranges")
	assert.Equal(t, 2, next.reads)
}

func TestRepository_WriteDuringReadIsNotCachedStale(t *testing.T) {
	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	next := &countingRepo{recs: map[string][]model.Record{
		"u1habit": {model.HabitLog{UserID: "u1", Date: day, ExerciseMinutes: 10}},
	}}
	store := NewMemory(10)
	repo := NewRepository(next, store, time.Minute, logger.Nop())
	next.afterRead = func() {
		require.NoError(t, repo.UpsertRecord(ctx, "u1", model.HabitLog{UserID: "u1", Date: day, ExerciseMinutes: 45}))
	}

	recs, err := repo.ReadRecords(ctx, "u1", model.KindHabit, day, day)
	require.NoError(t, err)
	assert.Equal(t, 10, recs[0].(model.HabitLog).ExerciseMinutes, "the racing read returns what it loaded")
	assert.Equal(t, 0, store.Len(), "but does not cache it")

	recs, err = repo.ReadRecords(ctx, "u1", model.KindHabit, day, day)
	require.NoError(t, err)
	assert.Equal(t, 45, recs[0].(model.HabitLog).ExerciseMinutes)
	assert.Equal(t, 2, next.reads)
	assert.Equal(t, 1, store.Len())
}

func TestRepository_KeysAreScopedByUser(t *testing.T) {
	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	next := &countingRepo{recs: map[string][]model.Record{
		"u1habit": {model.HabitLog{UserID: "u1", Date: day}},
		"u2habit": {model.HabitLog{UserID: "u2", Date: day}},
	}}
	repo := NewRepository(next, NewMemory(10), time.Minute, logger.Nop())

	a, err := repo.ReadRecords(ctx, "u1", model.KindHabit, day, day)
	require.NoError(t, err)
	b, err := repo.ReadRecords(ctx, "u2", model.KindHabit, day, day)
	require.NoError(t, err)
	assert.Equal(t, "u1", a[0].Owner())
	assert.Equal(t, "u2", b[0].Owner())
}

func TestRepository_ValidatesBeforeCaching(t *testing.T) {
	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := NewRepository(&countingRepo{recs: map[string][]model.Record{}}, NewMemory(10), time.Minute, logger.Nop())

	_, err := repo.ReadRecords(ctx, "u1", model.Kind("bogus"), day, day)
	assert.ErrorIs(t, err, model.ErrUnknownRecordKind)
	_, err = repo.ReadRecords(ctx, "u1", model.KindHabit, day, day.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, model.ErrInvalidRange)
}
