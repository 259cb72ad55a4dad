package insight

import (
	"context"
	"time"

	"github.com/chris/mentor/internal/aggregate"
	"github.com/chris/mentor/internal/logger"
	"github.com/chris/mentor/internal/model"
)

// memRepo is a user-scoped in-memory Repository.
type memRepo struct {
	recs []model.Record
}

func (m *memRepo) ReadRecords(_ context.Context, userID string, kind model.Kind, start, end time.Time) ([]model.Record, error) {
	var out []model.Record
	for _, r := range m.recs {
		if r.Owner() != userID || r.Kind() != kind {
			continue
		}
		if r.Day().Before(model.Day(start)) || r.Day().After(model.Day(end)) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memRepo) UpsertRecord(_ context.Context, _ string, rec model.Record) error {
	m.recs = append(m.recs, rec)
	return nil
}

func (m *memRepo) AppendRecord(_ context.Context, _ string, rec model.Record) (int64, error) {
	m.recs = append(m.recs, rec)
	return int64(len(m.recs)), nil
}

var (
	ctx  = context.Background()
	day1 = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
)

func dayN(n int) time.Time { return day1.AddDate(0, 0, n-1) }

func newAgg(recs ...model.Record) *aggregate.Aggregator {
	return aggregate.New(&memRepo{recs: recs}, logger.Nop())
}

func habit(n int, sleep float64, exercise int) model.HabitLog {
	return model.HabitLog{UserID: "u1", Date: dayN(n), SleepHours: model.Ptr(sleep), ExerciseMinutes: exercise}
}

func mood(n, hour, energy int) model.MoodLog {
	return model.MoodLog{
		UserID:          "u1",
		Timestamp:       dayN(n).Add(time.Duration(hour) * time.Hour),
		StressLevel:     4,
		HappinessLevel:  7,
		EnergyLevel:     energy,
		MotivationLevel: 6,
		AnxietyLevel:    3,
	}
}
