package insight

import (
	"testing"

	"github.com/chris/mentor/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredict_NoDataIsNullNotZero(t *testing.T) {
	p := NewPredictor(newAgg())

	got, err := p.Predict(ctx, "u1", dayN(61))
	require.NoError(t, err)
	assert.True(t, got.InsufficientData)
	for _, h := range predictedHabits {
		v, ok := got.HabitLikelihood[h]
		assert.True(t, ok, h)
		assert.Nil(t, v, h)
	}
	assert.Empty(t, got.ProductiveHours)
	assert.Empty(t, got.EnergyByHour)
}

func TestPredict_NeverPerformedIsZero(t *testing.T) {
	var recs []model.Record
	for n := 1; n <= 4; n++ {
		recs = append(recs, habit(n, 7, 0))
	}
	p := NewPredictor(newAgg(recs...))

	got, err := p.Predict(ctx, "u1", dayN(5))
	require.NoError(t, err)
	require.NotNil(t, got.HabitLikelihood["exercise"])
	assert.Equal(t, 0.0, *got.HabitLikelihood["exercise"])
	assert.False(t, got.InsufficientData)
}

func TestPredict_DenominatorIsAnyLoggedDay(t *testing.T) {
	recs := []model.Record{
		habit(1, 7, 30),
		habit(2, 7, 0),
		mood(3, 9, 5),
		model.ProductivityLog{UserID: "u1", Date: dayN(4), TasksPlanned: 1},
		// On the target day itself, outside the window.
		habit(5, 7, 30),
	}
	p := NewPredictor(newAgg(recs...))

	got, err := p.Predict(ctx, "u1", dayN(5))
	require.NoError(t, err)
	assert.Equal(t, 0.25, *got.HabitLikelihood["exercise"])
	assert.Equal(t, dayN(4), got.WindowEnd)
	assert.Equal(t, dayN(5).AddDate(0, 0, -60), got.WindowStart)
}

func TestPredict_TopProductiveHoursBreaksTiesByRecency(t *testing.T) {
	prod := func(n int, label string) model.ProductivityLog {
		return model.ProductivityLog{UserID: "u1", Date: dayN(n), MostProductiveHour: label}
	}
	recs := []model.Record{
		prod(1, "9-11 AM"), prod(2, "9-11 AM"),
		prod(5, "2-4 PM"), prod(6, "2-4 PM"),
		prod(10, "7-9 PM"),
	}
	p := NewPredictor(newAgg(recs...))

	got, err := p.Predict(ctx, "u1", dayN(11))
	require.NoError(t, err)
	assert.Equal(t, []string{"2-4 PM", "9-11 AM"}, got.ProductiveHours)
}

func TestPredict_EnergyByHourOmitsEmptyHours(t *testing.T) {
	recs := []model.Record{mood(1, 8, 4), mood(2, 8, 6), mood(2, 20, 3)}
	p := NewPredictor(newAgg(recs...))

	got, err := p.Predict(ctx, "u1", dayN(3))
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"08:00": 5, "20:00": 3}, got.EnergyByHour)
	assert.NotContains(t, got.EnergyByHour, "12:00")
}

func TestPredict_WeekdayLikelihood(t *testing.T) {
	var recs []model.Record
	for n := 1; n <= 28; n++ {
		ex := 0
		if dayN(n).Weekday() == dayN(29).Weekday() {
			ex = 45
		}
		recs = append(recs, habit(n, 7, ex))
	}
	p := NewPredictor(newAgg(recs...))

	got, err := p.Predict(ctx, "u1", dayN(29))
	require.NoError(t, err)
	assert.Equal(t, 1.0, *got.WeekdayLikelihood["exercise"])
	assert.Equal(t, 0.14, *got.HabitLikelihood["exercise"])
	assert.NotEmpty(t, got.Suggestions)
}
