package insight

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/chris/mentor/internal/aggregate"
	"github.com/chris/mentor/internal/model"
)

// PredictionWindowDays is the trailing history a prediction looks at.
const PredictionWindowDays = 60

// predictedHabits are the habit predicates a prediction reports on.
var predictedHabits = []string{"exercise", "meditation", "reading"}

// RoutinePrediction is a frequency-based forecast for one day. A nil
// likelihood means there was no data, which is distinct from 0.
type RoutinePrediction struct {
	UserID            string              `json:"user_id"`
	Date              time.Time           `json:"date"`
	WindowStart       time.Time           `json:"window_start"`
	WindowEnd         time.Time           `json:"window_end"`
	ProductiveHours   []string            `json:"productive_hours"`
	EnergyByHour      map[string]float64  `json:"energy_by_hour"`
	HabitLikelihood   map[string]*float64 `json:"habit_likelihood"`
	WeekdayLikelihood map[string]*float64 `json:"weekday_likelihood"`
	Suggestions       []string            `json:"suggestions"`
	InsufficientData  bool                `json:"insufficient_data"`
}

// Predictor extrapolates the next day's routine from recent history.
type Predictor struct {
	agg *aggregate.Aggregator
}

func NewPredictor(agg *aggregate.Aggregator) *Predictor {
	return &Predictor{agg: agg}
}

// Predict looks at [target-60, target-1].
func (p *Predictor) Predict(ctx context.Context, userID string, target time.Time) (*RoutinePrediction, error) {
	target = model.Day(target)
	start := target.AddDate(0, 0, -PredictionWindowDays)
	end := target.AddDate(0, 0, -1)

	w, err := fetchWindows(ctx, p.agg, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("predicting routine: %w", err)
	}

	logged := unionDays(w.habit.Dates, w.productivity.Dates, w.mood.Dates)
	pred := &RoutinePrediction{
		UserID:           userID,
		Date:             target,
		WindowStart:      start,
		WindowEnd:        end,
		ProductiveHours:  topProductiveHours(w.productivity.Records(), 2),
		EnergyByHour:     energyByHour(w.mood.Records()),
		HabitLikelihood:  likelihoods(w.habit.Records(), logged, nil),
		InsufficientData: len(logged) == 0,
	}
	weekday := target.Weekday()
	pred.WeekdayLikelihood = likelihoods(w.habit.Records(), logged, func(d time.Time) bool { return d.Weekday() == weekday })
	pred.Suggestions = suggestions(pred)
	return pred, nil
}

// likelihoods divides the days each habit was performed by the days with
// any log at all. keep optionally restricts which days count.
func likelihoods(habits []model.Record, logged []time.Time, keep func(time.Time) bool) map[string]*float64 {
	denom := 0
	for _, d := range logged {
		if keep == nil || keep(d) {
			denom++
		}
	}

	out := make(map[string]*float64, len(predictedHabits))
	for _, name := range predictedHabits {
		if denom == 0 {
			out[name] = nil
			continue
		}
		pred, _ := aggregate.LookupPredicate(model.KindHabit, name)
		n := 0
		for _, r := range habits {
			if (keep == nil || keep(r.Day())) && pred.Holds(r) {
				n++
			}
		}
		out[name] = model.Ptr(aggregate.Round(float64(n)/float64(denom), 2))
	}
	return out
}

// topProductiveHours ranks most_productive_hour labels by frequency, most
// recent occurrence first on ties.
func topProductiveHours(recs []model.Record, n int) []string {
	type tally struct {
		label string
		count int
		last  time.Time
	}
	byLabel := make(map[string]*tally)
	for _, l := range model.Collect[model.ProductivityLog](recs) {
		label := strings.TrimSpace(l.MostProductiveHour)
		if label == "" {
			continue
		}
		t, ok := byLabel[label]
		if !ok {
			t = &tally{label: label}
			byLabel[label] = t
		}
		t.count++
		if l.Day().After(t.last) {
			t.last = l.Day()
		}
	}

	ranked := make([]*tally, 0, len(byLabel))
	for _, t := range byLabel {
		ranked = append(ranked, t)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.count != b.count {
			return a.count > b.count
		}
		if !a.last.Equal(b.last) {
			return a.last.After(b.last)
		}
		return a.label < b.label
	})

	out := []string{}
	for i := 0; i < len(ranked) && i < n; i++ {
		out = append(out, ranked[i].label)
	}
	return out
}

// energyByHour averages mood energy by the UTC hour of the sample. Hours
// without samples are absent.
func energyByHour(recs []model.Record) map[string]float64 {
	sums := make(map[string][]int)
	for _, m := range model.Collect[model.MoodLog](recs) {
		key := fmt.Sprintf("%02d:00", m.Timestamp.UTC().Hour())
		sums[key] = append(sums[key], m.EnergyLevel)
	}
	out := make(map[string]float64, len(sums))
	for k, v := range sums {
		out[k] = aggregate.Round(aggregate.Mean(v), 1)
	}
	return out
}

func suggestions(p *RoutinePrediction) []string {
	out := []string{}
	if p.InsufficientData {
		return append(out, "Log a few days of habits, tasks and mood to get a routine forecast.")
	}
	if len(p.ProductiveHours) > 0 {
		out = append(out, fmt.Sprintf("Schedule important tasks during your peak hours: %s.", strings.Join(p.ProductiveHours, ", ")))
	}
	if best, ok := peakEnergyHour(p.EnergyByHour); ok {
		out = append(out, fmt.Sprintf("Your energy tends to peak around %s.", best))
	}
	if v := p.HabitLikelihood["exercise"]; v != nil && *v < 0.5 {
		out = append(out, fmt.Sprintf("You exercised on %.0f%% of logged days, so you may skip it tomorrow. Set a reminder.", *v*100))
	}
	if v := p.HabitLikelihood["meditation"]; v != nil && *v >= 0.7 {
		out = append(out, "You are likely to meditate tomorrow. Keep it going.")
	}
	return out
}

func peakEnergyHour(m map[string]float64) (string, bool) {
	hours := make([]string, 0, len(m))
	for h := range m {
		hours = append(hours, h)
	}
	sort.Strings(hours)
	best, found := "", false
	for _, h := range hours {
		if !found || m[h] > m[best] {
			best, found = h, true
		}
	}
	return best, found
}
