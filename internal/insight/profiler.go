package insight

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/chris/mentor/internal/aggregate"
	"github.com/chris/mentor/internal/model"
	"golang.org/x/sync/errgroup"
)

// ProfileSummaryVersion is bumped whenever the ProfileSummary shape changes.
const ProfileSummaryVersion = 1

// Finding is one strength or weakness measured against a reference target.
type Finding struct {
	Metric    string  `json:"metric"`
	Statement string  `json:"statement"`
	Value     float64 `json:"value"`
	Target    Range   `json:"target"`
	Deviation float64 `json:"deviation"`
}

// ProfileSummary is the behavioral snapshot of one user as of a date.
type ProfileSummary struct {
	Version          int       `json:"version"`
	UserID           string    `json:"user_id"`
	AsOf             time.Time `json:"as_of"`
	WindowDays       int       `json:"window_days"`
	ConsistencyScore float64   `json:"consistency_score"`
	Strengths        []Finding `json:"strengths"`
	Weaknesses       []Finding `json:"weaknesses"`
	Patterns         []string  `json:"patterns"`
	DaysTracked      int       `json:"days_tracked"`
	InsufficientData bool      `json:"insufficient_data"`
}

// Profiler builds ProfileSummaries from habit, productivity and mood windows.
type Profiler struct {
	agg    *aggregate.Aggregator
	policy Policy
}

func NewProfiler(agg *aggregate.Aggregator, policy Policy) *Profiler {
	return &Profiler{agg: agg, policy: policy}
}

// Build profiles the window [asOf - windowDays, asOf]. windowDays <= 0 uses
// the policy default.
func (p *Profiler) Build(ctx context.Context, userID string, asOf time.Time, windowDays int) (*ProfileSummary, error) {
	if windowDays <= 0 {
		windowDays = p.policy.WindowDays
	}
	end := model.Day(asOf)
	start := end.AddDate(0, 0, -windowDays)

	w, err := fetchWindows(ctx, p.agg, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("building profile: %w", err)
	}

	s := &ProfileSummary{
		Version:    ProfileSummaryVersion,
		UserID:     userID,
		AsOf:       end,
		WindowDays: windowDays,
		Strengths:  []Finding{},
		Weaknesses: []Finding{},
		Patterns:   []string{},
	}
	if w.habit.InsufficientData && w.productivity.InsufficientData && w.mood.InsufficientData {
		s.InsufficientData = true
		return s, nil
	}

	tracked := unionDays(w.habit.Dates, w.productivity.Dates, w.mood.Dates)
	s.DaysTracked = len(tracked)
	s.ConsistencyScore = p.consistency(len(tracked), model.DaysBetween(start, end), w.habit)
	s.Strengths, s.Weaknesses = p.compare(w)
	s.Patterns = p.patterns(w)
	return s, nil
}

// fetchWindows runs the three independent aggregations concurrently.
func fetchWindows(ctx context.Context, agg *aggregate.Aggregator, userID string, start, end time.Time) (windows, error) {
	var w windows
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		w.habit, err = agg.Aggregate(gctx, userID, model.KindHabit, nil, start, end)
		return err
	})
	g.Go(func() (err error) {
		w.productivity, err = agg.Aggregate(gctx, userID, model.KindProductivity, nil, start, end)
		return err
	})
	g.Go(func() (err error) {
		w.mood, err = agg.Aggregate(gctx, userID, model.KindMood, nil, start, end)
		return err
	})
	return w, g.Wait()
}

func (p *Profiler) consistency(daysTracked, windowDays int, habit *aggregate.WindowStats) float64 {
	coverage := float64(daysTracked) / float64(windowDays)
	if coverage > 1 {
		coverage = 1
	}

	var regularity float64
	var sleep []float64
	for _, pt := range habit.Series["sleep_hours"] {
		sleep = append(sleep, pt.Value)
	}
	if len(sleep) >= 2 {
		scale := p.policy.SleepVarianceScale
		if scale <= 0 {
			scale = 1
		}
		regularity = 1 / (1 + aggregate.Variance(sleep)/scale)
	}

	wc, wr := p.policy.CoverageWeight, p.policy.RegularityWeight
	if wc+wr <= 0 {
		return 0
	}
	score := 10 * (wc*coverage + wr*regularity) / (wc + wr)
	return aggregate.Round(math.Max(0, math.Min(10, score)), 2)
}

// compare emits exactly one strength or one weakness per metric with data.
func (p *Profiler) compare(w windows) (strengths, weaknesses []Finding) {
	strengths, weaknesses = []Finding{}, []Finding{}
	for _, m := range metrics {
		target, ok := p.policy.Targets[m.name]
		if !ok {
			continue
		}
		v, ok := m.measure(w)
		if !ok {
			continue
		}
		met := target.Contains(v)
		f := Finding{
			Metric:    m.name,
			Statement: m.describe(v, target, met),
			Value:     aggregate.Round(v, 2),
			Target:    target,
			Deviation: aggregate.Round(target.Deviation(v), 4),
		}
		if met {
			strengths = append(strengths, f)
		} else {
			weaknesses = append(weaknesses, f)
		}
	}
	return strengths, weaknesses
}

type pairing struct {
	nextDay bool
	x       func(w windows) map[time.Time]float64
	y       func(w windows) map[time.Time]float64
	render  func(r float64, n int) string
}

func direction(r float64) string {
	if r > 0 {
		return "higher"
	}
	return "lower"
}

var pairings = []pairing{
	{
		nextDay: true,
		x:       exercisePresence,
		y:       func(w windows) map[time.Time]float64 { return seriesByDay(w.mood, "energy_level") },
		render: func(r float64, n int) string {
			return fmt.Sprintf("Days you exercise are followed by %s energy the next day (r=%.2f over %d days)", direction(r), r, n)
		},
	},
	{
		nextDay: true,
		x:       exercisePresence,
		y:       func(w windows) map[time.Time]float64 { return seriesByDay(w.mood, "happiness_level") },
		render: func(r float64, n int) string {
			return fmt.Sprintf("Days you exercise are followed by %s happiness the next day (r=%.2f over %d days)", direction(r), r, n)
		},
	},
	{
		nextDay: true,
		x:       exercisePresence,
		y:       func(w windows) map[time.Time]float64 { return seriesByDay(w.productivity, "productivity_score") },
		render: func(r float64, n int) string {
			return fmt.Sprintf("Days you exercise are followed by %s productivity the next day (r=%.2f over %d days)", direction(r), r, n)
		},
	},
	{
		x: func(w windows) map[time.Time]float64 { return seriesByDay(w.habit, "sleep_hours") },
		y: func(w windows) map[time.Time]float64 { return seriesByDay(w.productivity, "productivity_score") },
		render: func(r float64, n int) string {
			return fmt.Sprintf("More sleep goes with %s productivity scores the same day (r=%.2f over %d days)", direction(r), r, n)
		},
	},
}

// patterns reports correlations with enough paired days and a strong
// enough coefficient. Weak or under-sampled pairs are left out.
func (p *Profiler) patterns(w windows) []string {
	out := []string{}
	for _, pr := range pairings {
		xs, ys := pairSeries(pr.x(w), pr.y(w), pr.nextDay)
		if len(xs) < p.policy.MinPairedSamples {
			continue
		}
		r, _, ok := aggregate.Pearson(xs, ys)
		if !ok || math.Abs(r) < p.policy.MinCorrelation {
			continue
		}
		out = append(out, pr.render(r, len(xs)))
	}
	return out
}

func exercisePresence(w windows) map[time.Time]float64 {
	pred, _ := aggregate.LookupPredicate(model.KindHabit, "exercise")
	out := make(map[time.Time]float64)
	for _, r := range w.habit.Records() {
		if pred.Holds(r) {
			out[r.Day()] = 1
		} else if _, seen := out[r.Day()]; !seen {
			out[r.Day()] = 0
		}
	}
	return out
}

func seriesByDay(w *aggregate.WindowStats, field string) map[time.Time]float64 {
	out := make(map[time.Time]float64)
	for _, pt := range w.Series[field] {
		out[pt.Date] = pt.Value
	}
	return out
}

// pairSeries joins x on day d with y on d (or d+1), in ascending day order.
func pairSeries(x, y map[time.Time]float64, nextDay bool) ([]float64, []float64) {
	days := make([]time.Time, 0, len(x))
	for d := range x {
		days = append(days, d)
	}
	sortDays(days)

	var xs, ys []float64
	for _, d := range days {
		yd := d
		if nextDay {
			yd = d.AddDate(0, 0, 1)
		}
		if v, ok := y[yd]; ok {
			xs = append(xs, x[d])
			ys = append(ys, v)
		}
	}
	return xs, ys
}
