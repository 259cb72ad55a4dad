package aggregate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/chris/mentor/internal/logger"
	"github.com/chris/mentor/internal/model"
)

// FieldStats describes one numeric field over a window. Delta is the
// absolute change between the two halves and is nil when they cannot be
// compared. Trend is the same change relative to the first half, so it is
// also nil when the first-half mean is 0.
type FieldStats struct {
	Count          int      `json:"count"`
	Mean           float64  `json:"mean"`
	Min            float64  `json:"min"`
	Max            float64  `json:"max"`
	StdDev         float64  `json:"std_dev"`
	FirstHalfMean  float64  `json:"first_half_mean"`
	SecondHalfMean float64  `json:"second_half_mean"`
	Delta          *float64 `json:"delta"`
	Trend          *float64 `json:"trend"`
}

// Point is one daily value of a series.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// WindowStats is the result of aggregating one record kind for one user
// over an inclusive day range.
type WindowStats struct {
	UserID           string                `json:"user_id"`
	Kind             model.Kind            `json:"kind"`
	Start            time.Time             `json:"start"`
	End              time.Time             `json:"end"`
	Days             int                   `json:"days"`
	DaysWithData     int                   `json:"days_with_data"`
	RecordCount      int                   `json:"records"`
	Dates            []time.Time           `json:"-"`
	Fields           map[string]FieldStats `json:"fields"`
	Streaks          map[string]Streak     `json:"streaks,omitempty"`
	Series           map[string][]Point    `json:"series,omitempty"`
	InsufficientData bool                  `json:"insufficient_data"`

	records []model.Record
}

// Records returns the owner-checked records the stats were computed from,
// sorted by day.
func (w *WindowStats) Records() []model.Record {
	return w.records
}

// Aggregator computes windowed statistics over one record kind.
type Aggregator struct {
	repo model.Repository
	log  *logger.Logger
}

func New(repo model.Repository, log *logger.Logger) *Aggregator {
	return &Aggregator{repo: repo, log: log.Named("aggregate")}
}

// Aggregate reads the user's records of kind in [start, end] and summarizes
// the named fields (all registered fields when names is empty). Zero records
// yield InsufficientData rather than an error.
func (a *Aggregator) Aggregate(ctx context.Context, userID string, kind model.Kind, names []string, start, end time.Time) (*WindowStats, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownRecordKind, kind)
	}
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("aggregating %s: unbounded window: %w", kind, model.ErrInvalidRange)
	}
	start, end = model.Day(start), model.Day(end)
	if end.Before(start) {
		return nil, fmt.Errorf("aggregating %s: %w", kind, model.ErrInvalidRange)
	}
	fields, err := resolveFields(kind, names)
	if err != nil {
		return nil, err
	}

	recs, err := a.repo.ReadRecords(ctx, userID, kind, start, end)
	if err != nil {
		return nil, fmt.Errorf("aggregating %s: %w", kind, err)
	}
	recs = a.ownedBy(userID, recs)

	return summarizeWindow(userID, kind, fields, start, end, recs), nil
}

// ownedBy drops records that belong to another user.
func (a *Aggregator) ownedBy(userID string, recs []model.Record) []model.Record {
	out := recs[:0:0]
	for _, r := range recs {
		if r.Owner() != userID {
			a.log.Error("cross_user_violation", "user_id", userID, "record_owner", r.Owner(), "kind", r.Kind())
			continue
		}
		out = append(out, r)
	}
	return out
}

func summarizeWindow(userID string, kind model.Kind, fields []Field, start, end time.Time, recs []model.Record) *WindowStats {
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Day().Before(recs[j].Day()) })

	w := &WindowStats{
		UserID:      userID,
		Kind:        kind,
		Start:       start,
		End:         end,
		Days:        model.DaysBetween(start, end),
		RecordCount: len(recs),
		Fields:      make(map[string]FieldStats, len(fields)),
		Streaks:     make(map[string]Streak),
		Series:      make(map[string][]Point),
		records:     recs,
	}
	w.Dates = distinctDays(recs, func(model.Record) bool { return true })
	w.DaysWithData = len(w.Dates)
	w.InsufficientData = len(recs) == 0

	mid := start.AddDate(0, 0, w.Days/2)
	for _, f := range fields {
		w.Fields[f.Name] = fieldStats(f, recs, mid)
		if s := dailySeries(f, recs); len(s) > 0 {
			w.Series[f.Name] = s
		}
	}
	for _, p := range predicates[kind] {
		w.Streaks[p.Name] = ComputeStreak(distinctDays(recs, p.test), end)
	}
	return w
}

func fieldStats(f Field, recs []model.Record, mid time.Time) FieldStats {
	var all, first, second []float64
	for _, r := range recs {
		v, ok := f.extract(r)
		if !ok {
			continue
		}
		all = append(all, v)
		if r.Day().Before(mid) {
			first = append(first, v)
		} else {
			second = append(second, v)
		}
	}

	s := Summarize(all)
	fs := FieldStats{
		Count:          s.Count,
		Mean:           s.Mean,
		Min:            s.Min,
		Max:            s.Max,
		StdDev:         s.StdDev,
		FirstHalfMean:  Mean(first),
		SecondHalfMean: Mean(second),
	}
	if len(all) < 3 || len(first) == 0 || len(second) == 0 {
		return fs
	}
	delta := fs.SecondHalfMean - fs.FirstHalfMean
	fs.Delta = &delta
	if fs.FirstHalfMean != 0 {
		t := delta / fs.FirstHalfMean
		fs.Trend = &t
	}
	return fs
}

// dailySeries averages a field per calendar day.
func dailySeries(f Field, recs []model.Record) []Point {
	var out []Point
	var sum float64
	var n int
	flush := func(d time.Time) {
		if n > 0 {
			out = append(out, Point{Date: d, Value: sum / float64(n)})
		}
		sum, n = 0, 0
	}
	var cur time.Time
	for _, r := range recs {
		if d := r.Day(); !d.Equal(cur) {
			flush(cur)
			cur = d
		}
		if v, ok := f.extract(r); ok {
			sum += v
			n++
		}
	}
	flush(cur)
	return out
}

// distinctDays returns the sorted days on which keep held for any record.
// recs must already be sorted by day.
func distinctDays(recs []model.Record, keep func(model.Record) bool) []time.Time {
	var out []time.Time
	for _, r := range recs {
		if !keep(r) {
			continue
		}
		d := r.Day()
		if len(out) == 0 || !out[len(out)-1].Equal(d) {
			out = append(out, d)
		}
	}
	return out
}
