package insight

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/chris/mentor/internal/aggregate"
	"github.com/chris/mentor/internal/model"
)

// AnalyticsReportVersion is bumped whenever the AnalyticsReport shape changes.
const AnalyticsReportVersion = 1

// Period names a fixed reporting window ending today.
type Period string

const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
)

// Days returns the window length of the period.
func (p Period) Days() int {
	switch p {
	case PeriodWeek:
		return 7
	case PeriodMonth:
		return 30
	case PeriodQuarter:
		return 90
	}
	return 0
}

func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if p.Days() == 0 {
		return "", fmt.Errorf("%w: %q (want week, month or quarter)", model.ErrInvalidPeriod, s)
	}
	return p, nil
}

// Trend directions.
const (
	TrendImproving    = "improving"
	TrendDeclining    = "declining"
	TrendStable       = "stable"
	TrendInsufficient = "insufficient_data"
)

// stableBand is the relative change under which a trend counts as stable.
const stableBand = 0.05

// FieldSummary is the rounded window summary of one tracked field.
type FieldSummary struct {
	Label string  `json:"label"`
	Unit  string  `json:"unit,omitempty"`
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Trend compares the two halves of the window. Change is the absolute
// difference of the half means and is nil when the direction is
// insufficient_data. ChangePct is also nil when the first half averaged 0.
type Trend struct {
	Direction      string   `json:"direction"`
	Change         *float64 `json:"change"`
	ChangePct      *float64 `json:"change_pct"`
	FirstHalfMean  float64  `json:"first_half_mean"`
	SecondHalfMean float64  `json:"second_half_mean"`
}

// AnalyticsReport is the per-period analytics view. It carries no
// generation timestamp so repeated builds over unchanged data are identical.
type AnalyticsReport struct {
	Version          int                          `json:"version"`
	UserID           string                       `json:"user_id"`
	Period           Period                       `json:"period"`
	Start            time.Time                    `json:"start"`
	End              time.Time                    `json:"end"`
	Summary          map[string]FieldSummary      `json:"summary"`
	Trends           map[string]Trend             `json:"trends"`
	Streaks          map[string]aggregate.Streak  `json:"streaks"`
	Insights         []string                     `json:"insights"`
	Series           map[string][]aggregate.Point `json:"series"`
	DaysTracked      int                          `json:"days_tracked"`
	InsufficientData bool                         `json:"insufficient_data"`
}

type trackedField struct {
	kind model.Kind
	name string
}

// trackedFields are reported in this order; names are unique across kinds.
var trackedFields = []trackedField{
	{model.KindHabit, "sleep_hours"},
	{model.KindHabit, "exercise_minutes"},
	{model.KindHabit, "meditation_minutes"},
	{model.KindHabit, "reading_minutes"},
	{model.KindHabit, "social_media_minutes"},
	{model.KindHabit, "procrastination_level"},
	{model.KindProductivity, "completion_ratio"},
	{model.KindProductivity, "productivity_score"},
	{model.KindProductivity, "focus_time_minutes"},
	{model.KindMood, "stress_level"},
	{model.KindMood, "happiness_level"},
	{model.KindMood, "energy_level"},
}

// Reporter builds AnalyticsReports for a period ending on the clock's today.
type Reporter struct {
	agg *aggregate.Aggregator
	now func() time.Time
}

// NewReporter uses time.Now when now is nil.
func NewReporter(agg *aggregate.Aggregator, now func() time.Time) *Reporter {
	if now == nil {
		now = time.Now
	}
	return &Reporter{agg: agg, now: now}
}

func (r *Reporter) Build(ctx context.Context, userID string, period Period) (*AnalyticsReport, error) {
	if period.Days() == 0 {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidPeriod, period)
	}
	end := model.Day(r.now())
	start := end.AddDate(0, 0, -(period.Days() - 1))

	w, err := fetchWindows(ctx, r.agg, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("building %s analytics: %w", period, err)
	}
	byKind := map[model.Kind]*aggregate.WindowStats{
		model.KindHabit:        w.habit,
		model.KindProductivity: w.productivity,
		model.KindMood:         w.mood,
	}

	rep := &AnalyticsReport{
		Version:     AnalyticsReportVersion,
		UserID:      userID,
		Period:      period,
		Start:       start,
		End:         end,
		Summary:     make(map[string]FieldSummary),
		Trends:      make(map[string]Trend),
		Streaks:     make(map[string]aggregate.Streak),
		Insights:    []string{},
		Series:      make(map[string][]aggregate.Point),
		DaysTracked: len(unionDays(w.habit.Dates, w.productivity.Dates, w.mood.Dates)),
	}
	rep.InsufficientData = rep.DaysTracked == 0

	for _, tf := range trackedFields {
		ws := byKind[tf.kind]
		f, _ := aggregate.LookupField(tf.kind, tf.name)
		fs := ws.Fields[tf.name]

		rep.Summary[tf.name] = FieldSummary{
			Label: f.Label,
			Unit:  f.Unit,
			Count: fs.Count,
			Mean:  aggregate.Round(fs.Mean, 2),
			Min:   aggregate.Round(fs.Min, 2),
			Max:   aggregate.Round(fs.Max, 2),
		}
		tr := classifyTrend(fs, f.LowerIsBetter)
		rep.Trends[tf.name] = tr
		if tr.Direction != TrendInsufficient {
			rep.Insights = append(rep.Insights, trendInsight(f, tr, period))
		}
		if s := ws.Series[tf.name]; len(s) > 0 {
			rep.Series[tf.name] = s
		}
	}
	for _, ws := range []*aggregate.WindowStats{w.habit, w.productivity} {
		for name, s := range ws.Streaks {
			rep.Streaks[name] = s
		}
	}
	return rep, nil
}

// classifyTrend maps the aggregator's half-window change to a direction,
// flipping the sign for fields where lower is better. From a zero baseline
// only the absolute change is known; a field that stayed at 0 has no trend.
func classifyTrend(fs aggregate.FieldStats, lowerIsBetter bool) Trend {
	tr := Trend{
		Direction:      TrendInsufficient,
		FirstHalfMean:  aggregate.Round(fs.FirstHalfMean, 2),
		SecondHalfMean: aggregate.Round(fs.SecondHalfMean, 2),
	}
	if fs.Delta == nil || (fs.Trend == nil && *fs.Delta == 0) {
		return tr
	}
	delta := *fs.Delta
	tr.Change = model.Ptr(aggregate.Round(delta, 2))

	good := delta
	if lowerIsBetter {
		good = -delta
	}
	if fs.Trend != nil {
		tr.ChangePct = model.Ptr(aggregate.Round(*fs.Trend*100, 1))
		if math.Abs(*fs.Trend) < stableBand {
			tr.Direction = TrendStable
			return tr
		}
	}
	if good > 0 {
		tr.Direction = TrendImproving
	} else {
		tr.Direction = TrendDeclining
	}
	return tr
}

func trendInsight(f aggregate.Field, tr Trend, period Period) string {
	from, to := formatValue(tr.FirstHalfMean, f.Unit), formatValue(tr.SecondHalfMean, f.Unit)
	switch {
	case tr.ChangePct == nil:
		return fmt.Sprintf("%s went from %s to %s this %s, %s.", f.Label, from, to, period, tr.Direction)
	case tr.Direction == TrendStable:
		return fmt.Sprintf("%s held steady this %s (%+.1f%%, %s to %s).", f.Label, period, *tr.ChangePct, from, to)
	}
	verb := "rose"
	if *tr.ChangePct < 0 {
		verb = "fell"
	}
	return fmt.Sprintf("%s %s %.1f%% this %s (%s to %s), %s.",
		f.Label, verb, math.Abs(*tr.ChangePct), period, from, to, tr.Direction)
}

func formatValue(v float64, unit string) string {
	switch unit {
	case "":
		return strconv.FormatFloat(v, 'f', -1, 64)
	case "min":
		return fmt.Sprintf("%.0f min", v)
	}
	return fmt.Sprintf("%.1f%s", v, unit)
}
