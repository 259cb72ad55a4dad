package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chris/mentor/internal/model"
)

const (
	dateLayout = "2006-01-02"
	tsLayout   = time.RFC3339Nano
)

func dateStr(t time.Time) string { return model.Day(t).Format(dateLayout) }
func tsStr(t time.Time) string   { return t.UTC().Format(tsLayout) }

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

func parseTS(s string) (time.Time, error) {
	t, err := time.Parse(tsLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

// rangeBounds converts an inclusive day range into string bounds. A zero
// start is unbounded.
func rangeBounds(start, end time.Time) (string, string) {
	lo := "0000-01-01"
	if !start.IsZero() {
		lo = dateStr(start)
	}
	return lo, dateStr(end)
}

func nullFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return dateStr(*p)
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	return model.Ptr(n.Float64)
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	return model.Ptr(int(n.Int64))
}

func datePtr(n sql.NullString) (*time.Time, error) {
	if !n.Valid || n.String == "" {
		return nil, nil
	}
	t, err := parseDate(n.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	b, _ := json.Marshal(tags) // []string marshal cannot fail
	return string(b)
}

func decodeTags(s string) []string {
	if s == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil
	}
	return tags
}

func toRecords[T model.Record](xs []T) []model.Record {
	out := make([]model.Record, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

// checkOwner rejects writes whose embedded owner differs from the caller.
func checkOwner(userID string, rec model.Record) error {
	if userID == "" {
		return fmt.Errorf("%w: empty user id", model.ErrInvalidRecord)
	}
	if rec.Owner() != userID {
		return fmt.Errorf("%w: record owned by %q written as %q", model.ErrCrossUser, rec.Owner(), userID)
	}
	return nil
}
