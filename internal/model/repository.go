package model

import (
	"context"
	"time"
)

// Repository is the per-user record store the pipeline reads from.
// Every call is scoped by userID.
type Repository interface {
	// ReadRecords returns the user's records of kind whose Day falls in the
	// inclusive range [start, end], ordered by day then insertion. A zero
	// start is unbounded.
	ReadRecords(ctx context.Context, userID string, kind Kind, start, end time.Time) ([]Record, error)
	// UpsertRecord replaces the whole record at its key: the date for habit
	// and productivity logs, the user for the profile, the ID for goals.
	UpsertRecord(ctx context.Context, userID string, rec Record) error
	// AppendRecord inserts a new mood log, chat turn or goal and returns its ID.
	AppendRecord(ctx context.Context, userID string, rec Record) (int64, error)
}

// CheckRange fails with ErrInvalidRange when end is before start.
func CheckRange(start, end time.Time) error {
	if !start.IsZero() && Day(end).Before(Day(start)) {
		return ErrInvalidRange
	}
	return nil
}
