package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateCheckIn stores a delivered check-in digest.
func (d *DB) CreateCheckIn(ctx context.Context, userID, summary string, at time.Time) (int64, error) {
	res, err := d.conn.ExecContext(ctx,
		"INSERT INTO check_ins (user_id, summary, created_at) VALUES (?, ?, ?)",
		userID, summary, tsStr(at),
	)
	if err != nil {
		return 0, fmt.Errorf("creating check-in: %w", err)
	}
	return res.LastInsertId()
}

// LastCheckIn returns the most recent check-in for the user. The time is
// zero when there is none.
func (d *DB) LastCheckIn(ctx context.Context, userID string) (string, time.Time, error) {
	var summary, createdAt string
	err := d.conn.QueryRowContext(ctx,
		"SELECT summary, created_at FROM check_ins WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT 1",
		userID,
	).Scan(&summary, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", time.Time{}, nil
	}
	if err != nil {
		return "", time.Time{}, fmt.Errorf("getting last check-in: %w", err)
	}
	t, err := parseTS(createdAt)
	if err != nil {
		return "", time.Time{}, err
	}
	return summary, t, nil
}
