package db

import (
	"context"
	"fmt"
	"time"

	"github.com/chris/mentor/internal/model"
)

var _ model.Repository = (*DB)(nil)

// ReadRecords returns the user's records of one kind over an inclusive day range.
func (d *DB) ReadRecords(ctx context.Context, userID string, kind model.Kind, start, end time.Time) ([]model.Record, error) {
	if err := model.CheckRange(start, end); err != nil {
		return nil, fmt.Errorf("reading %s records: %w", kind, err)
	}
	lo, hi := rangeBounds(start, end)

	switch kind {
	case model.KindHabit:
		logs, err := d.listHabitLogs(ctx, userID, lo, hi)
		return toRecords(logs), err
	case model.KindProductivity:
		logs, err := d.listProductivityLogs(ctx, userID, lo, hi)
		return toRecords(logs), err
	case model.KindMood:
		logs, err := d.listMoodLogs(ctx, userID, lo, hi)
		return toRecords(logs), err
	case model.KindGoal:
		goals, err := d.listGoals(ctx, userID, lo, hi)
		return toRecords(goals), err
	case model.KindChat:
		turns, err := d.listChatTurns(ctx, userID, lo, hi)
		return toRecords(turns), err
	case model.KindProfile:
		p, err := d.getProfile(ctx, userID)
		if err != nil || p == nil {
			return nil, err
		}
		return []model.Record{*p}, nil
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownRecordKind, kind)
	}
}

// UpsertRecord replaces the record at its natural key.
func (d *DB) UpsertRecord(ctx context.Context, userID string, rec model.Record) error {
	if err := checkOwner(userID, rec); err != nil {
		return err
	}
	if err := model.Validate(rec); err != nil {
		return err
	}
	switch r := rec.(type) {
	case model.HabitLog:
		return d.upsertHabitLog(ctx, r)
	case model.ProductivityLog:
		return d.upsertProductivityLog(ctx, r)
	case model.Profile:
		return d.upsertProfile(ctx, r)
	case model.Goal:
		return d.updateGoal(ctx, r)
	default:
		return fmt.Errorf("%w: upsert %s", model.ErrUnsupportedWrite, rec.Kind())
	}
}

// AppendRecord inserts a new row for append-only kinds.
func (d *DB) AppendRecord(ctx context.Context, userID string, rec model.Record) (int64, error) {
	if err := checkOwner(userID, rec); err != nil {
		return 0, err
	}
	if err := model.Validate(rec); err != nil {
		return 0, err
	}
	switch r := rec.(type) {
	case model.MoodLog:
		return d.insertMoodLog(ctx, r)
	case model.ChatTurn:
		return d.insertChatTurn(ctx, r)
	case model.Goal:
		return d.insertGoal(ctx, r)
	default:
		return 0, fmt.Errorf("%w: append %s", model.ErrUnsupportedWrite, rec.Kind())
	}
}

// ListUserIDs returns every user with at least one stored record.
func (d *DB) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT user_id FROM habit_logs
		UNION SELECT user_id FROM productivity_logs
		UNION SELECT user_id FROM mood_logs
		UNION SELECT user_id FROM goals
		UNION SELECT user_id FROM profiles
		ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning user id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
