package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chris/mentor/internal/model"
)

func (d *DB) insertGoal(ctx context.Context, g model.Goal) (int64, error) {
	res, err := d.conn.ExecContext(ctx, `
		INSERT INTO goals (user_id, title, description, goal_type, category, target_value,
			current_progress, unit, start_date, target_date, completed, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Title, g.Description, g.GoalType, g.Category, nullFloat(g.TargetValue),
		g.CurrentProgress, g.Unit, dateStr(g.StartDate), nullTime(g.TargetDate), g.Completed, nullTime(g.CompletedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting goal: %w", err)
	}
	return res.LastInsertId()
}

// updateGoal replaces every mutable column of an existing goal.
func (d *DB) updateGoal(ctx context.Context, g model.Goal) error {
	if g.ID == 0 {
		return fmt.Errorf("%w: goal upsert needs an id", model.ErrUnsupportedWrite)
	}
	res, err := d.conn.ExecContext(ctx, `
		UPDATE goals SET title = ?, description = ?, goal_type = ?, category = ?,
			target_value = ?, current_progress = ?, unit = ?, start_date = ?,
			target_date = ?, completed = ?, completed_at = ?
		WHERE id = ? AND user_id = ?`,
		g.Title, g.Description, g.GoalType, g.Category,
		nullFloat(g.TargetValue), g.CurrentProgress, g.Unit, dateStr(g.StartDate),
		nullTime(g.TargetDate), g.Completed, nullTime(g.CompletedAt),
		g.ID, g.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating goal %d: %w", g.ID, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("goal %d: %w", g.ID, model.ErrNotFound)
	}
	return nil
}

func (d *DB) listGoals(ctx context.Context, userID, lo, hi string) ([]model.Goal, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT id, user_id, title, description, goal_type, category, target_value,
		       current_progress, unit, start_date, target_date, completed, completed_at
		FROM goals
		WHERE user_id = ? AND start_date >= ? AND start_date <= ?
		ORDER BY start_date ASC, id ASC`,
		userID, lo, hi,
	)
	if err != nil {
		return nil, fmt.Errorf("listing goals: %w", err)
	}
	defer rows.Close()

	var out []model.Goal
	for rows.Next() {
		var (
			g                  model.Goal
			start              string
			target             sql.NullFloat64
			targetDate, doneAt sql.NullString
		)
		if err := rows.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.GoalType, &g.Category, &target,
			&g.CurrentProgress, &g.Unit, &start, &targetDate, &g.Completed, &doneAt); err != nil {
			return nil, fmt.Errorf("scanning goal: %w", err)
		}
		var err error
		if g.StartDate, err = parseDate(start); err != nil {
			return nil, err
		}
		if g.TargetDate, err = datePtr(targetDate); err != nil {
			return nil, err
		}
		if g.CompletedAt, err = datePtr(doneAt); err != nil {
			return nil, err
		}
		g.TargetValue = floatPtr(target)
		out = append(out, g)
	}
	return out, rows.Err()
}
