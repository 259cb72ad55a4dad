package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chris/mentor/internal/model"
)

const productivityColumns = `id, user_id, date, tasks_planned, tasks_completed,
	tasks_pending, deadlines_met, deadlines_missed, focus_time_minutes,
	distraction_count, productivity_score, energy_level, most_productive_hour, notes`

func (d *DB) upsertProductivityLog(ctx context.Context, p model.ProductivityLog) error {
	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO productivity_logs (user_id, date, tasks_planned, tasks_completed,
			tasks_pending, deadlines_met, deadlines_missed, focus_time_minutes,
			distraction_count, productivity_score, energy_level, most_productive_hour, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, date) DO UPDATE SET
			tasks_planned = excluded.tasks_planned,
			tasks_completed = excluded.tasks_completed,
			tasks_pending = excluded.tasks_pending,
			deadlines_met = excluded.deadlines_met,
			deadlines_missed = excluded.deadlines_missed,
			focus_time_minutes = excluded.focus_time_minutes,
			distraction_count = excluded.distraction_count,
			productivity_score = excluded.productivity_score,
			energy_level = excluded.energy_level,
			most_productive_hour = excluded.most_productive_hour,
			notes = excluded.notes`,
		p.UserID, dateStr(p.Date), p.TasksPlanned, p.TasksCompleted,
		p.TasksPending, p.DeadlinesMet, p.DeadlinesMissed, p.FocusTimeMinutes,
		p.DistractionCount, nullInt(p.ProductivityScore), nullInt(p.EnergyLevel), p.MostProductiveHour, p.Notes,
	)
	if err != nil {
		return fmt.Errorf("upserting productivity log: %w", err)
	}
	return nil
}

func (d *DB) listProductivityLogs(ctx context.Context, userID, lo, hi string) ([]model.ProductivityLog, error) {
	rows, err := d.conn.QueryContext(ctx,
		"SELECT "+productivityColumns+" FROM productivity_logs WHERE user_id = ? AND date >= ? AND date <= ? ORDER BY date ASC",
		userID, lo, hi,
	)
	if err != nil {
		return nil, fmt.Errorf("listing productivity logs: %w", err)
	}
	defer rows.Close()

	var out []model.ProductivityLog
	for rows.Next() {
		var (
			p             model.ProductivityLog
			date          string
			score, energy sql.NullInt64
		)
		if err := rows.Scan(&p.ID, &p.UserID, &date, &p.TasksPlanned, &p.TasksCompleted,
			&p.TasksPending, &p.DeadlinesMet, &p.DeadlinesMissed, &p.FocusTimeMinutes,
			&p.DistractionCount, &score, &energy, &p.MostProductiveHour, &p.Notes); err != nil {
			return nil, fmt.Errorf("scanning productivity log: %w", err)
		}
		t, err := parseDate(date)
		if err != nil {
			return nil, err
		}
		p.Date = t
		p.ProductivityScore = intPtr(score)
		p.EnergyLevel = intPtr(energy)
		out = append(out, p)
	}
	return out, rows.Err()
}
