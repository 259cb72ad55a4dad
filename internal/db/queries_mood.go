package db

import (
	"context"
	"fmt"

	"github.com/chris/mentor/internal/model"
)

func (d *DB) insertMoodLog(ctx context.Context, m model.MoodLog) (int64, error) {
	res, err := d.conn.ExecContext(ctx, `
		INSERT INTO mood_logs (user_id, date, ts, stress_level, happiness_level,
			energy_level, motivation_level, anxiety_level, triggers, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.UserID, dateStr(m.Timestamp), tsStr(m.Timestamp), m.StressLevel, m.HappinessLevel,
		m.EnergyLevel, m.MotivationLevel, m.AnxietyLevel, encodeTags(m.Triggers), m.Note,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting mood log: %w", err)
	}
	return res.LastInsertId()
}

func (d *DB) listMoodLogs(ctx context.Context, userID, lo, hi string) ([]model.MoodLog, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT id, user_id, ts, stress_level, happiness_level, energy_level,
		       motivation_level, anxiety_level, triggers, note
		FROM mood_logs
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY ts ASC, id ASC`,
		userID, lo, hi,
	)
	if err != nil {
		return nil, fmt.Errorf("listing mood logs: %w", err)
	}
	defer rows.Close()

	var out []model.MoodLog
	for rows.Next() {
		var m model.MoodLog
		var ts, triggers string
		if err := rows.Scan(&m.ID, &m.UserID, &ts, &m.StressLevel, &m.HappinessLevel, &m.EnergyLevel,
			&m.MotivationLevel, &m.AnxietyLevel, &triggers, &m.Note); err != nil {
			return nil, fmt.Errorf("scanning mood log: %w", err)
		}
		t, err := parseTS(ts)
		if err != nil {
			return nil, err
		}
		m.Timestamp = t
		m.Triggers = decodeTags(triggers)
		out = append(out, m)
	}
	return out, rows.Err()
}
