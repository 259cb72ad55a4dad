package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chris/mentor/internal/model"
)

const habitColumns = `id, user_id, date, sleep_hours, wake_time, sleep_time,
	exercise_minutes, reading_minutes, meditation_minutes, social_media_minutes,
	gaming_minutes, work_study_hours, procrastination_level, meals_count,
	water_intake_liters, healthy_eating_score, notes`

// upsertHabitLog writes the whole row for (user, date) in one statement.
func (d *DB) upsertHabitLog(ctx context.Context, h model.HabitLog) error {
	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO habit_logs (user_id, date, sleep_hours, wake_time, sleep_time,
			exercise_minutes, reading_minutes, meditation_minutes, social_media_minutes,
			gaming_minutes, work_study_hours, procrastination_level, meals_count,
			water_intake_liters, healthy_eating_score, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, date) DO UPDATE SET
			sleep_hours = excluded.sleep_hours,
			wake_time = excluded.wake_time,
			sleep_time = excluded.sleep_time,
			exercise_minutes = excluded.exercise_minutes,
			reading_minutes = excluded.reading_minutes,
			meditation_minutes = excluded.meditation_minutes,
			social_media_minutes = excluded.social_media_minutes,
			gaming_minutes = excluded.gaming_minutes,
			work_study_hours = excluded.work_study_hours,
			procrastination_level = excluded.procrastination_level,
			meals_count = excluded.meals_count,
			water_intake_liters = excluded.water_intake_liters,
			healthy_eating_score = excluded.healthy_eating_score,
			notes = excluded.notes`,
		h.UserID, dateStr(h.Date), nullFloat(h.SleepHours), h.WakeTime, h.SleepTime,
		h.ExerciseMinutes, h.ReadingMinutes, h.MeditationMinutes, h.SocialMediaMinutes,
		h.GamingMinutes, nullFloat(h.WorkStudyHours), nullInt(h.ProcrastinationLevel), nullInt(h.MealsCount),
		nullFloat(h.WaterIntakeLiters), nullInt(h.HealthyEatingScore), h.Notes,
	)
	if err != nil {
		return fmt.Errorf("upserting habit log: %w", err)
	}
	return nil
}

func (d *DB) listHabitLogs(ctx context.Context, userID, lo, hi string) ([]model.HabitLog, error) {
	rows, err := d.conn.QueryContext(ctx,
		"SELECT "+habitColumns+" FROM habit_logs WHERE user_id = ? AND date >= ? AND date <= ? ORDER BY date ASC",
		userID, lo, hi,
	)
	if err != nil {
		return nil, fmt.Errorf("listing habit logs: %w", err)
	}
	defer rows.Close()
	return scanHabitLogs(rows)
}

func scanHabitLogs(rows *sql.Rows) ([]model.HabitLog, error) {
	var out []model.HabitLog
	for rows.Next() {
		var (
			h                                    model.HabitLog
			date                                 string
			sleep, work, water                   sql.NullFloat64
			procrastination, meals, healthyScore sql.NullInt64
		)
		if err := rows.Scan(&h.ID, &h.UserID, &date, &sleep, &h.WakeTime, &h.SleepTime,
			&h.ExerciseMinutes, &h.ReadingMinutes, &h.MeditationMinutes, &h.SocialMediaMinutes,
			&h.GamingMinutes, &work, &procrastination, &meals, &water, &healthyScore, &h.Notes); err != nil {
			return nil, fmt.Errorf("scanning habit log: %w", err)
		}
		t, err := parseDate(date)
		if err != nil {
			return nil, err
		}
		h.Date = t
		h.SleepHours = floatPtr(sleep)
		h.WorkStudyHours = floatPtr(work)
		h.WaterIntakeLiters = floatPtr(water)
		h.ProcrastinationLevel = intPtr(procrastination)
		h.MealsCount = intPtr(meals)
		h.HealthyEatingScore = intPtr(healthyScore)
		out = append(out, h)
	}
	return out, rows.Err()
}
