package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/chris/mentor/internal/model"
)

func (d *DB) upsertProfile(ctx context.Context, p model.Profile) error {
	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO profiles (user_id, age, gender, occupation, lifestyle, personality_type,
			discipline_level, sleep_goal_hours, exercise_preference, preferred_work_hours,
			strengths, weaknesses, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			age = excluded.age,
			gender = excluded.gender,
			occupation = excluded.occupation,
			lifestyle = excluded.lifestyle,
			personality_type = excluded.personality_type,
			discipline_level = excluded.discipline_level,
			sleep_goal_hours = excluded.sleep_goal_hours,
			exercise_preference = excluded.exercise_preference,
			preferred_work_hours = excluded.preferred_work_hours,
			strengths = excluded.strengths,
			weaknesses = excluded.weaknesses,
			updated_at = excluded.updated_at`,
		p.UserID, nullInt(p.Age), p.Gender, p.Occupation, p.Lifestyle, p.PersonalityType,
		nullInt(p.DisciplineLevel), sleepGoal(p.SleepGoalHours), p.ExercisePreference, p.PreferredWorkHours,
		p.Strengths, p.Weaknesses, tsStr(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}
	return nil
}

// getProfile returns nil without error when the user has no profile yet.
func (d *DB) getProfile(ctx context.Context, userID string) (*model.Profile, error) {
	var (
		p               model.Profile
		age, discipline sql.NullInt64
		updatedAt       string
	)
	err := d.conn.QueryRowContext(ctx, `
		SELECT user_id, age, gender, occupation, lifestyle, personality_type,
		       discipline_level, sleep_goal_hours, exercise_preference, preferred_work_hours,
		       strengths, weaknesses, updated_at
		FROM profiles WHERE user_id = ?`, userID,
	).Scan(&p.UserID, &age, &p.Gender, &p.Occupation, &p.Lifestyle, &p.PersonalityType,
		&discipline, &p.SleepGoalHours, &p.ExercisePreference, &p.PreferredWorkHours,
		&p.Strengths, &p.Weaknesses, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	if p.UpdatedAt, err = parseTS(updatedAt); err != nil {
		return nil, err
	}
	p.Age = intPtr(age)
	p.DisciplineLevel = intPtr(discipline)
	return &p, nil
}

func sleepGoal(h float64) float64 {
	if h == 0 {
		return 8
	}
	return h
}
