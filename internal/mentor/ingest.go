package mentor

import (
	"context"
	"fmt"
	"time"

	"github.com/chris/mentor/internal/model"
)

// claim stamps userID onto a record's owner. A record that already names a
// different owner is rejected.
func claim(userID, owner string) (string, error) {
	if err := requireUser(userID); err != nil {
		return "", err
	}
	if owner != "" && owner != userID {
		return "", fmt.Errorf("%w: record owned by %q", model.ErrCrossUser, owner)
	}
	return userID, nil
}

// LogHabit writes the day's habit log, replacing any earlier log for the
// same date. A zero date means today.
func (s *Service) LogHabit(ctx context.Context, userID string, h model.HabitLog) error {
	var err error
	if h.UserID, err = claim(userID, h.UserID); err != nil {
		return err
	}
	h.Date = s.dayOrToday(h.Date)
	if err := model.Validate(h); err != nil {
		return err
	}
	if err := s.repo.UpsertRecord(ctx, userID, h); err != nil {
		return fmt.Errorf("logging habits: %w", err)
	}
	s.log.Debug("habit log saved", "user_id", userID, "date", h.Date.Format(time.DateOnly))
	return nil
}

// LogProductivity writes the day's productivity log with upsert semantics.
func (s *Service) LogProductivity(ctx context.Context, userID string, p model.ProductivityLog) error {
	var err error
	if p.UserID, err = claim(userID, p.UserID); err != nil {
		return err
	}
	p.Date = s.dayOrToday(p.Date)
	if err := model.Validate(p); err != nil {
		return err
	}
	if err := s.repo.UpsertRecord(ctx, userID, p); err != nil {
		return fmt.Errorf("logging productivity: %w", err)
	}
	s.log.Debug("productivity log saved", "user_id", userID, "date", p.Date.Format(time.DateOnly))
	return nil
}

// LogMood appends a mood sample. A zero timestamp means now.
func (s *Service) LogMood(ctx context.Context, userID string, m model.MoodLog) (int64, error) {
	var err error
	if m.UserID, err = claim(userID, m.UserID); err != nil {
		return 0, err
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = s.now().UTC()
	}
	if err := model.Validate(m); err != nil {
		return 0, err
	}
	id, err := s.repo.AppendRecord(ctx, userID, m)
	if err != nil {
		return 0, fmt.Errorf("logging mood: %w", err)
	}
	return id, nil
}

func (s *Service) SaveProfile(ctx context.Context, userID string, p model.Profile) error {
	var err error
	if p.UserID, err = claim(userID, p.UserID); err != nil {
		return err
	}
	p.UpdatedAt = s.now().UTC()
	if err := model.Validate(p); err != nil {
		return err
	}
	if err := s.repo.UpsertRecord(ctx, userID, p); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// AddGoal creates a goal and returns its ID. Start date defaults to today
// and goal type to short-term.
func (s *Service) AddGoal(ctx context.Context, userID string, g model.Goal) (int64, error) {
	var err error
	if g.UserID, err = claim(userID, g.UserID); err != nil {
		return 0, err
	}
	g.ID = 0
	g.StartDate = s.dayOrToday(g.StartDate)
	if g.GoalType == "" {
		g.GoalType = "short-term"
	}
	if err := model.Validate(g); err != nil {
		return 0, err
	}
	id, err := s.repo.AppendRecord(ctx, userID, g)
	if err != nil {
		return 0, fmt.Errorf("adding goal: %w", err)
	}
	s.log.Info("goal added", "user_id", userID, "goal_id", id, "title", g.Title)
	return id, nil
}

// UpdateGoal replaces an existing goal. Completing it stamps CompletedAt.
func (s *Service) UpdateGoal(ctx context.Context, userID string, g model.Goal) error {
	var err error
	if g.UserID, err = claim(userID, g.UserID); err != nil {
		return err
	}
	if g.ID == 0 {
		return fmt.Errorf("%w: goal id is required", model.ErrInvalidRecord)
	}
	if g.Completed && g.CompletedAt == nil {
		g.CompletedAt = model.Ptr(s.now().UTC())
	}
	if err := model.Validate(g); err != nil {
		return err
	}
	if err := s.repo.UpsertRecord(ctx, userID, g); err != nil {
		return fmt.Errorf("updating goal %d: %w", g.ID, err)
	}
	return nil
}

// Goals lists every goal the user has created, open or not.
func (s *Service) Goals(ctx context.Context, userID string) ([]model.Goal, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	recs, err := s.repo.ReadRecords(ctx, userID, model.KindGoal, time.Time{}, s.now())
	if err != nil {
		return nil, fmt.Errorf("listing goals: %w", err)
	}
	return ownGoals(userID, recs), nil
}

func ownGoals(userID string, recs []model.Record) []model.Goal {
	var out []model.Goal
	for _, g := range model.Collect[model.Goal](recs) {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out
}

// ChatHistory returns the user's most recent turns, oldest first. limit <= 0
// returns everything.
func (s *Service) ChatHistory(ctx context.Context, userID string, limit int) ([]model.ChatTurn, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	recs, err := s.repo.ReadRecords(ctx, userID, model.KindChat, time.Time{}, s.now())
	if err != nil {
		return nil, fmt.Errorf("reading chat history: %w", err)
	}
	var turns []model.ChatTurn
	for _, t := range model.Collect[model.ChatTurn](recs) {
		if t.UserID == userID {
			turns = append(turns, t)
		}
	}
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns, nil
}

func (s *Service) dayOrToday(t time.Time) time.Time {
	if t.IsZero() {
		return model.Day(s.now())
	}
	return model.Day(t)
}
