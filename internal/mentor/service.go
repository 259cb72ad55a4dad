// Package mentor is the produced API surface: analysis, ingestion, chat and
// check-in digests for one user at a time.
package mentor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chris/mentor/internal/agent"
	"github.com/chris/mentor/internal/aggregate"
	"github.com/chris/mentor/internal/insight"
	"github.com/chris/mentor/internal/llm"
	"github.com/chris/mentor/internal/logger"
	"github.com/chris/mentor/internal/model"
)

// CheckInStore records delivered check-in digests.
type CheckInStore interface {
	CreateCheckIn(ctx context.Context, userID, summary string, at time.Time) (int64, error)
	LastCheckIn(ctx context.Context, userID string) (string, time.Time, error)
}

// Config carries the pipeline knobs. Zero values take the package defaults.
type Config struct {
	WindowDays      int
	HistoryTurns    int
	MaxContextChars int
	ModelTimeout    time.Duration
	Now             func() time.Time
}

// Service wires the analysis pipeline and the responder over one repository.
type Service struct {
	repo        model.Repository
	checkins    CheckInStore
	profiler    *insight.Profiler
	recommender *insight.Recommender
	predictor   *insight.Predictor
	reporter    *insight.Reporter
	responder   *agent.Responder
	log         *logger.Logger
	now         func() time.Time
	windowDays  int
}

// New builds a Service. client may be nil, in which case every chat reply is
// a local fallback. checkins may be nil when digests are never recorded.
func New(repo model.Repository, checkins CheckInStore, client llm.Client, log *logger.Logger, cfg Config) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	policy := insight.DefaultPolicy()
	if cfg.WindowDays > 0 {
		policy.WindowDays = cfg.WindowDays
	}

	agg := aggregate.New(repo, log)
	profiler := insight.NewProfiler(agg, policy)
	reporter := insight.NewReporter(agg, cfg.Now)
	recommender := insight.NewRecommender()
	builder := agent.NewContextBuilder(repo, profiler, log, cfg.Now, cfg.HistoryTurns, policy.WindowDays)
	responder := agent.NewResponder(repo, builder, client, agent.Analysis{
		Profiler:    profiler,
		Reporter:    reporter,
		Recommender: recommender,
		WindowDays:  policy.WindowDays,
	}, log, agent.ResponderConfig{
		Timeout:         cfg.ModelTimeout,
		MaxContextChars: cfg.MaxContextChars,
		Now:             cfg.Now,
	})

	return &Service{
		repo:        repo,
		checkins:    checkins,
		profiler:    profiler,
		recommender: recommender,
		predictor:   insight.NewPredictor(agg),
		reporter:    reporter,
		responder:   responder,
		log:         log.Named("mentor"),
		now:         cfg.Now,
		windowDays:  policy.WindowDays,
	}
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", model.ErrInvalidRecord)
	}
	return nil
}

// GetProfileAnalysis profiles the user over the configured window ending today.
func (s *Service) GetProfileAnalysis(ctx context.Context, userID string) (*insight.ProfileSummary, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.profiler.Build(ctx, userID, s.now(), s.windowDays)
}

// GetRecommendations ranks suggestions from the current profile analysis and
// the user's stored preferences.
func (s *Service) GetRecommendations(ctx context.Context, userID string) ([]insight.Recommendation, error) {
	summary, err := s.GetProfileAnalysis(ctx, userID)
	if err != nil {
		return nil, err
	}
	prefs, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.recommender.Recommend(userID, summary, prefs), nil
}

// PredictRoutine predicts the routine for date. A zero date means tomorrow.
func (s *Service) PredictRoutine(ctx context.Context, userID string, date time.Time) (*insight.RoutinePrediction, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = model.Day(s.now()).AddDate(0, 0, 1)
	}
	return s.predictor.Predict(ctx, userID, date)
}

// GetHabitAnalytics reports on week, month or quarter.
func (s *Service) GetHabitAnalytics(ctx context.Context, userID, period string) (*insight.AnalyticsReport, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	p, err := insight.ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	return s.reporter.Build(ctx, userID, p)
}

// Chat answers one message. Model failures come back as fallback replies.
func (s *Service) Chat(ctx context.Context, userID, message string) (*agent.Reply, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.responder.Chat(ctx, userID, message)
}

// Profile returns the stored preferences, or nil when none were saved.
func (s *Service) Profile(ctx context.Context, userID string) (*model.Profile, error) {
	recs, err := s.repo.ReadRecords(ctx, userID, model.KindProfile, time.Time{}, s.now())
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	for _, p := range model.Collect[model.Profile](recs) {
		if p.UserID == userID {
			return &p, nil
		}
	}
	return nil, nil
}
