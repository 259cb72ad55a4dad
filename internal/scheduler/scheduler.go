package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/chris/mentor/internal/logger"
	"github.com/chris/mentor/internal/mentor"
	"github.com/robfig/cron/v3"
)

// runTimeout bounds one full pass over every user.
const runTimeout = 5 * time.Minute

// UserLister lists users with stored data.
type UserLister interface {
	ListUserIDs(ctx context.Context) ([]string, error)
}

// Digester composes and records check-in digests.
type Digester interface {
	Digest(ctx context.Context, userID string) (*mentor.CheckIn, error)
	RecordCheckIn(ctx context.Context, c *mentor.CheckIn) error
}

// Scheduler sends each user a check-in digest on a cron schedule.
type Scheduler struct {
	cron       *cron.Cron
	webhookURL string
	users      UserLister
	extraUsers []string
	digests    Digester
	dmSend     func(userID, content string) error
	httpClient *http.Client
	log        *logger.Logger
}

// New builds a scheduler. dmSend may be nil; digests then go to the
// webhook. extraUsers are included even before they have stored data.
func New(users UserLister, digests Digester, webhookURL string, dmSend func(userID, content string) error, extraUsers []string, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		webhookURL: webhookURL,
		users:      users,
		extraUsers: extraUsers,
		digests:    digests,
		dmSend:     dmSend,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log.Named("scheduler"),
	}
}

// Start registers the check-in at spec and starts the cron loop.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		s.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("invalid cron %q: %w", spec, err)
	}
	s.cron.Start()
	s.log.Info("scheduler started", "cron", spec)
	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce sends one digest to every known user and returns how many were
// delivered. Failures for one user never stop the rest.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	users, err := s.userIDs(ctx)
	if err != nil {
		s.log.Error("listing users", "error", err)
		return 0
	}
	sent := 0
	for _, userID := range users {
		if ctx.Err() != nil {
			s.log.Warn("check-in run cut short", "error", ctx.Err())
			break
		}
		log := s.log.With("user_id", userID)
		c, err := s.digests.Digest(ctx, userID)
		if err != nil {
			log.Error("building digest", "error", err)
			continue
		}
		if !s.deliver(ctx, log, userID, c.Summary) {
			continue
		}
		if err := s.digests.RecordCheckIn(ctx, c); err != nil {
			log.Error("storing check-in", "error", err)
		}
		sent++
	}
	s.log.Info("check-in run finished", "users", len(users), "delivered", sent)
	return sent
}

func (s *Scheduler) userIDs(ctx context.Context) ([]string, error) {
	ids, err := s.users.ListUserIDs(ctx)
	if err != nil {
		return nil, err
	}
	ids = append(ids, s.extraUsers...)
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

// deliver tries a DM first, then falls back to the webhook.
func (s *Scheduler) deliver(ctx context.Context, log *logger.Logger, userID, content string) bool {
	if s.dmSend != nil {
		err := s.dmSend(userID, content)
		if err == nil {
			return true
		}
		log.Warn("DM send failed", "error", err)
	}
	if s.webhookURL != "" {
		if err := postWebhook(ctx, s.httpClient, s.webhookURL, content); err != nil {
			log.Error("webhook failed", "error", err)
			return false
		}
		return true
	}
	log.Warn("no delivery method available (no DM and no webhook)")
	return false
}

func postWebhook(ctx context.Context, client *http.Client, url, content string) error {
	body, _ := json.Marshal(map[string]string{"content": content}) // map of strings cannot fail
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("posting webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
