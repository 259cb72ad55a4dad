package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chris/mentor/internal/insight"
	"github.com/chris/mentor/internal/llm"
	"github.com/chris/mentor/internal/logger"
	"github.com/chris/mentor/internal/model"
	"github.com/google/uuid"
)

// DefaultModelTimeout bounds a single model call.
const DefaultModelTimeout = 8 * time.Second

// State is a step of one Chat call.
type State int

const (
	StateIdle State = iota
	StateContextBuilt
	StateModelCalled
	StateResponded
	StateFallback
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateContextBuilt:
		return "context_built"
	case StateModelCalled:
		return "model_called"
	case StateResponded:
		return "responded"
	case StateFallback:
		return "fallback"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Fallback reasons recorded on the assistant turn.
const (
	ReasonTimeout   = "timeout"
	ReasonTransport = "transport_error"
	ReasonEmpty     = "empty_response"
)

// Reply is the assistant's answer to one message. Source tells model text
// apart from a locally built fallback.
type Reply struct {
	ID             string    `json:"id"`
	Message        string    `json:"message"`
	Source         string    `json:"source"`
	Intent         string    `json:"intent"`
	Sentiment      string    `json:"sentiment"`
	FallbackReason string    `json:"fallback_reason,omitempty"`
	State          string    `json:"state"`
	Timestamp      time.Time `json:"timestamp"`
}

// Analysis is the local pipeline fallback replies are built from.
type Analysis struct {
	Profiler    *insight.Profiler
	Reporter    *insight.Reporter
	Recommender *insight.Recommender
	WindowDays  int
}

// Responder runs one conversational exchange: build context, call the
// model once with a timeout, fall back to a local reply on failure, and
// persist both turns.
type Responder struct {
	repo     model.Repository
	builder  *ContextBuilder
	client   llm.Client
	analysis Analysis
	log      *logger.Logger
	now      func() time.Time
	timeout  time.Duration
	maxChars int
}

type ResponderConfig struct {
	Timeout         time.Duration
	MaxContextChars int
	Now             func() time.Time
}

// NewResponder accepts a nil client; every reply is then a fallback.
func NewResponder(repo model.Repository, builder *ContextBuilder, client llm.Client, analysis Analysis, log *logger.Logger, cfg ResponderConfig) *Responder {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultModelTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Responder{
		repo:     repo,
		builder:  builder,
		client:   client,
		analysis: analysis,
		log:      log.Named("responder"),
		now:      cfg.Now,
		timeout:  cfg.Timeout,
		maxChars: cfg.MaxContextChars,
	}
}

// Chat answers message for userID. It always stores the user turn and
// exactly one assistant turn. Model failures become fallback replies, not
// errors. If ctx is cancelled the turns are still stored and ctx's error
// is returned.
func (r *Responder) Chat(ctx context.Context, userID, message string) (*Reply, error) {
	message = strings.TrimSpace(message)
	if userID == "" || message == "" {
		return nil, fmt.Errorf("%w: user and message are required", model.ErrInvalidRecord)
	}

	reply := &Reply{
		ID:        uuid.NewString(),
		Intent:    ClassifyIntent(message),
		Sentiment: ClassifySentiment(message),
	}
	log := r.log.With("user_id", userID, "reply_id", reply.ID)
	state := StateIdle
	moveTo := func(next State) {
		log.Debug("chat state", "from", state.String(), "to", next.String())
		state = next
	}

	// Writes and the model call outlive caller cancellation.
	bg := context.WithoutCancel(ctx)

	contextText, err := r.builder.Build(bg, userID, r.maxChars)
	if err != nil {
		log.Warn("context build failed, continuing without context", "error", err)
		contextText = ""
	}
	moveTo(StateContextBuilt)

	if _, err := r.repo.AppendRecord(bg, userID, model.ChatTurn{
		UserID:    userID,
		Timestamp: r.now(),
		Role:      model.RoleUser,
		Message:   message,
		Intent:    reply.Intent,
		Sentiment: reply.Sentiment,
		ReplyID:   reply.ID,
	}); err != nil {
		return nil, fmt.Errorf("saving user turn: %w", err)
	}

	text, callErr := r.callModel(bg, log, contextText, message)
	moveTo(StateModelCalled)

	if callErr == nil {
		reply.Message = text
		reply.Source = model.SourceModel
		moveTo(StateResponded)
	} else {
		reply.FallbackReason = fallbackReason(callErr)
		log.Warn("model call failed, using fallback", "reason", reply.FallbackReason, "error", callErr)
		reply.Message = r.fallbackText(bg, log, userID, reply.Intent)
		reply.Source = model.SourceFallback
		moveTo(StateFallback)
	}
	reply.State = state.String()
	reply.Timestamp = r.now()

	if _, err := r.repo.AppendRecord(bg, userID, model.ChatTurn{
		UserID:         userID,
		Timestamp:      reply.Timestamp,
		Role:           model.RoleAssistant,
		Message:        reply.Message,
		Intent:         reply.Intent,
		Source:         reply.Source,
		FallbackReason: reply.FallbackReason,
		ReplyID:        reply.ID,
	}); err != nil {
		return nil, fmt.Errorf("saving assistant turn: %w", err)
	}

	if err := ctx.Err(); err != nil {
		log.Info("caller went away, reply stored but not delivered", "error", err)
		return nil, err
	}
	return reply, nil
}

// callModel makes the single bounded attempt and classifies failures.
func (r *Responder) callModel(ctx context.Context, log *logger.Logger, contextText, message string) (string, error) {
	if r.client == nil {
		return "", fmt.Errorf("%w: no model configured", model.ErrModelTransport)
	}
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	system := llm.SystemPrompt + contextText
	msgs := []llm.Message{{Role: llm.RoleUser, Content: message}}
	size := llm.Measure(system, msgs)
	log.Debug("calling model", "prompt_chars", size.Chars, "prompt_tokens", size.Tokens, "timeout", r.timeout)

	start := time.Now()
	resp, err := r.client.Chat(callCtx, system, msgs)
	log.Debug("model returned", "elapsed", time.Since(start))
	switch {
	case err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded)):
		return "", fmt.Errorf("%w: %v", model.ErrModelTimeout, err)
	case err != nil:
		return "", fmt.Errorf("%w: %v", model.ErrModelTransport, err)
	case resp == nil || strings.TrimSpace(resp.Content) == "":
		return "", model.ErrEmptyResponse
	}
	return strings.TrimSpace(resp.Content), nil
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, model.ErrModelTimeout):
		return ReasonTimeout
	case errors.Is(err, model.ErrEmptyResponse):
		return ReasonEmpty
	}
	return ReasonTransport
}

var fallbackOpeners = map[string]string{
	IntentEmotionalSupport: "I hear you, and it's okay to have hard days. I can't reach my full assistant right now, but here is what your own data shows.",
	IntentAnalytics:        "Here is a quick look at your numbers.",
	IntentMotivation:       "You have more going for you than it may feel like right now.",
	IntentGeneral:          "I can't reach my full assistant right now, but here is what your recent data says.",
}

// fallbackText builds a reply from the locally computed profile, weekly
// analytics and recommendations. It never calls the model.
func (r *Responder) fallbackText(ctx context.Context, log *logger.Logger, userID, intent string) string {
	lines := []string{fallbackOpeners[intent]}

	var summary *insight.ProfileSummary
	if r.analysis.Profiler != nil {
		s, err := r.analysis.Profiler.Build(ctx, userID, r.now(), r.analysis.WindowDays)
		if err != nil {
			log.Warn("fallback profile failed", "error", err)
		} else {
			summary = s
		}
	}
	if summary != nil && !summary.InsufficientData {
		lines = append(lines, fmt.Sprintf("Your consistency score is %.1f/10 over the last %d days.", summary.ConsistencyScore, summary.WindowDays))
		if len(summary.Strengths) > 0 {
			lines = append(lines, "Going well: "+summary.Strengths[0].Statement+".")
		}
	}

	if r.analysis.Reporter != nil {
		rep, err := r.analysis.Reporter.Build(ctx, userID, insight.PeriodWeek)
		if err != nil {
			log.Warn("fallback analytics failed", "error", err)
		} else {
			for i, in := range rep.Insights {
				if i == 2 {
					break
				}
				lines = append(lines, in)
			}
		}
	}

	if r.analysis.Recommender != nil {
		var prefs *model.Profile
		if recs, err := r.repo.ReadRecords(ctx, userID, model.KindProfile, time.Time{}, r.now()); err == nil {
			if ps := model.Collect[model.Profile](recs); len(ps) > 0 && ps[0].UserID == userID {
				prefs = &ps[0]
			}
		}
		if recs := r.analysis.Recommender.Recommend(userID, summary, prefs); len(recs) > 0 {
			top := recs[0]
			line := "Suggestion: " + top.Title + "."
			if len(top.Steps) > 0 {
				line += " First step: " + top.Steps[0] + "."
			}
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
