package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/chris/mentor/config"
	"github.com/chris/mentor/internal/cache"
	"github.com/chris/mentor/internal/db"
	"github.com/chris/mentor/internal/llm"
	"github.com/chris/mentor/internal/logger"
	"github.com/chris/mentor/internal/mentor"
	"github.com/chris/mentor/internal/model"
	"github.com/spf13/cobra"
)

// app holds everything a command needs. It is opened lazily so `mentor
// service` and `--help` never touch the database.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *db.DB
	svc     *mentor.Service
	closers []func()
}

func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	a := &app{cfg: cfg, log: log}

	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	a.db = database
	a.closers = append(a.closers, func() { database.Close() })

	repo := a.withCache(ctx, database)
	a.svc = mentor.New(repo, database, newModelClient(cfg, log), log, mentor.Config{
		WindowDays:      cfg.ProfileWindowDays,
		HistoryTurns:    cfg.ChatHistoryTurns,
		MaxContextChars: cfg.MaxContextChars,
		ModelTimeout:    cfg.ModelTimeout,
	})
	return a, nil
}

// withCache wraps the database in the configured read cache. A cache that
// cannot be reached is skipped, never fatal.
func (a *app) withCache(ctx context.Context, database *db.DB) model.Repository {
	switch a.cfg.CacheBackend {
	case "memory":
		return cache.NewRepository(database, cache.NewMemory(a.cfg.CacheSize), a.cfg.CacheTTL, a.log)
	case "redis":
		r, err := cache.NewRedis(ctx, a.cfg.RedisURL)
		if err != nil {
			a.log.Warn("redis cache unavailable, reading straight from the database", "error", err)
			return database
		}
		a.closers = append(a.closers, func() { r.Close() })
		return cache.NewRepository(database, r, a.cfg.CacheTTL, a.log)
	case "", "none":
		return database
	}
	a.log.Warn("unknown cache backend, caching disabled", "backend", a.cfg.CacheBackend)
	return database
}

// newModelClient returns nil when no credentials are configured; chat then
// answers with local fallback replies.
func newModelClient(cfg *config.Config, log *logger.Logger) llm.Client {
	if cfg.LLMProvider != llm.ProviderOllama && cfg.APIKey() == "" && cfg.AnthropicToken == "" {
		log.Warn("no model credentials configured, chat replies will be local", "provider", cfg.LLMProvider)
		return nil
	}
	pc := llm.ProviderConfig{
		Provider:  cfg.LLMProvider,
		APIKey:    cfg.APIKey(),
		AuthToken: cfg.AnthropicToken,
		Model:     cfg.LLMModel,
	}
	if cfg.LLMProvider == llm.ProviderOllama {
		pc.BaseURL = cfg.OllamaBaseURL
	}
	client, err := llm.NewClient(pc)
	if err != nil {
		log.Warn("model client unavailable, chat replies will be local", "error", err)
		return nil
	}
	return client
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.log.Sync()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	root, closeApp := newRootCmd(config.Load())
	err := root.Execute()
	closeApp()
	if err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. The returned func closes whatever a
// command opened and is safe to call when nothing was.
func newRootCmd(cfg *config.Config) (*cobra.Command, func()) {
	var userID string
	var a *app

	root := &cobra.Command{
		Use:          "mentor",
		Short:        "Habit tracking with analytics, recommendations and a chat coach",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&userID, "user", "u", envOr("MENTOR_USER", "local"), "user id the command acts for")

	// needApp opens the app once for commands that use it.
	needApp := func(cmd *cobra.Command, _ []string) error {
		var err error
		a, err = openApp(cmd.Context(), cfg)
		return err
	}
	closeApp := func() {
		if a != nil {
			a.Close()
			a = nil
		}
	}
	env := &cmdEnv{app: func() *app { return a }, user: func() string { return userID }}

	for _, c := range []*cobra.Command{
		newRunCmd(env),
		newChatCmd(env),
		newHistoryCmd(env),
		newProfileCmd(env),
		newRecommendCmd(env),
		newPredictCmd(env),
		newAnalyticsCmd(env),
		newCheckInCmd(env),
		newLogCmd(env),
		newGoalCmd(env),
	} {
		c.PersistentPreRunE = needApp
		root.AddCommand(c)
	}
	root.AddCommand(newServiceCmd())
	return root, closeApp
}

// cmdEnv gives subcommands late-bound access to the opened app and the
// --user flag.
type cmdEnv struct {
	app  func() *app
	user func() string
}

func (e *cmdEnv) svc() *mentor.Service { return e.app().svc }

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
