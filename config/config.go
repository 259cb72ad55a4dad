package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	LLMProvider    string // anthropic, openai, ollama, gemini
	AnthropicKey   string // API key (X-Api-Key header)
	AnthropicToken string // OAuth token (Authorization: Bearer header)
	OpenAIKey      string
	GeminiKey      string
	LLMModel       string
	OllamaBaseURL  string
	ModelTimeout   time.Duration

	DatabasePath string
	CacheBackend string // none, memory, redis
	RedisURL     string
	CacheTTL     time.Duration
	CacheSize    int

	MaxContextChars   int
	ChatHistoryTurns  int
	ProfileWindowDays int

	LogMode string // dev, prod

	DiscordToken      string
	DiscordWebhook    string
	DiscordUserIDs    []string // users who get check-in DMs when the store has none yet
	CheckInCron       string
	ChatRatePerMinute int
}

// ConfigDir is where the installed service keeps its environment file.
func ConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".mentor")
}

func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config")
}

// Load reads ./.env, then ~/.mentor/config, then the process environment.
// Variables already set are never overwritten.
func Load() *Config {
	_ = godotenv.Load()             // ignore error if no .env
	_ = godotenv.Load(ConfigFile()) // nor an installed config

	return &Config{
		LLMProvider:    envOr("LLM_PROVIDER", "anthropic"),
		AnthropicKey:   os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicToken: os.Getenv("ANTHROPIC_AUTH_TOKEN"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		GeminiKey:      os.Getenv("GEMINI_API_KEY"),
		LLMModel:       os.Getenv("LLM_MODEL"),
		OllamaBaseURL:  envOr("OLLAMA_BASE_URL", "http://localhost:11434/v1"),
		ModelTimeout:   envDuration("MODEL_TIMEOUT", 8*time.Second),

		DatabasePath: envOr("DATABASE_PATH", "./mentor.db"),
		CacheBackend: envOr("CACHE_BACKEND", "memory"),
		RedisURL:     envOr("REDIS_URL", "redis://localhost:6379/0"),
		CacheTTL:     envDuration("CACHE_TTL", 30*time.Second),
		CacheSize:    envInt("CACHE_SIZE", 1024),

		MaxContextChars:   envInt("MAX_CONTEXT_CHARS", 6000),
		ChatHistoryTurns:  envInt("CHAT_HISTORY_TURNS", 10),
		ProfileWindowDays: envInt("PROFILE_WINDOW_DAYS", 30),

		LogMode: envOr("LOG_MODE", "dev"),

		DiscordToken:      os.Getenv("DISCORD_BOT_TOKEN"),
		DiscordWebhook:    os.Getenv("DISCORD_WEBHOOK_URL"),
		DiscordUserIDs:    envList("DISCORD_USER_IDS"),
		CheckInCron:       envOr("CHECK_IN_CRON", "0 9 * * *"),
		ChatRatePerMinute: envInt("CHAT_RATE_PER_MINUTE", 6),
	}
}

// APIKey picks the key that belongs to the configured provider.
func (c *Config) APIKey() string {
	switch c.LLMProvider {
	case "openai":
		return c.OpenAIKey
	case "gemini":
		return c.GeminiKey
	case "ollama":
		return ""
	}
	return c.AnthropicKey
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt falls back on unset, malformed or negative values.
func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// envDuration accepts Go durations ("8s") or plain seconds ("8").
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
