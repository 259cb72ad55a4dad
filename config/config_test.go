package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{"LLM_PROVIDER", "MODEL_TIMEOUT", "CACHE_BACKEND", "PROFILE_WINDOW_DAYS", "DISCORD_USER_IDS"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, "anthropic", cfg.LLMProvider)
	assert.Equal(t, 8*time.Second, cfg.ModelTimeout)
	assert.Equal(t, "memory", cfg.CacheBackend)
	assert.Equal(t, 30, cfg.ProfileWindowDays)
	assert.Empty(t, cfg.DiscordUserIDs)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("MODEL_TIMEOUT", "250ms")
	t.Setenv("CACHE_TTL", "5")
	t.Setenv("CHAT_HISTORY_TURNS", "4")
	t.Setenv("DISCORD_USER_IDS", " 111, 222 ,,")

	cfg := Load()
	assert.Equal(t, "g-key", cfg.APIKey())
	assert.Equal(t, 250*time.Millisecond, cfg.ModelTimeout)
	assert.Equal(t, 5*time.Second, cfg.CacheTTL)
	assert.Equal(t, 4, cfg.ChatHistoryTurns)
	assert.Equal(t, []string{"111", "222"}, cfg.DiscordUserIDs)
}

func TestEnvHelpers_FallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "lots")
	t.Setenv("X_NEG", "-3")
	t.Setenv("X_DUR", "soon")

	assert.Equal(t, 7, envInt("X_INT", 7))
	assert.Equal(t, 7, envInt("X_NEG", 7))
	assert.Equal(t, time.Minute, envDuration("X_DUR", time.Minute))
}

func TestAPIKey_PerProvider(t *testing.T) {
	cfg := &Config{AnthropicKey: "a", OpenAIKey: "o", GeminiKey: "g"}
	for provider, want := range map[string]string{"anthropic": "a", "openai": "o", "gemini": "g", "ollama": ""} {
		cfg.LLMProvider = provider
		assert.Equal(t, want, cfg.APIKey(), provider)
	}
}
