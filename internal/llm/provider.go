package llm

import "fmt"

// Supported providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderGemini    = "gemini"
)

// defaultModels apply when no model is configured.
var defaultModels = map[string]string{
	ProviderAnthropic: "claude-sonnet-4-20250514",
	ProviderOpenAI:    "gpt-4o",
	ProviderOllama:    "llama3.1",
	ProviderGemini:    "gemini-2.0-flash",
}

type ProviderConfig struct {
	Provider  string
	APIKey    string
	AuthToken string // anthropic OAuth token, sent as Bearer
	Model     string
	BaseURL   string
}

// NewClient builds the client for cfg.Provider. Every client makes exactly
// one attempt per call.
func NewClient(cfg ProviderConfig) (Client, error) {
	def, ok := defaultModels[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
	if cfg.Model == "" {
		cfg.Model = def
	}

	switch cfg.Provider {
	case ProviderAnthropic:
		return NewAnthropicClient(cfg.APIKey, cfg.AuthToken, cfg.Model, cfg.BaseURL), nil
	case ProviderOllama:
		// Ollama ignores the key but the OpenAI SDK insists on one.
		return NewOpenAIClient("ollama", cfg.Model, cfg.BaseURL), nil
	case ProviderGemini:
		return NewGeminiClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	}
	return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
}
