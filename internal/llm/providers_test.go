package llm

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestOpenAIClient_Chat(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-test",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Nice streak!"}}]}`)
	}))
	defer srv.Close()

	c := NewOpenAIClient("k", "gpt-test", srv.URL)
	resp, err := c.Chat(context.Background(), "sys", []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
		{Role: RoleUser, Content: "how am I doing"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Nice streak!", resp.Content)

	msgs := gjson.GetBytes(body, "messages").Array()
	require.Len(t, msgs, 4)
	assert.Equal(t, "system", msgs[0].Get("role").String())
	assert.Equal(t, "assistant", msgs[2].Get("role").String())
}

func TestOpenAIClient_SingleAttempt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewOpenAIClient("k", "gpt-test", srv.URL).Chat(context.Background(), "sys", []Message{{Role: RoleUser, Content: "x"}})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAnthropicClient_Chat(t *testing.T) {
	var key string
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key = r.Header.Get("X-Api-Key")
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-test",
			"content":[{"type":"text","text":"You slept "},{"type":"text","text":"well."}],
			"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":4}}`)
	}))
	defer srv.Close()

	c := NewAnthropicClient("sk-test", "", "claude-test", srv.URL)
	resp, err := c.Chat(context.Background(), "be brief", []Message{{Role: RoleUser, Content: "sleep?"}})
	require.NoError(t, err)

	assert.Equal(t, "You slept well.", resp.Content)
	assert.Equal(t, "sk-test", key)
	assert.Equal(t, "be brief", gjson.GetBytes(body, "system.0.text").String())
	assert.Equal(t, "sleep?", gjson.GetBytes(body, "messages.0.content.0.text").String())
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		provider string
		want     any
	}{
		{ProviderAnthropic, &AnthropicClient{}},
		{ProviderOpenAI, &OpenAIClient{}},
		{ProviderOllama, &OpenAIClient{}},
		{ProviderGemini, &GeminiClient{}},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			c, err := NewClient(ProviderConfig{Provider: tt.provider, APIKey: "k"})
			require.NoError(t, err)
			assert.IsType(t, tt.want, c)
		})
	}

	_, err := NewClient(ProviderConfig{Provider: "mistral"})
	assert.ErrorContains(t, err, `unknown LLM provider "mistral"`)
}

func TestNewClient_DefaultModel(t *testing.T) {
	c, err := NewClient(ProviderConfig{Provider: ProviderOllama})
	require.NoError(t, err)
	assert.Equal(t, "llama3.1", c.(*OpenAIClient).model)

	c, err = NewClient(ProviderConfig{Provider: ProviderGemini, Model: "gemini-test"})
	require.NoError(t, err)
	assert.Equal(t, "gemini-test", c.(*GeminiClient).model)
}
