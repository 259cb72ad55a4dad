package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const geminiAPI = "https://generativelanguage.googleapis.com"

// GeminiClient talks to the generateContent REST endpoint. Requests are
// built with sjson and responses read with gjson.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

func NewGeminiClient(apiKey, model, baseURL string) *GeminiClient {
	if model == "" {
		model = defaultModels[ProviderGemini]
	}
	if baseURL == "" {
		baseURL = geminiAPI
	}
	return &GeminiClient{apiKey: apiKey, model: model, baseURL: baseURL, http: &http.Client{}}
}

func geminiRole(role string) string {
	if role == RoleAssistant {
		return "model"
	}
	return "user"
}

func buildGeminiRequest(systemPrompt string, messages []Message) ([]byte, error) {
	body := []byte(`{}`)
	var err error
	if systemPrompt != "" {
		if body, err = sjson.SetBytes(body, "systemInstruction.parts.0.text", systemPrompt); err != nil {
			return nil, err
		}
	}
	for i, m := range messages {
		if body, err = sjson.SetBytes(body, fmt.Sprintf("contents.%d.role", i), geminiRole(m.Role)); err != nil {
			return nil, err
		}
		if body, err = sjson.SetBytes(body, fmt.Sprintf("contents.%d.parts.0.text", i), m.Content); err != nil {
			return nil, err
		}
	}
	return body, nil
}

func (c *GeminiClient) Chat(ctx context.Context, systemPrompt string, messages []Message) (*Response, error) {
	body, err := buildGeminiRequest(systemPrompt, messages)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(respBody, "error.message").String()
		if msg == "" {
			msg = string(respBody)
		}
		return nil, fmt.Errorf("gemini chat: %s %s", resp.Status, msg)
	}
	if !gjson.ValidBytes(respBody) {
		return nil, fmt.Errorf("gemini chat: malformed response")
	}

	var text bytes.Buffer
	for _, part := range gjson.GetBytes(respBody, "candidates.0.content.parts").Array() {
		text.WriteString(part.Get("text").String())
	}
	return &Response{
		Content: text.String(),
		Model:   gjson.GetBytes(respBody, "modelVersion").String(),
	}, nil
}
