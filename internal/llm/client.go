package llm

import "context"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"` // user, assistant
	Content string `json:"content"`
}

type Response struct {
	Content string
	Model   string
}

// Client sends one completion request. Implementations make a single
// attempt; callers own timeouts through ctx.
type Client interface {
	Chat(ctx context.Context, systemPrompt string, messages []Message) (*Response, error)
}
