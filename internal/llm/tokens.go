package llm

// charsPerToken approximates English text. Sizes are for logging only.
const charsPerToken = 4

// framingTokens is the per-message role overhead.
const framingTokens = 4

// PromptSize describes one request before it is sent.
type PromptSize struct {
	Messages int
	Chars    int
	Tokens   int
}

func tokensFor(chars int) int {
	return (chars + charsPerToken - 1) / charsPerToken
}

// Measure sizes a request: the system prompt (which carries the user
// context) plus each message with its framing.
func Measure(systemPrompt string, messages []Message) PromptSize {
	s := PromptSize{
		Messages: len(messages),
		Chars:    len(systemPrompt),
		Tokens:   tokensFor(len(systemPrompt)),
	}
	for _, m := range messages {
		s.Chars += len(m.Content)
		s.Tokens += framingTokens + tokensFor(len(m.Content))
	}
	return s
}
