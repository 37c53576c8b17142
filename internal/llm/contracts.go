package llm

import "context"

// CompletionRequest is one single-turn chat completion.
type CompletionRequest struct {
	Model       string // empty means the client's configured model
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Completer is the interface the generation stage depends on.
// Implementations return the first choice's message content.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
