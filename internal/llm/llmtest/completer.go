// Package llmtest provides a scripted llm.Completer for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/joseph-ayodele/studynotes/internal/llm"
)

// Completer records every request and answers with Reply, or Err when set.
type Completer struct {
	mu       sync.Mutex
	Reply    func(req llm.CompletionRequest) string
	Err      error
	requests []llm.CompletionRequest
}

// Echo returns a Completer that replies with the given prefix plus the prompt.
func Echo(prefix string) *Completer {
	return &Completer{Reply: func(req llm.CompletionRequest) string { return prefix + req.Prompt }}
}

// Failing returns a Completer whose every call fails with err.
func Failing(err error) *Completer {
	return &Completer{Err: err}
}

func (c *Completer) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if c.Err != nil {
		return "", c.Err
	}
	if c.Reply == nil {
		return "", nil
	}
	return c.Reply(req), nil
}

// Calls returns how many completions were requested.
func (c *Completer) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

// Requests returns a copy of the recorded requests.
func (c *Completer) Requests() []llm.CompletionRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]llm.CompletionRequest, len(c.requests))
	copy(out, c.requests)
	return out
}
