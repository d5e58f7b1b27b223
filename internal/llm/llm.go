package llm

import (
	"context"
	"errors"
)

// Client abstracts chat-completion LLM providers.
type Client interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// Prompt is a single system+user chat exchange.
type Prompt struct {
	System    string
	User      string
	MaxTokens int
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// Complete returns ErrNotImplemented.
func (PlaceholderClient) Complete(ctx context.Context, p Prompt) (string, error) {
	_ = ctx
	_ = p
	return "", ErrNotImplemented
}
