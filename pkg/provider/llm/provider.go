// Package llm defines the Provider interface for Large Language Model
// backends used by the intent classifier. Only plain text completion is
// needed: the classifier sends a prompt with retrieved examples and expects
// a single short label back.
//
// Implementations must be safe for concurrent use.
package llm

import "context"

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    string
	Content string
}

// Request carries everything the model needs to produce a response. Messages
// must be non-empty.
type Request struct {
	// Messages is the ordered conversation; the last entry drives the
	// response.
	Messages []Message

	// Temperature controls output randomness. Zero means the provider
	// default; intent classification wants values near zero.
	Temperature float64

	// MaxTokens caps the completion length. Zero means provider default.
	MaxTokens int
}

// Provider is the abstraction over any completion backend.
type Provider interface {
	// Name identifies the backend in logs and metrics (e.g. "ollama").
	Name() string

	// Complete returns the model's text response for the request.
	Complete(ctx context.Context, req Request) (string, error)
}
