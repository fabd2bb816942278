package llm

import (
	"context"

	"github.com/Rrens/chatbot-api/internal/domain"
)

// Request carries the conversation to continue. Turns are in conversation
// order and the last one is the user's new message.
type Request struct {
	Turns []domain.Turn
}

// Response contains the generated assistant reply
type Response struct {
	Content    string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for generation providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Generate produces the next assistant turn for the conversation
	Generate(ctx context.Context, req Request, model string) (*Response, error)
}
