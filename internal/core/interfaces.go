package core

import "context"

// Provider defines the interface for upstream completion providers
type Provider interface {
	// ChatCompletion executes a single non-streaming chat completion request
	ChatCompletion(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Configured reports whether the provider has the credential it needs.
	Configured() bool

	// Name identifies the provider in logs and errors
	Name() string
}
