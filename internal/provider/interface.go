// Package provider defines the chat-capability interface for upstream model
// providers and the immutable binding set the resolver selects from.
package provider

import (
	"context"

	"github.com/modelmux/modelmux/pkg/types"
)

// ChatClient is the capability a provider binding exposes: it can serve a
// chat completion request for the models its provider hosts. One
// implementation exists per provider; the resolver's output selects among
// them, replacing conditional string matching at call sites.
type ChatClient interface {
	// Name returns the provider identifier as it appears in catalog
	// descriptors (e.g. "OpenRouter", "Gemini").
	Name() string

	// ChatCompletion issues a single, non-streaming completion request.
	ChatCompletion(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error)
}

// Factory creates a ChatClient from configuration.
type Factory func(cfg Config) (ChatClient, error)

// Config contains provider-specific construction parameters.
type Config struct {
	Name    string
	Type    string
	APIKey  string
	BaseURL string
	Headers map[string]string
	Timeout int // seconds; zero means the adapter default
}
