// Package openrouter implements the OpenRouter provider binding.
// OpenRouter is an aggregator exposing an OpenAI-compatible API; the free
// tier hosts the models the catalog marks as Free.
// API Reference: https://openrouter.ai/docs
package openrouter

import (
	"github.com/modelmux/modelmux/internal/provider"
	"github.com/modelmux/modelmux/internal/provider/openaicompat"
)

const (
	// ProviderName is the identifier carried by catalog descriptors.
	ProviderName = "OpenRouter"

	// DefaultBaseURL is the default OpenRouter API endpoint.
	DefaultBaseURL = "https://openrouter.ai/api/v1"
)

// New creates an OpenRouter chat client.
func New(cfg provider.Config) (provider.ChatClient, error) {
	info := openaicompat.Info{
		Name:           ProviderName,
		DefaultBaseURL: DefaultBaseURL,
		ExtraHeaders: map[string]string{
			"HTTP-Referer": "https://github.com/modelmux/modelmux",
			"X-Title":      "modelmux",
		},
	}
	return openaicompat.New(cfg, info)
}
