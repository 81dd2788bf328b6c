// Package modelmux implements a deterministic model-to-provider resolution
// policy for chat applications that let users pick a model.
//
// Given a requested model id, a catalog of model descriptors, and an
// immutable set of provider bindings, Resolve selects the provider client
// that should serve the model or reports a documented failure. Resolution
// is pure: no I/O, no retries, no shared state.
//
// Basic usage:
//
//	bindings, err := provider.NewBindings(openrouterClient, geminiClient)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := modelmux.Resolve("gpt-oss-20b", cat, bindings)
//	if err != nil {
//	    // errors carry a machine-readable reason: unknown_model,
//	    // no_provider_configured, catalog_unavailable
//	}
//	resp, err := res.Client.ChatCompletion(ctx, req)
package modelmux

import (
	"github.com/modelmux/modelmux/internal/provider"
	"github.com/modelmux/modelmux/pkg/errors"
	"github.com/modelmux/modelmux/pkg/types"
)

// Version is the current version of modelmux.
const Version = "1.0.0"

// Re-export the catalog data model so callers import one path.
type (
	// ModelDescriptor describes a single selectable model.
	ModelDescriptor = types.ModelDescriptor

	// Catalog is the full set of selectable models plus the default id.
	Catalog = types.Catalog

	// Category classifies a model's pricing tier.
	Category = types.Category

	// ChatRequest is the unified chat completion input.
	ChatRequest = types.ChatRequest

	// ChatResponse is the unified chat completion output.
	ChatResponse = types.ChatResponse

	// ChatMessage is a single message in a conversation.
	ChatMessage = types.ChatMessage
)

// Re-export provider types.
type (
	// ChatClient is the capability a provider binding exposes.
	ChatClient = provider.ChatClient

	// Bindings is the read-only set of live provider clients.
	Bindings = provider.Bindings

	// ProviderConfig contains provider construction parameters.
	ProviderConfig = provider.Config
)

// Re-export error types.
type (
	// ResolutionError is the standardized resolution failure.
	ResolutionError = errors.ResolutionError

	// Reason identifies why a resolution failed.
	Reason = errors.Reason
)

// Re-export category constants.
const (
	CategoryFree = types.CategoryFree
	CategoryPaid = types.CategoryPaid
)

// Re-export failure reasons.
const (
	ReasonCatalogUnavailable   = errors.ReasonCatalogUnavailable
	ReasonUnknownModel         = errors.ReasonUnknownModel
	ReasonNoProviderConfigured = errors.ReasonNoProviderConfigured
	ReasonProviderError        = errors.ReasonProviderError
)

// Re-export binding construction and error helpers.
var (
	NewBindings = provider.NewBindings
	ReasonOf    = errors.ReasonOf
)
