// Package errors defines the resolution failure taxonomy. Every expected
// failure mode of catalog access and model resolution maps to one of these
// reasons; callers branch on the reason, never on error strings.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Reason identifies why a resolution or provider call failed.
type Reason string

const (
	// ReasonCatalogUnavailable means the catalog could not be reached or parsed.
	ReasonCatalogUnavailable Reason = "catalog_unavailable"

	// ReasonUnknownModel means the requested id is absent from the catalog.
	ReasonUnknownModel Reason = "unknown_model"

	// ReasonNoProviderConfigured means the id resolved to a provider with no
	// live binding.
	ReasonNoProviderConfigured Reason = "no_provider_configured"

	// ReasonProviderError means a bound provider rejected or failed a request.
	ReasonProviderError Reason = "provider_error"
)

// ResolutionError is the standardized error for catalog and resolution
// failures. It carries enough information for logging, metrics labels, and
// the HTTP error envelope.
type ResolutionError struct {
	Reason     Reason `json:"reason"`
	Model      string `json:"model,omitempty"`
	Provider   string `json:"provider,omitempty"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
	Retryable  bool   `json:"-"`
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("[%s] %s (model=%s, provider=%s)",
		e.Reason, e.Message, e.Model, e.Provider)
}

// HTTPStatusCode returns the HTTP status to serve for this error.
func (e *ResolutionError) HTTPStatusCode() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// NewCatalogUnavailable creates a catalog transport/parse failure (503).
func NewCatalogUnavailable(message string) *ResolutionError {
	return &ResolutionError{
		Reason:     ReasonCatalogUnavailable,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
		Retryable:  true,
	}
}

// NewUnknownModel creates an unknown-model failure (404).
func NewUnknownModel(model string) *ResolutionError {
	return &ResolutionError{
		Reason:     ReasonUnknownModel,
		Model:      model,
		Message:    fmt.Sprintf("model %q not found in catalog", model),
		StatusCode: http.StatusNotFound,
		Retryable:  false,
	}
}

// NewNoProviderConfigured creates a missing-binding failure (501).
func NewNoProviderConfigured(model, provider string) *ResolutionError {
	msg := fmt.Sprintf("no provider binding for model %q", model)
	if provider != "" {
		msg = fmt.Sprintf("no binding configured for provider %q (model %q)", provider, model)
	}
	return &ResolutionError{
		Reason:     ReasonNoProviderConfigured,
		Model:      model,
		Provider:   provider,
		Message:    msg,
		StatusCode: http.StatusNotImplemented,
		Retryable:  false,
	}
}

// NewProviderError wraps an upstream provider failure with its HTTP status.
func NewProviderError(provider, model string, statusCode int, message string) *ResolutionError {
	return &ResolutionError{
		Reason:     ReasonProviderError,
		Model:      model,
		Provider:   provider,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  statusCode == http.StatusTooManyRequests || statusCode >= 500,
	}
}

// ReasonOf extracts the failure reason from an error chain.
// Returns "" when the error is not a ResolutionError.
func ReasonOf(err error) Reason {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re.Reason
	}
	return ""
}

// IsCreditExhausted reports whether an error is an upstream 402, which the
// factory uses to stop routing to OpenRouter until reset.
func IsCreditExhausted(err error) bool {
	var re *ResolutionError
	return errors.As(err, &re) &&
		re.Reason == ReasonProviderError &&
		re.StatusCode == http.StatusPaymentRequired
}
