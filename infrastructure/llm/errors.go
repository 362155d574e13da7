package llm

import (
	"context"
	"errors"
	"fmt"
)

// Common errors returned by the client and providers.
var (
	// ErrEmptyAPIKey indicates a required API key was not provided.
	ErrEmptyAPIKey = errors.New("API key cannot be empty")

	// ErrEmptyResponse indicates the provider returned no usable text.
	ErrEmptyResponse = errors.New("empty response from API")
)

// ProviderError normalizes provider-specific failures into a common
// shape so the retry middleware can decide retryability uniformly.
type ProviderError struct {
	// Provider names the LLM provider that produced the error.
	Provider string

	// StatusCode holds the HTTP status from the provider, if any.
	StatusCode int

	// Message is the provider's error message.
	Message string

	// Retryable marks transient failures (rate limits, server errors,
	// timeouts) worth another attempt.
	Retryable bool

	// Err is the original error for unwrapping.
	Err error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	base := fmt.Sprintf("%s error", e.Provider)
	if e.StatusCode > 0 {
		base += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Message != "" {
		base += ": " + e.Message
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

// Unwrap returns the original provider error.
func (e *ProviderError) Unwrap() error { return e.Err }

// classifyHTTPError builds a ProviderError from an HTTP status code.
// Rate limits and 5xx responses are retryable; everything else is not.
func classifyHTTPError(provider string, statusCode int, message string, err error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    message,
		Retryable:  statusCode == 429 || statusCode >= 500,
		Err:        err,
	}
}

// isRetryable reports whether an error is worth retrying. Context
// cancellation and deadline expiry never are: the caller's budget is
// spent.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	// Unclassified errors (network hiccups, SDK internals) get retried.
	return true
}
