package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ProviderError is the canonical error shape surfaced by every provider
// adapter. Retry classification reads Status and Code only, never the
// human-readable message. This is the one error-shape contract with the
// provider layer; adapters are responsible for filling it from whatever
// structured field their wire format carries.
type ProviderError struct {
	// Status is the HTTP status code of the failed call (0 when the request
	// never reached the server).
	Status int

	// Code is the provider's structured status enum, e.g.
	// "RESOURCE_EXHAUSTED", "UNAVAILABLE", "API_KEY_INVALID".
	Code string

	// Message is human-readable detail, for logs only.
	Message string
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("provider error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("provider error (HTTP %d): %s", e.Status, e.Message)
}

// ErrNotConfigured indicates the API key is not set.
var ErrNotConfigured = errors.New("generation API key not configured")

// IsTransient reports whether the error is classified as likely to resolve
// on retry: rate limiting, overload, resource exhaustion.
func IsTransient(err error) bool {
	var pe *ProviderError
	if !errors.As(err, &pe) {
		return false
	}
	switch pe.Status {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout,
		529: // Anthropic's non-standard "overloaded" status
		return true
	}
	switch pe.Code {
	case "RESOURCE_EXHAUSTED", "UNAVAILABLE", "DEADLINE_EXCEEDED", "overloaded_error":
		return true
	}
	return false
}

// IsRateLimited reports whether the error is specifically a rate limit.
func IsRateLimited(err error) bool {
	var pe *ProviderError
	if !errors.As(err, &pe) {
		return false
	}
	return pe.Status == http.StatusTooManyRequests || pe.Code == "RESOURCE_EXHAUSTED"
}

// IsAuth reports whether the error is a credential/key problem. Not
// retryable; the user must reconfigure.
func IsAuth(err error) bool {
	if errors.Is(err, ErrNotConfigured) {
		return true
	}
	var pe *ProviderError
	if !errors.As(err, &pe) {
		return false
	}
	switch pe.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	switch pe.Code {
	case "API_KEY_INVALID", "UNAUTHENTICATED", "PERMISSION_DENIED", "authentication_error":
		return true
	}
	return false
}
