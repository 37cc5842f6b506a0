package entities

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors returned by repositories.
var (
	ErrProviderNotFound   = errors.New("provider not found")
	ErrTermNotFound       = errors.New("glossary term not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrSessionNotFound    = errors.New("chat session not found")
	ErrStockNotFound      = errors.New("stock not found")
	ErrBriefingNotFound   = errors.New("briefing not found")
	ErrAlreadyInWatchlist = errors.New("stock already in watchlist")
)

// ConfigurationError means the gateway cannot proceed because of how the
// system is configured (no active provider, unknown backend kind). It is
// never retryable.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// NewConfigurationError builds a ConfigurationError from a format string.
func NewConfigurationError(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// IsConfigurationError reports whether err is (or wraps) a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// UpstreamError means the selected backend returned a non-success status or
// an unparsable body. StatusCode is 0 for transport-level failures.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("upstream error from %s: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream error from %s: %s", e.Provider, e.Message)
}

// Transient reports whether the failure is worth retrying: network-level
// failures and 5xx responses are, 4xx responses are not.
func (e *UpstreamError) Transient() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500
}

// IsUpstreamError reports whether err is (or wraps) an UpstreamError.
func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// TimeoutError means the upstream call exceeded its deadline. Callers treat
// it like an upstream failure, but it is logged distinctly.
type TimeoutError struct {
	Provider string
	Timeout  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("upstream call to %s timed out after %s", e.Provider, e.Timeout)
}

// IsTimeoutError reports whether err is (or wraps) a TimeoutError.
func IsTimeoutError(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
