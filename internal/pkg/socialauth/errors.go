package socialauth

import (
	"errors"
	"fmt"
)

// Sentinel errors for the connection flows. Each maps to exactly one HTTP
// status at the controller boundary; none are retried here.
var (
	// ErrUnauthorized means the caller identity could not be established.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoLinkableAccount means the provider returned no usable page or
	// channel. The flow must fail instead of persisting an empty identity.
	ErrNoLinkableAccount = errors.New("no linkable account found")
)

// ValidationError is malformed client input (missing code, bad action, ...).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ConfigurationError means the provider registration is incomplete. This is
// operator-fixable, never user-fixable.
type ConfigurationError struct {
	Platform string
	Missing  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s credentials not configured (%s)", e.Platform, e.Missing)
}

// UpstreamError is a non-2xx or malformed response from an external provider.
// Message holds only what is safe to surface to the end user.
type UpstreamError struct {
	Platform   string
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s failed: %s", e.Platform, e.Op, e.Message)
	}
	return fmt.Sprintf("%s %s failed (status %d)", e.Platform, e.Op, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
