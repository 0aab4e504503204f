package env

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfiguration matches any *ConfigurationError via errors.Is.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError reports missing or malformed base URL variables.
// It is not retryable.
type ConfigurationError struct {
	Keys    []string // variables involved, if known
	Value   string   // offending raw value, if any
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Value != "" {
		fmt.Fprintf(&b, ": %q", e.Value)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrConfiguration or another *ConfigurationError.
func (e *ConfigurationError) Is(target error) bool {
	if target == ErrConfiguration {
		return true
	}
	_, ok := target.(*ConfigurationError)
	return ok
}
