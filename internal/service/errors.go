package service

import (
	"errors"
	"fmt"
)

// ErrProxy matches any *ProxyError via errors.Is.
var ErrProxy = errors.New("proxy request failed")

// ProxyError reports a transport failure while reaching the upstream.
// The original cause is kept for diagnosis.
type ProxyError struct {
	Op     string // operation that failed
	Method string
	Target string // upstream URL
	Cause  error
}

// Error implements the error interface.
func (e *ProxyError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("proxy error [%s] %s %s: %v", e.Op, e.Method, e.Target, e.Cause)
	}
	return fmt.Sprintf("proxy error [%s]: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying error.
func (e *ProxyError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrProxy or another *ProxyError.
func (e *ProxyError) Is(target error) bool {
	if target == ErrProxy {
		return true
	}
	_, ok := target.(*ProxyError)
	return ok
}
