// Package model defines the request and response types that cross the
// proxy boundary, independent of the web framework.
package model

import (
	"context"
	"io"
	"net/http"
)

// InboundRequest is a client request to be forwarded upstream.
type InboundRequest struct {
	Ctx      context.Context
	Method   string
	Path     string
	RawQuery string // forwarded verbatim, without re-encoding
	Header   http.Header
	Body     io.Reader // may be nil
}

// UpstreamResponse is the upstream reply to be streamed back to the client.
// The caller must close Body.
type UpstreamResponse struct {
	StatusCode int
	StatusText string
	Header     http.Header
	Body       io.ReadCloser
}
