// Package service implements the core proxy forwarding logic.
package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"backend-proxy-go/internal/client"
	"backend-proxy-go/internal/env"
	"backend-proxy-go/internal/header"
	"backend-proxy-go/internal/model"
)

// ProxyService forwards inbound requests to the upstream selected by the
// environment resolver.
type ProxyService struct {
	client   *client.UpstreamClient
	resolver *env.Resolver
	logger   *slog.Logger
}

// NewProxyService creates a ProxyService.
func NewProxyService(c *client.UpstreamClient, resolver *env.Resolver, logger *slog.Logger) *ProxyService {
	return &ProxyService{
		client:   c,
		resolver: resolver,
		logger:   logger.With("component", "proxy_service"),
	}
}

// Forward sends the inbound request to targetPath on the upstream and
// returns the upstream response with hop-by-hop headers removed. The caller
// is responsible for closing the response body.
//
// A *env.ConfigurationError is returned before any network call when the
// base URL cannot be resolved. Transport failures are returned as *ProxyError.
// Upstream 4xx and 5xx responses are not errors.
func (s *ProxyService) Forward(in *model.InboundRequest, targetPath string) (*model.UpstreamResponse, error) {
	baseURL, err := s.resolver.ServerBaseURL()
	if err != nil {
		return nil, err
	}

	target, err := BuildTargetURL(baseURL, targetPath, in.RawQuery)
	if err != nil {
		return nil, &ProxyError{Op: "build_target", Method: in.Method, Target: targetPath, Cause: err}
	}

	body, err := readBody(in)
	if err != nil {
		return nil, &ProxyError{Op: "read_body", Method: in.Method, Target: target, Cause: err}
	}

	ctx := in.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	s.logger.Debug("forwarding request",
		"method", in.Method,
		"path", in.Path,
		"target", target,
	)

	resp, err := s.client.DoStream(ctx, in.Method, target, header.Sanitize(in.Header), body)
	if err != nil {
		return nil, &ProxyError{Op: "forward", Method: in.Method, Target: target, Cause: err}
	}

	resp.Header = header.Sanitize(resp.Header)
	return resp, nil
}

// BuildTargetURL resolves targetPath against baseURL the way a browser
// resolves a path against a base, then replaces the query with rawQuery
// verbatim.
func BuildTargetURL(baseURL, targetPath, rawQuery string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	ref, err := url.Parse(targetPath)
	if err != nil {
		return "", fmt.Errorf("parse target path: %w", err)
	}

	u := base.ResolveReference(ref)
	u.RawQuery = rawQuery
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), nil
}

// readBody returns nil for GET and HEAD and for empty bodies, so no
// zero-length body is sent upstream.
func readBody(in *model.InboundRequest) (io.Reader, error) {
	if in.Method == http.MethodGet || in.Method == http.MethodHead || in.Body == nil {
		return nil, nil
	}

	buf, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if len(buf) == 0 {
		return nil, nil
	}
	return bytes.NewReader(buf), nil
}
