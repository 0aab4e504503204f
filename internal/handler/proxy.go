package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"backend-proxy-go/internal/env"
	"backend-proxy-go/internal/model"
	"backend-proxy-go/internal/service"
)

// ProxyHandler exposes one entry point per upstream resource. Each passes
// the request to the forwarder with a fixed target path.
type ProxyHandler struct {
	service *service.ProxyService
	logger  *slog.Logger
}

// NewProxyHandler creates a ProxyHandler.
func NewProxyHandler(svc *service.ProxyService, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{
		service: svc,
		logger:  logger.With("component", "proxy_handler"),
	}
}

// Orders proxies GET and POST /orders.
func (h *ProxyHandler) Orders(c echo.Context) error {
	return h.forward(c, "/orders")
}

// OrderByID proxies GET /orders/{id}.
func (h *ProxyHandler) OrderByID(c echo.Context) error {
	return h.forward(c, "/orders/"+escapedParam(c, "id"))
}

// UserList proxies GET /users/getList.
func (h *ProxyHandler) UserList(c echo.Context) error {
	return h.forward(c, "/users/getList")
}

// UserByID proxies GET /users/{id}.
func (h *ProxyHandler) UserByID(c echo.Context) error {
	return h.forward(c, "/users/"+escapedParam(c, "id"))
}

// Users proxies POST /users.
func (h *ProxyHandler) Users(c echo.Context) error {
	return h.forward(c, "/users")
}

// subDelims are the characters url.PathEscape leaves alone in a segment.
var subDelims = strings.NewReplacer(
	":", "%3A", "@", "%40", "&", "%26", "=", "%3D",
	"+", "%2B", "$", "%24", ",", "%2C", ";", "%3B",
)

// escapedParam returns the decoded path parameter re-encoded as a single
// path segment, with every reserved character percent-encoded.
func escapedParam(c echo.Context, name string) string {
	v := c.Param(name)
	if unescaped, err := url.PathUnescape(v); err == nil {
		v = unescaped
	}
	return subDelims.Replace(url.PathEscape(v))
}

func (h *ProxyHandler) forward(c echo.Context, targetPath string) error {
	req := c.Request()

	in := &model.InboundRequest{
		Ctx:      req.Context(),
		Method:   req.Method,
		Path:     req.URL.Path,
		RawQuery: req.URL.RawQuery,
		Header:   req.Header,
		Body:     req.Body,
	}

	resp, err := h.service.Forward(in, targetPath)
	if err != nil {
		return h.mapError(c, err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Upstream values replace anything middleware already set, such as
	// X-Request-Id.
	dst := c.Response().Header()
	for key, vals := range resp.Header {
		dst[key] = slices.Clone(vals)
	}
	// A nil entry stops net/http from adding its own value.
	for _, key := range []string{echo.HeaderContentType, "Date"} {
		if _, ok := resp.Header[key]; !ok {
			dst[key] = nil
		}
	}

	c.Response().WriteHeader(resp.StatusCode)

	// Headers are committed from here on. A failure mid-stream leaves the
	// client with a truncated body under the upstream status; it can only
	// be logged.
	if _, err := io.Copy(newFlushWriter(c.Response()), resp.Body); err != nil {
		h.logger.Error("streaming response body",
			"err", err,
			"path", req.URL.Path,
			"target", targetPath,
		)
	}

	return nil
}

func (h *ProxyHandler) mapError(c echo.Context, err error) error {
	// Body limit violations surface through the inbound body reader.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	h.logger.Error("proxy error",
		"err", err,
		"path", c.Request().URL.Path,
	)

	var cfgErr *env.ConfigurationError
	if errors.As(err, &cfgErr) {
		return writeError(c, http.StatusInternalServerError, kindConfiguration, err.Error())
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return writeError(c, http.StatusGatewayTimeout, kindProxyTimeout, err.Error())
	}

	if errors.Is(err, context.Canceled) {
		return writeError(c, http.StatusBadGateway, kindProxy, "client disconnected: "+err.Error())
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return writeError(c, http.StatusBadGateway, kindProxy, "upstream host unreachable: "+err.Error())
	}

	return writeError(c, http.StatusBadGateway, kindProxy, err.Error())
}

// flushWriter pushes every chunk to the client as soon as it is written.
type flushWriter struct {
	w  io.Writer
	rc *http.ResponseController
}

func newFlushWriter(w http.ResponseWriter) *flushWriter {
	return &flushWriter{w: w, rc: http.NewResponseController(w)}
}

func (f *flushWriter) Write(p []byte) (int, error) {
	n, err := f.w.Write(p)
	if n > 0 {
		_ = f.rc.Flush()
	}
	return n, err
}
