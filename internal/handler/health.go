package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"backend-proxy-go/internal/env"
)

// Version is a string type for dependency injection of the build version.
type Version string

// timestampLayout matches JavaScript's Date.prototype.toISOString.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// StatusResponse is a snapshot of mode and upstream resolution.
type StatusResponse struct {
	AppEnv           env.Mode `json:"appEnv"`
	APIBaseURL       string   `json:"apiBaseUrl"`
	PublicAPIBaseURL string   `json:"publicApiBaseUrl,omitempty"`
	NodeEnv          *string  `json:"nodeEnv"`
	Timestamp        string   `json:"timestamp"`
	Version          string   `json:"version"`
}

// HealthHandler serves health and status endpoints.
type HealthHandler struct {
	resolver *env.Resolver
	version  Version
	now      func() time.Time
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(resolver *env.Resolver, v Version) *HealthHandler {
	return &HealthHandler{resolver: resolver, version: v, now: time.Now}
}

// Healthz returns a simple OK response for liveness probes.
func (h *HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Status reports the resolved mode and base URLs without calling the upstream.
// All values come from one snapshot so they cannot disagree.
func (h *HealthHandler) Status(c echo.Context) error {
	snap := h.resolver.Snapshot()

	apiBaseURL, err := snap.ServerBaseURL()
	if err != nil {
		var cfgErr *env.ConfigurationError
		if errors.As(err, &cfgErr) {
			return writeError(c, http.StatusInternalServerError, kindConfiguration, err.Error())
		}
		return err
	}

	resp := StatusResponse{
		AppEnv:     snap.Mode(),
		APIBaseURL: apiBaseURL,
		Timestamp:  h.now().UTC().Format(timestampLayout),
		Version:    string(h.version),
	}
	if public, err := snap.PublicBaseURL(); err == nil {
		resp.PublicAPIBaseURL = public
	}
	if nodeEnv, ok := snap.Get(env.KeyRuntimeEnv); ok {
		resp.NodeEnv = &nodeEnv
	}

	c.Response().Header().Set("Cache-Control", "no-store")
	return c.JSON(http.StatusOK, resp)
}
