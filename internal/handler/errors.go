package handler

import (
	"github.com/labstack/echo/v4"
)

// Error kinds reported in the "error" field of error responses.
const (
	kindConfiguration = "configuration_error"
	kindProxy         = "proxy_error"
	kindProxyTimeout  = "proxy_timeout"
)

// errorResponse is the body of every error produced by this service itself.
// Upstream error responses are relayed as-is and never use this shape.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeError(c echo.Context, status int, kind, message string) error {
	return c.JSON(status, errorResponse{Error: kind, Message: message})
}
