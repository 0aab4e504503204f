package handler

import (
	"github.com/labstack/echo/v4"

	"backend-proxy-go/internal/middleware"
)

// RegisterRoutes wires all route handlers onto the Echo instance.
// Bare paths such as /orders reach these routes through the rewrite
// middleware. Security headers are only added to locally generated
// responses; proxied responses carry the upstream's headers.
func RegisterRoutes(e *echo.Echo, proxy *ProxyHandler, health *HealthHandler) {
	secure := middleware.SecurityHeaders()

	e.GET("/healthz", health.Healthz, secure)
	e.GET("/status", health.Status, secure)
	e.GET("/api/meta", health.Status, secure)

	e.GET("/api/orders", proxy.Orders)
	e.POST("/api/orders", proxy.Orders)
	e.GET("/api/orders/:id", proxy.OrderByID)

	e.GET("/api/users/getList", proxy.UserList)
	e.GET("/api/users/:id", proxy.UserByID)
	e.POST("/api/users", proxy.Users)
}
