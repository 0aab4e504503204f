package middleware

import (
	"github.com/labstack/echo/v4"
)

// SecurityHeaders returns an Echo middleware that adds security headers to
// responses generated by this service. It is not applied to proxied routes,
// whose headers belong to the upstream.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			res := c.Response()
			res.Before(func() {
				res.Header().Set("X-Content-Type-Options", "nosniff")
				res.Header().Set("X-Frame-Options", "DENY")
			})
			return next(c)
		}
	}
}
