package middleware

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"backend-proxy-go/internal/metrics"
)

// MetricsMiddleware returns an Echo middleware that records Prometheus metrics
// for each inbound request. Paths are labeled after the bare-path rewrite,
// so /orders and /api/orders share a series.
func MetricsMiddleware(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			m.RequestsInFlight.Inc()
			defer m.RequestsInFlight.Dec()

			start := time.Now()
			err := next(c)
			elapsed := time.Since(start).Seconds()

			method := metrics.NormalizeMethod(c.Request().Method)
			status := strconv.Itoa(responseStatus(c, err))
			prefix := metrics.NormalizePath(c.Request().URL.Path)

			m.RequestsTotal.WithLabelValues(method, status, prefix).Inc()
			m.RequestDuration.WithLabelValues(method, status, prefix).Observe(elapsed)

			return err
		}
	}
}

// responseStatus returns the status the client will see. An *echo.HTTPError
// returned by the handler is written later by Echo's error handler, so the
// response still reports 200 at this point.
func responseStatus(c echo.Context, err error) int {
	var he *echo.HTTPError
	if err != nil && errors.As(err, &he) {
		return he.Code
	}
	return c.Response().Status
}
