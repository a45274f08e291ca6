package middleware

import (
	"time"

	"github.com/deppfellow/rentals-api/internal/server"
	"github.com/labstack/echo/v4"
)

const metricsPath = "/metrics"

// MetricsMiddleware feeds the HTTP collectors.
type MetricsMiddleware struct {
	server *server.Server
}

func NewMetricsMiddleware(s *server.Server) *MetricsMiddleware {
	return &MetricsMiddleware{server: s}
}

// Collect records status and latency per route template. Scrapes of
// /metrics itself and unmatched routes are skipped.
func (m *MetricsMiddleware) Collect() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == metricsPath {
				return err
			}
			if route == "" {
				route = "unmatched"
			}

			m.server.Metrics.ObserveRequest(route, c.Request().Method, statusFromError(c, err), time.Since(start))
			return err
		}
	}
}
