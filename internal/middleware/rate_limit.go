package middleware

import (
	"github.com/deppfellow/rentals-api/internal/errs"
	"github.com/deppfellow/rentals-api/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware enforces a per-IP token bucket and reports rejected
// requests to Prometheus and New Relic.
type RateLimitMiddleware struct {
	server *server.Server
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		server: s,
	}
}

// Limiter returns echo's in-memory rate limiter, or a pass-through when rate
// limiting is disabled.
func (r *RateLimitMiddleware) Limiter() echo.MiddlewareFunc {
	cfg := r.server.Config.RateLimit
	if !cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/status"
		},
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(cfg.Rate),
			Burst:     cfg.Burst,
			ExpiresIn: cfg.ExpiresIn,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			r.RecordRateLimitHit(c.Path())

			GetLogger(c).Warn().
				Str("identifier", identifier).
				Msg("rate limit exceeded")

			return errs.NewTooManyRequestsError("Demasiadas peticiones", "1s")
		},
	})
}

func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	r.server.Metrics.ObserveRateLimitHit(endpoint)

	if r.server.LoggerService != nil {
		r.server.LoggerService.RecordCustomEvent("RateLimitHit", map[string]interface{}{
			"endpoint": endpoint,
		})
	}
}
