package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/rentals-api/internal/middleware"
	"github.com/deppfellow/rentals-api/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// HealthHandler serves /status for load balancers and uptime monitors. It
// reports the document store and, when configured, redis.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// CheckHealth returns 200 when every enabled check passes and 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"store":       h.server.Store.Name(),
	}

	checks := make(map[string]interface{})
	isHealthy := true

	obs := h.server.Config.Observability
	if obs.CheckEnabled("store") {
		if !h.check(c.Request().Context(), &logger, checks, "store", h.server.Store.Ping) {
			isHealthy = false
		}
	}

	if h.server.Redis != nil && obs.CheckEnabled("redis") {
		ping := func(ctx context.Context) error {
			return h.server.Redis.Ping(ctx).Err()
		}
		if !h.check(c.Request().Context(), &logger, checks, "redis", ping) {
			isHealthy = false
		}
	}

	response["checks"] = checks

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		h.server.LoggerService.RecordCustomEvent("HealthCheckError", map[string]interface{}{
			"check_type":        "overall",
			"operation":         "health_check",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	if err := c.JSON(http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("failed to write JSON response")
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}

// check runs one dependency ping under the configured timeout and records
// its outcome in checks.
func (h *HealthHandler) check(
	ctx context.Context,
	logger *zerolog.Logger,
	checks map[string]interface{},
	name string,
	ping func(ctx context.Context) error,
) bool {
	ctx, cancel := context.WithTimeout(ctx, h.server.Config.Observability.HealthChecks.Timeout)
	defer cancel()

	checkStart := time.Now()
	err := ping(ctx)
	elapsed := time.Since(checkStart)

	if err != nil {
		checks[name] = map[string]interface{}{
			"status":        "unhealthy",
			"response_time": elapsed.String(),
			"error":         err.Error(),
		}

		logger.Error().
			Err(err).
			Str("check", name).
			Dur("response_time", elapsed).
			Msg("health check failed")

		h.server.LoggerService.RecordCustomEvent("HealthCheckError", map[string]interface{}{
			"check_type":       name,
			"operation":        "health_check",
			"error_type":       name + "_unhealthy",
			"response_time_ms": elapsed.Milliseconds(),
			"error_message":    err.Error(),
		})

		return false
	}

	checks[name] = map[string]interface{}{
		"status":        "healthy",
		"response_time": elapsed.String(),
	}

	return true
}
