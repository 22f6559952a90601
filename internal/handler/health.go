package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/sweetshop/internal/middleware"
	"github.com/deppfellow/sweetshop/internal/server"
	"github.com/labstack/echo/v4"
)

// HealthHandler exposes a "system" endpoint that external systems can use to verify
// the service is alive and its database is reachable.
type HealthHandler struct {
	Handler
}

// NewHealthHandler constructs a HealthHandler with access to shared app dependencies.
func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// CheckHealth returns system health status and dependency checks.
//
// Response includes:
// - overall status (healthy/unhealthy)
// - timestamp (UTC)
// - environment (from config)
// - checks map, one entry per configured check
//
// It returns:
// - 200 OK if all checks pass
// - 503 Service Unavailable if any check fails
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := make(map[string]interface{})
	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}
	isHealthy := true

	healthCfg := h.server.Config.Observability.HealthChecks
	if healthCfg.Enabled {
		for _, name := range healthCfg.Checks {
			checkStart := time.Now()
			err := h.runCheck(c.Request().Context(), name, healthCfg.Timeout)

			if err != nil {
				isHealthy = false
				checks[name] = map[string]interface{}{
					"status":        "unhealthy",
					"response_time": time.Since(checkStart).String(),
					"error":         err.Error(),
				}

				logger.Error().
					Err(err).
					Str("check", name).
					Dur("response_time", time.Since(checkStart)).
					Msg("health check failed")

				h.recordHealthError(name, time.Since(checkStart), err)
				continue
			}

			checks[name] = map[string]interface{}{
				"status":        "healthy",
				"response_time": time.Since(checkStart).String(),
			}

			logger.Debug().
				Str("check", name).
				Dur("response_time", time.Since(checkStart)).
				Msg("health check passed")
		}
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write JSON response: %w", err)
	}
	return nil
}

func (h *HealthHandler) runCheck(ctx context.Context, name string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	switch name {
	case "database":
		// DB connection metrics/traces are captured by the nrpgx5 integration on Postgres.
		return h.server.DB.Ping(ctx)
	default:
		return fmt.Errorf("unknown health check %q", name)
	}
}

// recordHealthError records a New Relic custom event if New Relic is enabled.
func (h *HealthHandler) recordHealthError(check string, elapsed time.Duration, err error) {
	app := h.server.LoggerService.GetApplication()
	if app == nil {
		return
	}
	app.RecordCustomEvent("HealthCheckError", map[string]interface{}{
		"check_type":       check,
		"operation":        "health_check",
		"error_type":       check + "_unhealthy",
		"response_time_ms": elapsed.Milliseconds(),
		"error_message":    err.Error(),
	})
}
