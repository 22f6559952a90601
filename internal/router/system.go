package router

import (
	"github.com/deppfellow/sweetshop/internal/handler"
	"github.com/deppfellow/sweetshop/internal/server"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers endpoints that are not part of the resource API:
// the landing page, health, Prometheus metrics and the API docs.
func registerSystemRoutes(r *echo.Echo, s *server.Server, h *handler.Handlers) {
	r.GET("/", handler.Home)

	// Health status endpoint (used by Kubernetes/monitors).
	r.GET("/status", h.Health.CheckHealth)

	r.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
	r.GET("/openapi.yaml", h.OpenAPI.ServeOpenAPISpec)
}
