package middleware

import (
	"time"

	"github.com/deppfellow/sweetshop/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// unmatchedRoute labels requests that matched no route, keeping raw paths
// out of the metric labels.
const unmatchedRoute = "unmatched"

// MetricsMiddleware records Prometheus request metrics.
type MetricsMiddleware struct {
	server *server.Server
}

func NewMetricsMiddleware(s *server.Server) *MetricsMiddleware {
	return &MetricsMiddleware{server: s}
}

// RecordRequests counts each request and observes its latency, labelled by
// the matched route template.
func (m *MetricsMiddleware) RecordRequests() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			route := c.Path()
			if errors.Is(err, echo.ErrNotFound) || errors.Is(err, echo.ErrMethodNotAllowed) {
				route = unmatchedRoute
			}

			m.server.Metrics.RecordHTTPRequest(route, c.Request().Method, responseStatus(c, err), time.Since(start))
			return err
		}
	}
}
