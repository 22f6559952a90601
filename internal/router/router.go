// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API routes,
// mapping specific paths to their corresponding handlers
package router

import (
	"net/http"

	"github.com/deppfellow/sweetshop/internal/handler"
	"github.com/deppfellow/sweetshop/internal/middleware"
	"github.com/deppfellow/sweetshop/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the echo instance with every middleware and route.
//
// Middleware order matters: request ids first so every later layer can log
// them, Recover last so a panic still flows back through metrics and the
// request logger as an error.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	mw := middleware.NewMiddlewares(s)

	r := echo.New()
	r.HideBanner = true
	r.HidePort = true
	r.HTTPErrorHandler = mw.Global.GlobalErrorHandler

	r.Use(
		middleware.RequestID(),
		mw.Tracing.NewRelicMiddleware(),
		mw.Tracing.EnhanceTracing(),
		mw.ContextEnhancer.EnhanceContext(),
		mw.Metrics.RecordRequests(),
		mw.Global.RequestLogger(),
		mw.Global.CORS(),
		mw.Global.Secure(),
		mw.Global.Recover(),
	)

	registerSystemRoutes(r, s, h)
	registerResourceRoutes(r, h)

	return r
}

func registerResourceRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/vendors", handler.Handle(h.Vendor.Handler, h.Vendor.ListVendors, http.StatusOK, &handler.ListRequest{}))
	r.GET("/vendors/:id", handler.Handle(h.Vendor.Handler, h.Vendor.GetVendor, http.StatusOK, &handler.ResourceRequest{}))

	r.GET("/sweets", handler.Handle(h.Sweet.Handler, h.Sweet.ListSweets, http.StatusOK, &handler.ListRequest{}))
	r.GET("/sweets/:id", handler.Handle(h.Sweet.Handler, h.Sweet.GetSweet, http.StatusOK, &handler.ResourceRequest{}))

	r.POST("/vendor_sweets", handler.Handle(
		h.VendorSweet.Handler, h.VendorSweet.CreateVendorSweet, http.StatusCreated, &handler.CreateVendorSweetRequest{},
	))
	r.DELETE("/vendor_sweets/:id", handler.HandleNoContent(
		h.VendorSweet.Handler, h.VendorSweet.DeleteVendorSweet, http.StatusNoContent, &handler.ResourceRequest{},
	))
}
