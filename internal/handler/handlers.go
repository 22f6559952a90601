// Package handler is the first layer. The first entry point
// for business logic after the router.
//
// It parses requests, handles input validation using the
// validation package, and calls the appropriate service layer.
// It acts as the interface between the HTTP request and the core
// business logic.
package handler

import (
	"github.com/deppfellow/sweetshop/internal/server"
	"github.com/deppfellow/sweetshop/internal/service"
)

// Handlers is a container that groups all HTTP handlers, so router setup
// passes one object around instead of many.
type Handlers struct {
	Vendor      *VendorHandler
	Sweet       *SweetHandler
	VendorSweet *VendorSweetHandler
	Health      *HealthHandler  // Health serves the /status endpoint.
	OpenAPI     *OpenAPIHandler // OpenAPI serves the API documentation.
}

// NewHandlers constructs the handler container.
func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Vendor:      NewVendorHandler(s, services.Catalog),
		Sweet:       NewSweetHandler(s, services.Catalog),
		VendorSweet: NewVendorSweetHandler(s, services.VendorSweets),
		Health:      NewHealthHandler(s),
		OpenAPI:     NewOpenAPIHandler(s),
	}
}
