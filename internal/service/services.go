// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler, performs
// business operations, and calls repository methods to interact
// with the data
package service

import (
	"github.com/deppfellow/sweetshop/internal/repository"
	"github.com/deppfellow/sweetshop/internal/server"
)

type Services struct {
	Catalog      *CatalogService
	VendorSweets *VendorSweetService
	Seed         *SeedService
}

func NewServices(s *server.Server, repos *repository.Repositories) *Services {
	return &Services{
		Catalog:      NewCatalogService(s, repos),
		VendorSweets: NewVendorSweetService(s, repos),
		Seed:         NewSeedService(s, repos),
	}
}
