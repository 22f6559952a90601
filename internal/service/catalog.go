package service

import (
	"context"
	"fmt"

	"github.com/deppfellow/sweetshop/internal/model"
	"github.com/deppfellow/sweetshop/internal/repository"
	"github.com/deppfellow/sweetshop/internal/server"
)

// CatalogService serves the read side of vendors and sweets.
//
// Missing rows surface as *repository.NotFoundError; the global error
// handler turns them into "<Entity> not found" responses.
type CatalogService struct {
	server *server.Server
	repos  *repository.Repositories
}

func NewCatalogService(s *server.Server, repos *repository.Repositories) *CatalogService {
	return &CatalogService{server: s, repos: repos}
}

func (s *CatalogService) ListVendors(ctx context.Context) ([]model.Vendor, error) {
	vendors, err := s.repos.Vendors.ListVendors(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing vendors: %w", err)
	}
	return vendors, nil
}

func (s *CatalogService) GetVendor(ctx context.Context, id int64) (model.Vendor, error) {
	vendor, err := s.repos.Vendors.GetVendor(ctx, id)
	if err != nil {
		return model.Vendor{}, fmt.Errorf("getting vendor: %w", err)
	}
	return vendor, nil
}

func (s *CatalogService) ListSweets(ctx context.Context) ([]model.Sweet, error) {
	sweets, err := s.repos.Sweets.ListSweets(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sweets: %w", err)
	}
	return sweets, nil
}

func (s *CatalogService) GetSweet(ctx context.Context, id int64) (model.Sweet, error) {
	sweet, err := s.repos.Sweets.GetSweet(ctx, id)
	if err != nil {
		return model.Sweet{}, fmt.Errorf("getting sweet: %w", err)
	}
	return sweet, nil
}
