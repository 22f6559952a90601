package service

import (
	"context"
	"fmt"

	"github.com/deppfellow/sweetshop/internal/model"
	"github.com/deppfellow/sweetshop/internal/repository"
	"github.com/deppfellow/sweetshop/internal/server"
)

// SeedResult reports what Seed inserted.
type SeedResult struct {
	Vendors      int
	Sweets       int
	VendorSweets int
}

// SeedService resets the store to a small sample catalog.
type SeedService struct {
	server *server.Server
	repos  *repository.Repositories
}

func NewSeedService(s *server.Server, repos *repository.Repositories) *SeedService {
	return &SeedService{server: s, repos: repos}
}

var (
	seedVendors = []string{"Insomnia Cookies", "Cookies Cream", "Carvel", "Dunkin' Donuts", "Ben & Jerry's"}
	seedSweets  = []string{"Chocolate Chip Cookie", "Brownie", "Cookie Dough Ice Cream", "Glazed Donut", "Snickerdoodle"}

	// seedListings holds {vendor index, sweet index, price}.
	seedListings = [][3]int{
		{0, 0, 200}, {0, 1, 300}, {0, 4, 250},
		{1, 0, 150}, {1, 1, 275},
		{2, 2, 450},
		{3, 3, 125}, {3, 1, 180},
		{4, 2, 500},
	}
)

// Seed deletes every vendor and sweet (listings go with them by cascade)
// and inserts the sample catalog, all in one transaction.
func (s *SeedService) Seed(ctx context.Context) (SeedResult, error) {
	var result SeedResult

	err := s.repos.InTx(ctx, func(tx *repository.Repositories) error {
		if err := reset(ctx, tx); err != nil {
			return err
		}

		vendors := make([]model.Vendor, 0, len(seedVendors))
		for _, name := range seedVendors {
			vendor, err := tx.Vendors.CreateVendor(ctx, name)
			if err != nil {
				return fmt.Errorf("seeding vendor %q: %w", name, err)
			}
			vendors = append(vendors, vendor)
		}

		sweets := make([]model.Sweet, 0, len(seedSweets))
		for _, name := range seedSweets {
			sweet, err := tx.Sweets.CreateSweet(ctx, name)
			if err != nil {
				return fmt.Errorf("seeding sweet %q: %w", name, err)
			}
			sweets = append(sweets, sweet)
		}

		for _, l := range seedListings {
			price := l[2]
			if _, err := model.ValidatePrice(&price); err != nil {
				return err
			}
			_, err := tx.VendorSweets.CreateVendorSweet(ctx, model.VendorSweet{
				Price:    price,
				VendorID: vendors[l[0]].ID,
				SweetID:  sweets[l[1]].ID,
			})
			if err != nil {
				return fmt.Errorf("seeding vendor sweet: %w", err)
			}
		}

		result = SeedResult{Vendors: len(vendors), Sweets: len(sweets), VendorSweets: len(seedListings)}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}

	s.server.Logger.Info().
		Int("vendors", result.Vendors).
		Int("sweets", result.Sweets).
		Int("vendor_sweets", result.VendorSweets).
		Msg("seeded database")

	return result, nil
}

func reset(ctx context.Context, tx *repository.Repositories) error {
	vendors, err := tx.Vendors.ListVendors(ctx)
	if err != nil {
		return fmt.Errorf("listing vendors: %w", err)
	}
	for _, v := range vendors {
		if err := tx.Vendors.DeleteVendor(ctx, v.ID); err != nil {
			return fmt.Errorf("deleting vendor %d: %w", v.ID, err)
		}
	}

	sweets, err := tx.Sweets.ListSweets(ctx)
	if err != nil {
		return fmt.Errorf("listing sweets: %w", err)
	}
	for _, sw := range sweets {
		if err := tx.Sweets.DeleteSweet(ctx, sw.ID); err != nil {
			return fmt.Errorf("deleting sweet %d: %w", sw.ID, err)
		}
	}
	return nil
}
