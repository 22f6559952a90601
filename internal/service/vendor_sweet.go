package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/deppfellow/sweetshop/internal/errs"
	"github.com/deppfellow/sweetshop/internal/model"
	"github.com/deppfellow/sweetshop/internal/repository"
	"github.com/deppfellow/sweetshop/internal/server"
)

// ErrVendorOrSweetNotFound is the message of a listing that references a missing row.
const ErrVendorOrSweetNotFound = "Vendor or sweet not found"

// CreateVendorSweetInput carries the already present fields of a create
// request.
//
// Price is the raw JSON value, nil for null; it is only decoded once both
// references are known to exist. A nil id names no row.
type CreateVendorSweetInput struct {
	Price    json.RawMessage
	VendorID *int64
	SweetID  *int64
}

type VendorSweetService struct {
	server *server.Server
	repos  *repository.Repositories
}

func NewVendorSweetService(s *server.Server, repos *repository.Repositories) *VendorSweetService {
	return &VendorSweetService{server: s, repos: repos}
}

// Create inserts a listing after checking, in order, that the vendor and
// the sweet exist and that the price is valid. Lookups and insert share
// one transaction.
func (s *VendorSweetService) Create(ctx context.Context, in CreateVendorSweetInput) (model.VendorSweet, error) {
	var created model.VendorSweet

	err := s.repos.InTx(ctx, func(tx *repository.Repositories) error {
		if in.VendorID == nil || in.SweetID == nil {
			return errs.NewNotFoundErrors(ErrVendorOrSweetNotFound)
		}

		vendor, err := tx.Vendors.GetVendor(ctx, *in.VendorID)
		if err != nil {
			return referenceError(err)
		}
		sweet, err := tx.Sweets.GetSweet(ctx, *in.SweetID)
		if err != nil {
			return referenceError(err)
		}

		price, err := model.ParsePrice(in.Price)
		if err != nil {
			return errs.ValidationError(err)
		}

		created, err = tx.VendorSweets.CreateVendorSweet(ctx, model.VendorSweet{
			Price:    price,
			SweetID:  sweet.ID,
			VendorID: vendor.ID,
		})
		if err != nil {
			return fmt.Errorf("inserting vendor sweet: %w", err)
		}

		created.Sweet = &sweet
		created.Vendor = &model.Vendor{ID: vendor.ID, Name: vendor.Name}
		return nil
	})
	if err != nil {
		return model.VendorSweet{}, err
	}

	s.server.Metrics.RecordVendorSweetCreated()
	return created, nil
}

// Delete removes one listing. Its vendor and sweet are untouched.
func (s *VendorSweetService) Delete(ctx context.Context, id int64) error {
	err := s.repos.InTx(ctx, func(tx *repository.Repositories) error {
		return tx.VendorSweets.DeleteVendorSweet(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("deleting vendor sweet: %w", err)
	}

	s.server.Metrics.RecordVendorSweetDeleted()
	return nil
}

func referenceError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errs.NewNotFoundErrors(ErrVendorOrSweetNotFound)
	}
	return fmt.Errorf("looking up listing reference: %w", err)
}
