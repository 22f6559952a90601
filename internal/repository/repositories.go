// Package repository handles all interactions with the database.
//
// It contains raw SQL queries and methods to fetch, persist,
// or delete data, abstracting SQL logic away from the service layer.
//
// Every engine (postgres.go, sqlite.go) implements the same interfaces;
// contract_test.go runs one suite against each of them.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/sweetshop/internal/database"
	"github.com/deppfellow/sweetshop/internal/model"
)

// ErrNotFound matches (errors.Is) every lookup or delete that hit no row.
var ErrNotFound = errors.New("record not found")

// NotFoundError reports a missing row of a table.
//
// It unwraps to the driver's no-rows error and also satisfies
// errors.Is(err, ErrNotFound).
type NotFoundError struct {
	Table string
	ID    int64
	Err   error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("table:%s: id %d: %v", e.Table, e.ID, e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// SweetRepository persists sweets.
type SweetRepository interface {
	ListSweets(ctx context.Context) ([]model.Sweet, error)
	GetSweet(ctx context.Context, id int64) (model.Sweet, error)
	CreateSweet(ctx context.Context, name string) (model.Sweet, error)
	// DeleteSweet removes the sweet and, by cascade, its listings.
	DeleteSweet(ctx context.Context, id int64) error
}

// VendorRepository persists vendors.
type VendorRepository interface {
	// ListVendors returns vendor summaries; Listings are not loaded.
	ListVendors(ctx context.Context) ([]model.Vendor, error)
	// GetVendor returns the vendor with Listings (and each listing's Sweet) loaded.
	GetVendor(ctx context.Context, id int64) (model.Vendor, error)
	CreateVendor(ctx context.Context, name string) (model.Vendor, error)
	// DeleteVendor removes the vendor and, by cascade, its listings.
	DeleteVendor(ctx context.Context, id int64) error
}

// VendorSweetRepository persists listings.
type VendorSweetRepository interface {
	// GetVendorSweet returns the listing with Sweet and Vendor summaries loaded.
	GetVendorSweet(ctx context.Context, id int64) (model.VendorSweet, error)
	// CreateVendorSweet inserts vs and returns it with its new ID.
	CreateVendorSweet(ctx context.Context, vs model.VendorSweet) (model.VendorSweet, error)
	DeleteVendorSweet(ctx context.Context, id int64) error
}

// store is implemented by every engine.
type store interface {
	SweetRepository
	VendorRepository
	VendorSweetRepository

	// inTx runs fn with a store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	inTx(ctx context.Context, fn func(store) error) error
}

// Repositories is a container for all repository instances.
type Repositories struct {
	Sweets       SweetRepository
	Vendors      VendorRepository
	VendorSweets VendorSweetRepository

	store store
}

func newRepositories(s store) *Repositories {
	return &Repositories{
		Sweets:       s,
		Vendors:      s,
		VendorSweets: s,
		store:        s,
	}
}

// NewRepositories constructs the repository container for db's engine.
func NewRepositories(db *database.Database) *Repositories {
	if db.Driver == database.DriverPostgres {
		return newRepositories(newPostgresStore(db.Pool))
	}
	return newRepositories(newSQLiteStore(db.SQL))
}

// InTx runs fn with repositories bound to one transaction: committed when fn
// returns nil, rolled back otherwise. Calls made inside fn through the outer
// container do not take part in the transaction.
func (r *Repositories) InTx(ctx context.Context, fn func(*Repositories) error) error {
	return r.store.inTx(ctx, func(s store) error {
		return fn(newRepositories(s))
	})
}
