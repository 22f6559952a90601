package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/deppfellow/sweetshop/internal/model"
)

// sqlQuerier is satisfied by both *sql.DB and *sql.Tx.
type sqlQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type sqliteStore struct {
	q  sqlQuerier
	db *sql.DB // nil once bound to a transaction
}

func newSQLiteStore(db *sql.DB) *sqliteStore {
	return &sqliteStore{q: db, db: db}
}

func (s *sqliteStore) inTx(ctx context.Context, fn func(store) error) (err error) {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&sqliteStore{q: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *sqliteStore) ListSweets(ctx context.Context) ([]model.Sweet, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, COALESCE(name, '') FROM sweets ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sweets := []model.Sweet{}
	for rows.Next() {
		var sweet model.Sweet
		if err := rows.Scan(&sweet.ID, &sweet.Name); err != nil {
			return nil, err
		}
		sweets = append(sweets, sweet)
	}
	return sweets, rows.Err()
}

func (s *sqliteStore) GetSweet(ctx context.Context, id int64) (model.Sweet, error) {
	var sweet model.Sweet
	err := s.q.QueryRowContext(ctx, `SELECT id, COALESCE(name, '') FROM sweets WHERE id = ?`, id).
		Scan(&sweet.ID, &sweet.Name)
	if err != nil {
		return model.Sweet{}, sqlNotFound("sweets", id, err)
	}
	return sweet, nil
}

func (s *sqliteStore) CreateSweet(ctx context.Context, name string) (model.Sweet, error) {
	id, err := s.insert(ctx, `INSERT INTO sweets (name) VALUES (?)`, name)
	if err != nil {
		return model.Sweet{}, err
	}
	return model.Sweet{ID: id, Name: name}, nil
}

func (s *sqliteStore) DeleteSweet(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "sweets", `DELETE FROM sweets WHERE id = ?`, id)
}

func (s *sqliteStore) ListVendors(ctx context.Context) ([]model.Vendor, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, COALESCE(name, '') FROM vendors ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vendors := []model.Vendor{}
	for rows.Next() {
		var vendor model.Vendor
		if err := rows.Scan(&vendor.ID, &vendor.Name); err != nil {
			return nil, err
		}
		vendors = append(vendors, vendor)
	}
	return vendors, rows.Err()
}

func (s *sqliteStore) GetVendor(ctx context.Context, id int64) (model.Vendor, error) {
	var vendor model.Vendor
	err := s.q.QueryRowContext(ctx, `SELECT id, COALESCE(name, '') FROM vendors WHERE id = ?`, id).
		Scan(&vendor.ID, &vendor.Name)
	if err != nil {
		return model.Vendor{}, sqlNotFound("vendors", id, err)
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT vs.id, vs.price, vs.sweet_id, vs.vendor_id, s.id, COALESCE(s.name, '')
		FROM vendor_sweets vs
		JOIN sweets s ON s.id = vs.sweet_id
		WHERE vs.vendor_id = ?
		ORDER BY vs.id`, id)
	if err != nil {
		return model.Vendor{}, err
	}
	defer rows.Close()

	vendor.Listings = []model.VendorSweet{}
	for rows.Next() {
		var (
			vs    model.VendorSweet
			sweet model.Sweet
		)
		if err := rows.Scan(&vs.ID, &vs.Price, &vs.SweetID, &vs.VendorID, &sweet.ID, &sweet.Name); err != nil {
			return model.Vendor{}, err
		}
		vs.Sweet = &sweet
		vendor.Listings = append(vendor.Listings, vs)
	}
	if err := rows.Err(); err != nil {
		return model.Vendor{}, err
	}
	return vendor, nil
}

func (s *sqliteStore) CreateVendor(ctx context.Context, name string) (model.Vendor, error) {
	id, err := s.insert(ctx, `INSERT INTO vendors (name) VALUES (?)`, name)
	if err != nil {
		return model.Vendor{}, err
	}
	return model.Vendor{ID: id, Name: name}, nil
}

func (s *sqliteStore) DeleteVendor(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "vendors", `DELETE FROM vendors WHERE id = ?`, id)
}

func (s *sqliteStore) GetVendorSweet(ctx context.Context, id int64) (model.VendorSweet, error) {
	var (
		vs     model.VendorSweet
		sweet  model.Sweet
		vendor model.Vendor
	)
	err := s.q.QueryRowContext(ctx, `
		SELECT vs.id, vs.price, vs.sweet_id, vs.vendor_id, COALESCE(s.name, ''), COALESCE(v.name, '')
		FROM vendor_sweets vs
		JOIN sweets s ON s.id = vs.sweet_id
		JOIN vendors v ON v.id = vs.vendor_id
		WHERE vs.id = ?`, id).
		Scan(&vs.ID, &vs.Price, &vs.SweetID, &vs.VendorID, &sweet.Name, &vendor.Name)
	if err != nil {
		return model.VendorSweet{}, sqlNotFound("vendor_sweets", id, err)
	}
	sweet.ID, vendor.ID = vs.SweetID, vs.VendorID
	vs.Sweet, vs.Vendor = &sweet, &vendor
	return vs, nil
}

func (s *sqliteStore) CreateVendorSweet(ctx context.Context, vs model.VendorSweet) (model.VendorSweet, error) {
	id, err := s.insert(ctx,
		`INSERT INTO vendor_sweets (price, sweet_id, vendor_id) VALUES (?, ?, ?)`,
		vs.Price, vs.SweetID, vs.VendorID)
	if err != nil {
		return model.VendorSweet{}, err
	}
	vs.ID = id
	return vs, nil
}

func (s *sqliteStore) DeleteVendorSweet(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "vendor_sweets", `DELETE FROM vendor_sweets WHERE id = ?`, id)
}

func (s *sqliteStore) insert(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *sqliteStore) deleteByID(ctx context.Context, table, query string, id int64) error {
	res, err := s.q.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &NotFoundError{Table: table, ID: id, Err: sql.ErrNoRows}
	}
	return nil
}

func sqlNotFound(table string, id int64, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Table: table, ID: id, Err: err}
	}
	return err
}
