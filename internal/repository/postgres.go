package repository

import (
	"context"
	"errors"

	"github.com/deppfellow/sweetshop/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresStore struct {
	q    pgQuerier
	pool *pgxpool.Pool // nil once bound to a transaction
}

func newPostgresStore(pool *pgxpool.Pool) *postgresStore {
	return &postgresStore{q: pool, pool: pool}
}

func (s *postgresStore) inTx(ctx context.Context, fn func(store) error) error {
	if s.pool == nil {
		return fn(s)
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&postgresStore{q: tx})
	})
}

func scanSweet(row pgx.CollectableRow) (model.Sweet, error) {
	var sweet model.Sweet
	err := row.Scan(&sweet.ID, &sweet.Name)
	return sweet, err
}

func (s *postgresStore) ListSweets(ctx context.Context) ([]model.Sweet, error) {
	rows, err := s.q.Query(ctx, `SELECT id, COALESCE(name, '') FROM sweets ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanSweet)
}

func (s *postgresStore) GetSweet(ctx context.Context, id int64) (model.Sweet, error) {
	var sweet model.Sweet
	err := s.q.QueryRow(ctx, `SELECT id, COALESCE(name, '') FROM sweets WHERE id = $1`, id).
		Scan(&sweet.ID, &sweet.Name)
	if err != nil {
		return model.Sweet{}, pgNotFound("sweets", id, err)
	}
	return sweet, nil
}

func (s *postgresStore) CreateSweet(ctx context.Context, name string) (model.Sweet, error) {
	sweet := model.Sweet{Name: name}
	err := s.q.QueryRow(ctx, `INSERT INTO sweets (name) VALUES ($1) RETURNING id`, name).Scan(&sweet.ID)
	return sweet, err
}

func (s *postgresStore) DeleteSweet(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "sweets", `DELETE FROM sweets WHERE id = $1`, id)
}

func (s *postgresStore) ListVendors(ctx context.Context) ([]model.Vendor, error) {
	rows, err := s.q.Query(ctx, `SELECT id, COALESCE(name, '') FROM vendors ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Vendor, error) {
		var vendor model.Vendor
		err := row.Scan(&vendor.ID, &vendor.Name)
		return vendor, err
	})
}

func (s *postgresStore) GetVendor(ctx context.Context, id int64) (model.Vendor, error) {
	var vendor model.Vendor
	err := s.q.QueryRow(ctx, `SELECT id, COALESCE(name, '') FROM vendors WHERE id = $1`, id).
		Scan(&vendor.ID, &vendor.Name)
	if err != nil {
		return model.Vendor{}, pgNotFound("vendors", id, err)
	}

	rows, err := s.q.Query(ctx, `
		SELECT vs.id, vs.price, vs.sweet_id, vs.vendor_id, s.id, COALESCE(s.name, '')
		FROM vendor_sweets vs
		JOIN sweets s ON s.id = vs.sweet_id
		WHERE vs.vendor_id = $1
		ORDER BY vs.id`, id)
	if err != nil {
		return model.Vendor{}, err
	}
	vendor.Listings, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.VendorSweet, error) {
		var (
			vs    model.VendorSweet
			sweet model.Sweet
		)
		err := row.Scan(&vs.ID, &vs.Price, &vs.SweetID, &vs.VendorID, &sweet.ID, &sweet.Name)
		vs.Sweet = &sweet
		return vs, err
	})
	if err != nil {
		return model.Vendor{}, err
	}
	return vendor, nil
}

func (s *postgresStore) CreateVendor(ctx context.Context, name string) (model.Vendor, error) {
	vendor := model.Vendor{Name: name}
	err := s.q.QueryRow(ctx, `INSERT INTO vendors (name) VALUES ($1) RETURNING id`, name).Scan(&vendor.ID)
	return vendor, err
}

func (s *postgresStore) DeleteVendor(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "vendors", `DELETE FROM vendors WHERE id = $1`, id)
}

func (s *postgresStore) GetVendorSweet(ctx context.Context, id int64) (model.VendorSweet, error) {
	var (
		vs     model.VendorSweet
		sweet  model.Sweet
		vendor model.Vendor
	)
	err := s.q.QueryRow(ctx, `
		SELECT vs.id, vs.price, vs.sweet_id, vs.vendor_id, COALESCE(s.name, ''), COALESCE(v.name, '')
		FROM vendor_sweets vs
		JOIN sweets s ON s.id = vs.sweet_id
		JOIN vendors v ON v.id = vs.vendor_id
		WHERE vs.id = $1`, id).
		Scan(&vs.ID, &vs.Price, &vs.SweetID, &vs.VendorID, &sweet.Name, &vendor.Name)
	if err != nil {
		return model.VendorSweet{}, pgNotFound("vendor_sweets", id, err)
	}
	sweet.ID, vendor.ID = vs.SweetID, vs.VendorID
	vs.Sweet, vs.Vendor = &sweet, &vendor
	return vs, nil
}

func (s *postgresStore) CreateVendorSweet(ctx context.Context, vs model.VendorSweet) (model.VendorSweet, error) {
	err := s.q.QueryRow(ctx,
		`INSERT INTO vendor_sweets (price, sweet_id, vendor_id) VALUES ($1, $2, $3) RETURNING id`,
		vs.Price, vs.SweetID, vs.VendorID).Scan(&vs.ID)
	if err != nil {
		return model.VendorSweet{}, err
	}
	return vs, nil
}

func (s *postgresStore) DeleteVendorSweet(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "vendor_sweets", `DELETE FROM vendor_sweets WHERE id = $1`, id)
}

func (s *postgresStore) deleteByID(ctx context.Context, table, query string, id int64) error {
	tag, err := s.q.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Table: table, ID: id, Err: pgx.ErrNoRows}
	}
	return nil
}

// pgNotFound wraps pgx.ErrNoRows into a NotFoundError; other errors pass through.
func pgNotFound(table string, id int64, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return &NotFoundError{Table: table, ID: id, Err: err}
	}
	return err
}
