package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	tern "github.com/jackc/tern/v2/migrate"
)

// Embed all SQL files at compile time so the binary carries its schema.
//
//go:embed migrations/*.sql
var migrations embed.FS

//go:embed schema/sqlite.sql
var sqliteSchema string

// Migrate brings the schema up to date.
//
// PostgreSQL runs the embedded tern migrations, tracking the version in the
// schema_version table. SQLite applies the idempotent DDL in schema/sqlite.sql.
func (db *Database) Migrate(ctx context.Context) error {
	if db.Driver == DriverSQLite {
		if _, err := db.SQL.ExecContext(ctx, sqliteSchema); err != nil {
			return fmt.Errorf("applying sqlite schema: %w", err)
		}
		db.log.Info().Msg("sqlite schema up to date")
		return nil
	}

	// A single connection is enough for a one-time action.
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection for migrations: %w", err)
	}
	defer conn.Release()

	m, err := tern.NewMigrator(ctx, conn.Conn(), "schema_version")
	if err != nil {
		return fmt.Errorf("constructing database migrator: %w", err)
	}

	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("retrieving database migrations subtree: %w", err)
	}

	if err := m.LoadMigrations(subtree); err != nil {
		return fmt.Errorf("loading database migrations: %w", err)
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}

	if err := m.Migrate(ctx); err != nil {
		return err
	}

	if from == int32(len(m.Migrations)) {
		db.log.Info().Msgf("database schema up to date, version %d", len(m.Migrations))
	} else {
		db.log.Info().Msgf("migrated database schema, from %d to %d", from, len(m.Migrations))
	}
	return nil
}
