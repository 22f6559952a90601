// Package dbtest opens migrated databases for tests.
package dbtest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/deppfellow/sweetshop/internal/config"
	"github.com/deppfellow/sweetshop/internal/database"
	"github.com/rs/zerolog"
)

// PostgresDSNEnv names the variable that enables the Postgres suites.
const PostgresDSNEnv = "PG_DSN"

// OpenSQLite returns a migrated SQLite database in a fresh temporary file.
func OpenSQLite(t testing.TB) *database.Database {
	t.Helper()
	return open(t, "sqlite://"+filepath.Join(t.TempDir(), "sweetshop.db"))
}

// OpenPostgres returns a migrated database against PG_DSN, skipping the test
// when the variable is unset.
//
// It is destructive: it resets the public schema.
func OpenPostgres(t testing.TB) *database.Database {
	t.Helper()

	dsn := os.Getenv(PostgresDSNEnv)
	if dsn == "" {
		t.Skip("PG_DSN not set; skipping Postgres tests")
	}
	return open(t, dsn)
}

func open(t testing.TB, uri string) *database.Database {
	t.Helper()

	cfg := config.Default()
	cfg.Database.URI = uri
	cfg.Observability.Logging.SlowQueryThreshold = 0
	log := zerolog.Nop()

	db, err := database.New(cfg, &log, nil)
	if err != nil {
		t.Fatalf("open %s: %v", uri, err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if db.Driver == database.DriverPostgres {
		for _, stmt := range []string{
			`DROP SCHEMA IF EXISTS public CASCADE`,
			`CREATE SCHEMA public`,
		} {
			if _, err := db.Pool.Exec(ctx, stmt); err != nil {
				t.Fatalf("reset schema: %v", err)
			}
		}
	}

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
