// Package database contains the logic for establishing
// connections to the relational store.
//
// Two engines are supported, selected by the connection URI:
//   - PostgreSQL (postgres:// or postgresql://) through a pgx pool, with
//     query tracing/logging (pgx tracelog) and optional New Relic instrumentation (nrpgx5)
//   - SQLite (sqlite://path, file:path or a bare path) through database/sql
//     and go-sqlite3, the default local file-backed store
//
// Both enforce foreign keys with ON DELETE CASCADE; see migrations/ and schema/.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/deppfellow/sweetshop/internal/config"
	loggerConfig "github.com/deppfellow/sweetshop/internal/logger"
	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" database/sql driver
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"
)

// Driver names the engine behind a Database.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// DatabasePingTimeout defines the number of seconds to wait for a ping
// before considering the database "unreachable".
const DatabasePingTimeout = 10

// sqliteParams are appended to every SQLite DSN. Foreign keys are off by
// default in SQLite and must be enabled per connection for cascades to work.
const sqliteParams = "_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"

// Database wraps the engine handle and a logger.
//
// Exactly one of Pool (Postgres) or SQL (SQLite) is set, according to Driver.
type Database struct {
	Driver Driver
	Pool   *pgxpool.Pool
	SQL    *sql.DB
	log    *zerolog.Logger
}

// multiTracer allows chaining multiple pgx tracers.
//
// pgx supports a single Tracer in ConnConfig; this adapter fans out to every
// tracer that implements the start/end hooks.
type multiTracer struct {
	tracers []any
}

func (mt *multiTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, tracer := range mt.tracers {
		if t, ok := tracer.(interface {
			TraceQueryStart(context.Context, *pgx.Conn, pgx.TraceQueryStartData) context.Context
		}); ok {
			ctx = t.TraceQueryStart(ctx, conn, data)
		}
	}
	return ctx
}

func (mt *multiTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, tracer := range mt.tracers {
		if t, ok := tracer.(interface {
			TraceQueryEnd(context.Context, *pgx.Conn, pgx.TraceQueryEndData)
		}); ok {
			t.TraceQueryEnd(ctx, conn, data)
		}
	}
}

// ParseURI splits a connection URI into its driver and the DSN the driver expects.
//
// SQLite URIs follow SQLAlchemy: the slash after "sqlite://" ends the empty
// host, so three slashes give a relative path and four an absolute one.
//
//	postgres://u:p@host/db   -> DriverPostgres, unchanged
//	sqlite:///app.db         -> DriverSQLite, file:app.db?<params>
//	sqlite:////var/app.db    -> DriverSQLite, file:/var/app.db?<params>
//	sqlite://app.db          -> DriverSQLite, file:app.db?<params>
//	sqlite://                -> DriverSQLite, file::memory:?cache=shared&<params>
//	app.db                   -> DriverSQLite, file:app.db?<params>
func ParseURI(uri string) (Driver, string) {
	if strings.HasPrefix(uri, "postgres://") || strings.HasPrefix(uri, "postgresql://") {
		return DriverPostgres, uri
	}

	path := uri
	if rest, ok := strings.CutPrefix(uri, "sqlite://"); ok {
		path = strings.TrimPrefix(rest, "/")
		// Every pooled connection must see the same in-memory database.
		switch {
		case path == "":
			path = ":memory:?cache=shared"
		case strings.HasPrefix(path, "?"):
			path = ":memory:?cache=shared&" + path[1:]
		}
	}
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return DriverSQLite, path + sep + sqliteParams
}

// New opens the database named by cfg.Database.URI and pings it.
//
// Inputs:
//   - cfg: application config (URI, pool settings, env)
//   - logger: main app logger
//   - loggerService: optional New Relic service (nil if not configured)
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	driver, dsn := ParseURI(cfg.Database.URI)

	var (
		database *Database
		err      error
	)
	switch driver {
	case DriverPostgres:
		database, err = newPostgres(cfg, dsn, logger, loggerService)
	default:
		database, err = newSQLite(cfg, dsn, logger)
	}
	if err != nil {
		return nil, err
	}

	// Ping the DB with a timeout, so startup fails fast if DB is down.
	ctx, cancel := context.WithTimeout(context.Background(), DatabasePingTimeout*time.Second)
	defer cancel()
	if err = database.Ping(ctx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Str("driver", string(driver)).Msg("connected to the database")

	return database, nil
}

func newPostgres(cfg *config.Config, dsn string, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	pgxPoolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx pool config: %w", err)
	}

	pgxPoolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	pgxPoolConfig.MaxConnLifetime = time.Duration(cfg.Database.ConnMaxLifetime) * time.Second
	pgxPoolConfig.MaxConnIdleTime = time.Duration(cfg.Database.ConnMaxIdleTime) * time.Second

	var tracers []any

	// New Relic PostgreSQL instrumentation, only when the agent is running.
	if loggerService.GetApplication() != nil {
		tracers = append(tracers, nrpgx5.NewTracer())
	}

	if threshold := cfg.Observability.Logging.SlowQueryThreshold; threshold > 0 {
		tracers = append(tracers, &slowQueryTracer{threshold: threshold, log: logger})
	}

	// In local env, log every statement. This is very noisy, which is why it's only local.
	if cfg.IsLocal() {
		globalLevel := logger.GetLevel()
		pgxLogger := loggerConfig.NewPgxLogger(globalLevel)
		tracers = append(tracers, &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(pgxLogger),
			LogLevel: loggerConfig.GetPgxTraceLogLevel(globalLevel),
		})
	}

	switch len(tracers) {
	case 0:
	case 1:
		pgxPoolConfig.ConnConfig.Tracer = tracers[0].(pgx.QueryTracer)
	default:
		pgxPoolConfig.ConnConfig.Tracer = &multiTracer{tracers: tracers}
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), pgxPoolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	return &Database{Driver: DriverPostgres, Pool: pool, log: logger}, nil
}

func newSQLite(cfg *config.Config, dsn string, logger *zerolog.Logger) (*Database, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)
	db.SetConnMaxIdleTime(time.Duration(cfg.Database.ConnMaxIdleTime) * time.Second)

	return &Database{Driver: DriverSQLite, SQL: db, log: logger}, nil
}

// Ping verifies the engine is reachable.
func (db *Database) Ping(ctx context.Context) error {
	if db.Driver == DriverPostgres {
		return db.Pool.Ping(ctx)
	}
	return db.SQL.PingContext(ctx)
}

// Close closes the connection pool.
func (db *Database) Close() error {
	db.log.Info().Str("driver", string(db.Driver)).Msg("closing database connection pool")
	if db.Driver == DriverPostgres {
		db.Pool.Close()
		return nil
	}
	return db.SQL.Close()
}

// slowQueryTracer warns about statements slower than threshold.
type slowQueryTracer struct {
	threshold time.Duration
	log       *zerolog.Logger
}

type queryStartKey struct{}

type queryStart struct {
	at  time.Time
	sql string
}

func (t *slowQueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, queryStart{at: time.Now(), sql: data.SQL})
}

func (t *slowQueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}
	if elapsed := time.Since(start.at); elapsed >= t.threshold {
		t.log.Warn().
			Dur("duration", elapsed).
			Str("sql", start.sql).
			Str("command_tag", data.CommandTag.String()).
			Msg("slow query")
	}
}
