package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

type Config struct {
	DSN             string // "" = in-memory SQLite; postgres:// URL = Postgres; anything else = SQLite DSN
	MaxConns        int32
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// DB is the run ledger connection.
type DB struct {
	drv     *entsql.Driver
	pool    *pgxpool.Pool
	dialect string
	log     *zap.Logger
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Open connects to the ledger store and creates its tables if needed.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 3 * time.Second
	}

	var (
		db   *sql.DB
		pool *pgxpool.Pool
		name string
	)
	if isPostgresDSN(cfg.DSN) {
		logger.Info("ledger.connect", zap.String("dialect", dialect.Postgres))
		pc, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			logger.Error("ledger.connect_failed", zap.Error(err))
			return nil, err
		}
		if cfg.MaxConns > 0 {
			pc.MaxConns = cfg.MaxConns
		}
		if cfg.MaxConnLifetime > 0 {
			pc.MaxConnLifetime = cfg.MaxConnLifetime
		}
		pc.ConnConfig.RuntimeParams["application_name"] = "studynotes"

		dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
		pool, err = pgxpool.NewWithConfig(dialCtx, pc)
		if err != nil {
			logger.Error("ledger.connect_failed", zap.Error(err))
			return nil, err
		}
		db = stdlib.OpenDBFromPool(pool)
		name = dialect.Postgres
	} else {
		dsn := cfg.DSN
		if dsn == "" {
			dsn = ":memory:"
		}
		logger.Info("ledger.connect", zap.String("dialect", dialect.SQLite), zap.String("dsn", dsn))
		var err error
		db, err = sql.Open("sqlite", dsn)
		if err != nil {
			logger.Error("ledger.connect_failed", zap.Error(err))
			return nil, err
		}
		// one connection keeps an in-memory database alive and serializes writers
		db.SetMaxOpenConns(1)
		name = dialect.SQLite
	}

	out := &DB{drv: entsql.OpenDB(name, db), pool: pool, dialect: name, log: logger}
	if err := out.migrate(ctx); err != nil {
		out.Close()
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}
	logger.Info("ledger.ready", zap.String("dialect", name))
	return out, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		filename TEXT NOT NULL,
		size_bytes BIGINT NOT NULL,
		sha256 TEXT NOT NULL,
		pages INTEGER NOT NULL DEFAULT 0,
		chars INTEGER NOT NULL DEFAULT 0,
		uploaded_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS generation_jobs (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		document_id TEXT NOT NULL,
		stage TEXT NOT NULL,
		kind TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		model TEXT NOT NULL DEFAULT '',
		temperature DOUBLE PRECISION NOT NULL DEFAULT 0,
		max_tokens INTEGER NOT NULL DEFAULT 0,
		input_chars INTEGER NOT NULL DEFAULT 0,
		output_chars INTEGER NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS generation_jobs_started_at_idx ON generation_jobs (started_at)`,
}

func (d *DB) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if err := d.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) builder() *entsql.DialectBuilder {
	return entsql.Dialect(d.dialect)
}

// Dialect returns the SQL dialect name in use.
func (d *DB) Dialect() string { return d.dialect }

// Close closes the database connections gracefully
func (d *DB) Close() {
	if d == nil {
		return
	}
	d.log.Info("ledger.closing")
	if err := d.drv.Close(); err != nil {
		d.log.Error("ledger.close_failed", zap.Error(err))
	}
	if d.pool != nil {
		d.pool.Close()
	}
}

// HealthCheck pings the store.
func (d *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return d.drv.DB().PingContext(ctx)
}
