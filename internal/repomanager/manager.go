// Package repomanager opens the key/value backend named by a DSN and keeps
// SQL schemas current with embedded goose migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/photovault/internal/dbx"
	"github.com/dmitrijs2005/photovault/internal/kv"
	"github.com/dmitrijs2005/photovault/internal/kv/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// MemoryDSN selects the process-local backend.
const MemoryDSN = "memory"

// Manager describes one SQL dialect: how to migrate it and how to build a
// repository on a connection or transaction.
type Manager interface {
	DriverName() string
	RunMigrations(ctx context.Context, db *sql.DB) error
	KV(db dbx.DBTX) kv.Repository
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// sqlOpen is a seam for testing sql.Open.
var sqlOpen = sql.Open

func migrate(ctx context.Context, db *sql.DB, dialect, dir string) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect %s: %w", dialect, err)
	}
	if err := gooseUpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrate %s: %w", dialect, err)
	}
	return nil
}

type SQLiteManager struct{}

func (SQLiteManager) DriverName() string { return "sqlite" }

func (SQLiteManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate(ctx, db, "sqlite3", migrations.SQLiteDir)
}

func (SQLiteManager) KV(db dbx.DBTX) kv.Repository {
	return kv.NewSQLiteRepository(db)
}

type PostgresManager struct{}

func (PostgresManager) DriverName() string { return "pgx" }

func (PostgresManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate(ctx, db, "pgx", migrations.PostgresDir)
}

func (PostgresManager) KV(db dbx.DBTX) kv.Repository {
	return kv.NewPostgresRepository(db)
}

// Open returns the backend addressed by dsn:
//
//	memory                        process-local map
//	postgres://... postgresql://  PostgreSQL through pgx
//	redis://...                   Redis, keys prefixed with kv.DefaultRedisPrefix
//	anything else                 SQLite database file (":memory:" included)
func Open(ctx context.Context, dsn string) (kv.Backend, error) {
	switch {
	case dsn == MemoryDSN:
		return kv.NewMemory(), nil
	case strings.HasPrefix(dsn, "redis://"), strings.HasPrefix(dsn, "rediss://"):
		return openRedis(ctx, dsn)
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return openSQL(ctx, PostgresManager{}, dsn)
	case dsn == "":
		return nil, fmt.Errorf("empty store DSN")
	default:
		return openSQL(ctx, SQLiteManager{}, dsn)
	}
}

func openSQL(ctx context.Context, m Manager, dsn string) (kv.Backend, error) {
	db, err := sqlOpen(m.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", m.DriverName(), err)
	}
	if _, ok := m.(SQLiteManager); ok {
		// one connection keeps ":memory:" databases alive and serialises writers
		db.SetMaxOpenConns(1)
	}
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return kv.NewSQLBackend(db, m.KV), nil
}

func openRedis(ctx context.Context, dsn string) (kv.Backend, error) {
	opts, err := redis.ParseURL(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return kv.NewRedis(client, kv.DefaultRedisPrefix), nil
}
