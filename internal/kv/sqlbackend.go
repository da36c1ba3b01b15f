package kv

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/photovault/internal/dbx"
)

// SQLBackend adapts a dialect repository to Backend. Transactions map onto
// database transactions through dbx.WithTx.
type SQLBackend struct {
	Repository
	db      *sql.DB
	newRepo func(dbx.DBTX) Repository
}

func NewSQLBackend(db *sql.DB, newRepo func(dbx.DBTX) Repository) *SQLBackend {
	return &SQLBackend{Repository: newRepo(db), db: db, newRepo: newRepo}
}

func (b *SQLBackend) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Repository) error) error {
	return dbx.WithTx(ctx, b.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, b.newRepo(tx))
	})
}

func (b *SQLBackend) Close() error {
	return b.db.Close()
}
