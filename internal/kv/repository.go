// Package kv is the durable key/value layer under the entity store. It plays
// the role browser localStorage played for the web client: whole collections
// are stored as single values under well-known keys.
package kv

import "context"

// Repository is a flat key/value namespace.
type Repository interface {
	// Get returns (nil, nil) when the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set inserts or overwrites the value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete is idempotent.
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}

// Backend is a Repository with a lifecycle and atomic multi-key writes.
type Backend interface {
	Repository

	// WithinTx runs fn against a transactional view. Writes made through tx
	// become visible together when fn returns nil and are discarded otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Repository) error) error

	Close() error
}
