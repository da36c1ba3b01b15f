// Package store is the entity store: users, folders and photos kept as three
// JSON collections plus the session scalars, on top of a kv.Backend.
//
// Every mutating call loads the whole collection, changes it and writes it
// back. There is no locking beyond what the backend provides; use Tx to group
// writes to several collections atomically.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/photovault/internal/common"
	"github.com/dmitrijs2005/photovault/internal/kv"
	"github.com/dmitrijs2005/photovault/internal/logging"
)

// Kind names a stored collection. The values are the storage keys.
type Kind string

const (
	KindUsers   Kind = "users"
	KindFolders Kind = "folders"
	KindPhotos  Kind = "photos"
)

const (
	KeyCurrentUserID = "currentUserId"
	KeyLanguage      = "language"
)

// Outcome tells a caller whether an update or removal found its target.
type Outcome int

const (
	Applied Outcome = iota
	NotFound
)

func (o Outcome) Found() bool {
	return o == Applied
}

// Err converts NotFound into common.ErrNotFound for callers that want strict
// handling.
func (o Outcome) Err() error {
	if o == NotFound {
		return common.ErrNotFound
	}
	return nil
}

func (o Outcome) String() string {
	if o == NotFound {
		return "not found"
	}
	return "applied"
}

type Store struct {
	repo    kv.Repository
	backend kv.Backend
	logger  logging.Logger
}

// Open starts a session on backend. Close releases the backend.
func Open(ctx context.Context, backend kv.Backend, logger logging.Logger) (*Store, error) {
	s := &Store{repo: backend, backend: backend, logger: logger.With("module", "store")}

	// fail early on unreadable collections rather than on the first user action
	for _, k := range []Kind{KindUsers, KindFolders, KindPhotos} {
		raw, err := backend.Get(ctx, string(k))
		if err != nil {
			return nil, err
		}
		if raw != nil && !json.Valid(raw) {
			return nil, fmt.Errorf("%w: collection %q is not valid JSON", common.ErrDataIntegrity, k)
		}
	}
	s.logger.Info(ctx, "entity store opened")
	return s, nil
}

func (s *Store) Close() error {
	if s.backend == nil {
		return nil
	}
	return s.backend.Close()
}

// Tx runs fn with a store bound to one backend transaction. The Store passed
// to fn must not be used after fn returns.
func (s *Store) Tx(ctx context.Context, fn func(ctx context.Context, tx *Store) error) error {
	if s.backend == nil {
		// already inside a transaction
		return fn(ctx, s)
	}
	return s.backend.WithinTx(ctx, func(ctx context.Context, r kv.Repository) error {
		return fn(ctx, &Store{repo: r, logger: s.logger})
	})
}

func load[T any](ctx context.Context, r kv.Repository, kind Kind) ([]T, error) {
	raw, err := r.Get(ctx, string(kind))
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func save[T any](ctx context.Context, r kv.Repository, kind Kind, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	return r.Set(ctx, string(kind), raw)
}

func add[T any](ctx context.Context, r kv.Repository, kind Kind, item T) error {
	items, err := load[T](ctx, r, kind)
	if err != nil {
		return err
	}
	return save(ctx, r, kind, append(items, item))
}

// put applies fn to the first record whose id matches. Nothing is written
// when no record matches.
func put[T any](ctx context.Context, r kv.Repository, kind Kind, id string, idOf func(*T) string, fn func(*T)) (Outcome, error) {
	items, err := load[T](ctx, r, kind)
	if err != nil {
		return NotFound, err
	}
	for i := range items {
		if idOf(&items[i]) == id {
			fn(&items[i])
			return Applied, save(ctx, r, kind, items)
		}
	}
	return NotFound, nil
}

// remove drops every record matching pred and returns the dropped records.
func remove[T any](ctx context.Context, r kv.Repository, kind Kind, pred func(T) bool) ([]T, error) {
	items, err := load[T](ctx, r, kind)
	if err != nil {
		return nil, err
	}
	kept := items[:0:0]
	var removed []T
	for _, it := range items {
		if pred(it) {
			removed = append(removed, it)
			continue
		}
		kept = append(kept, it)
	}
	if len(removed) == 0 {
		return nil, nil
	}
	return removed, save(ctx, r, kind, kept)
}

func find[T any](ctx context.Context, r kv.Repository, kind Kind, pred func(T) bool) (T, bool, error) {
	var zero T
	items, err := load[T](ctx, r, kind)
	if err != nil {
		return zero, false, err
	}
	for _, it := range items {
		if pred(it) {
			return it, true, nil
		}
	}
	return zero, false, nil
}
