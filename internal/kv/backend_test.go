package kv

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/photovault/internal/dbx"

	_ "modernc.org/sqlite"
)

func newSQLiteBackend(t *testing.T) *SQLBackend {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	_, err = db.Exec(`CREATE TABLE kv_store (key TEXT PRIMARY KEY, value BLOB NOT NULL);`)
	require.NoError(t, err)
	b := NewSQLBackend(db, func(d dbx.DBTX) Repository { return NewSQLiteRepository(d) })
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func newRedisBackend(t *testing.T) *Redis {
	t.Helper()
	mr := miniredis.RunT(t)
	b := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}), DefaultRedisPrefix)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func backends(t *testing.T) map[string]Backend {
	return map[string]Backend{
		"memory": NewMemory(),
		"sqlite": newSQLiteBackend(t),
		"redis":  newRedisBackend(t),
	}
}

func TestBackends_SetGetOverwrite(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			v, err := b.Get(ctx, "users")
			require.NoError(t, err)
			assert.Nil(t, v)

			require.NoError(t, b.Set(ctx, "users", []byte(`[]`)))
			require.NoError(t, b.Set(ctx, "users", []byte(`[{"id":"u1"}]`)))

			v, err = b.Get(ctx, "users")
			require.NoError(t, err)
			assert.Equal(t, []byte(`[{"id":"u1"}]`), v)
		})
	}
}

func TestBackends_ListDeleteClear(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.Set(ctx, "currentUserId", []byte("u1")))
			require.NoError(t, b.Set(ctx, "language", []byte("pt-BR")))

			m, err := b.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, map[string][]byte{"currentUserId": []byte("u1"), "language": []byte("pt-BR")}, m)

			require.NoError(t, b.Delete(ctx, "currentUserId"))
			require.NoError(t, b.Delete(ctx, "currentUserId"))
			v, err := b.Get(ctx, "currentUserId")
			require.NoError(t, err)
			assert.Nil(t, v)

			require.NoError(t, b.Clear(ctx))
			m, err = b.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, m)
		})
	}
}

func TestBackends_TxCommit(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.Set(ctx, "photos", []byte(`[1]`)))
			require.NoError(t, b.Set(ctx, "stale", []byte(`x`)))

			err := b.WithinTx(ctx, func(ctx context.Context, tx Repository) error {
				require.NoError(t, tx.Set(ctx, "folders", []byte(`[]`)))
				require.NoError(t, tx.Set(ctx, "photos", []byte(`[]`)))
				require.NoError(t, tx.Delete(ctx, "stale"))

				v, err := tx.Get(ctx, "photos")
				require.NoError(t, err)
				assert.Equal(t, []byte(`[]`), v, "tx must read its own writes")
				return nil
			})
			require.NoError(t, err)

			m, err := b.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, map[string][]byte{"folders": []byte(`[]`), "photos": []byte(`[]`)}, m)
		})
	}
}

func TestBackends_TxRollback(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.Set(ctx, "photos", []byte(`[1]`)))

			err := b.WithinTx(ctx, func(ctx context.Context, tx Repository) error {
				require.NoError(t, tx.Set(ctx, "photos", []byte(`[]`)))
				require.NoError(t, tx.Set(ctx, "users", []byte(`[]`)))
				return boom
			})
			require.ErrorIs(t, err, boom)

			v, err := b.Get(ctx, "photos")
			require.NoError(t, err)
			assert.Equal(t, []byte(`[1]`), v)
			v, err = b.Get(ctx, "users")
			require.NoError(t, err)
			assert.Nil(t, v)
		})
	}
}

func TestBackends_TxClear(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.Set(ctx, "a", []byte("1")))
			require.NoError(t, b.Set(ctx, "b", []byte("2")))

			err := b.WithinTx(ctx, func(ctx context.Context, tx Repository) error {
				if err := tx.Clear(ctx); err != nil {
					return err
				}
				return tx.Set(ctx, "c", []byte("3"))
			})
			require.NoError(t, err)

			m, err := b.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, map[string][]byte{"c": []byte("3")}, m)
		})
	}
}

func TestMemory_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	in := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", in))
	in[0] = 'X'

	out, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), out)
	out[0] = 'Y'

	again, _ := m.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}

func TestRedis_RespectsPrefix(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, client.Set(ctx, "other:key", "x", 0).Err())

	b := NewRedis(client, "pv:")
	require.NoError(t, b.Set(ctx, "users", []byte("[]")))
	assert.True(t, mr.Exists("pv:users"))

	m, err := b.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"users": []byte("[]")}, m)

	require.NoError(t, b.Clear(ctx))
	assert.True(t, mr.Exists("other:key"), "clear must not touch foreign keys")
}

func TestRedis_ErrorsAreWrapped(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	b := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}), DefaultRedisPrefix)
	mr.Close()

	_, err := b.Get(ctx, "users")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get kv[users]")

	err = b.Set(ctx, "users", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to set kv[users]")
}
