package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces photovault keys inside a shared Redis.
const DefaultRedisPrefix = "photovault:"

// Redis is a Backend over a Redis database. Transactions are buffered and
// published with MULTI/EXEC.
type Redis struct {
	client *redis.Client
	prefix string
	txMu   sync.Mutex
}

func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kv[%s]: %w", key, err)
	}
	return v, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set kv[%s]: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete kv[%s]: %w", key, err)
	}
	return nil
}

func (r *Redis) keys(ctx context.Context) ([]string, error) {
	var out []string
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		out = append(out, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan kv: %w", err)
	}
	return out, nil
}

func (r *Redis) List(ctx context.Context) (map[string][]byte, error) {
	keys, err := r.keys(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		v, err := r.client.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list kv: %w", err)
		}
		out[strings.TrimPrefix(k, r.prefix)] = v
	}
	return out, nil
}

func (r *Redis) Clear(ctx context.Context) error {
	keys, err := r.keys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear kv: %w", err)
	}
	return nil
}

func (r *Redis) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	o := newOverlay(r)
	if err := fn(ctx, o); err != nil {
		return err
	}

	var existing []string
	if o.cleared {
		var err error
		if existing, err = r.keys(ctx); err != nil {
			return err
		}
	}

	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if len(existing) > 0 {
			p.Del(ctx, existing...)
		}
		for k := range o.deletes {
			p.Del(ctx, r.key(k))
		}
		for k, v := range o.sets {
			p.Set(ctx, r.key(k), v, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to commit kv tx: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
