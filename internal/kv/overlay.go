package kv

import (
	"context"
	"maps"
)

// overlay buffers writes on top of a base repository. Backends without native
// transactions run WithinTx against an overlay and publish its changes in one
// step once the callback succeeds.
type overlay struct {
	base    Repository
	sets    map[string][]byte
	deletes map[string]bool
	cleared bool
}

func newOverlay(base Repository) *overlay {
	return &overlay{base: base, sets: map[string][]byte{}, deletes: map[string]bool{}}
}

func (o *overlay) Get(ctx context.Context, key string) ([]byte, error) {
	if o.deletes[key] {
		return nil, nil
	}
	if v, ok := o.sets[key]; ok {
		return clone(v), nil
	}
	if o.cleared {
		return nil, nil
	}
	return o.base.Get(ctx, key)
}

func (o *overlay) Set(_ context.Context, key string, value []byte) error {
	o.sets[key] = clone(value)
	delete(o.deletes, key)
	return nil
}

func (o *overlay) Delete(_ context.Context, key string) error {
	delete(o.sets, key)
	o.deletes[key] = true
	return nil
}

func (o *overlay) Clear(context.Context) error {
	o.cleared = true
	o.sets = map[string][]byte{}
	o.deletes = map[string]bool{}
	return nil
}

func (o *overlay) List(ctx context.Context) (map[string][]byte, error) {
	out := map[string][]byte{}
	if !o.cleared {
		base, err := o.base.List(ctx)
		if err != nil {
			return nil, err
		}
		maps.Copy(out, base)
	}
	for k := range o.deletes {
		delete(out, k)
	}
	for k, v := range o.sets {
		out[k] = clone(v)
	}
	return out, nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte{}, b...)
}
