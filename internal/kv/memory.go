package kv

import (
	"context"
	"sync"
)

// Memory is a process-local Backend, used by tests and the "memory" DSN.
type Memory struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: map[string][]byte{}}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(m.data[key]), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = clone(value)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = map[string][]byte{}
	return nil
}

func (m *Memory) List(context.Context) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string][]byte, len(m.data))
	for k, v := range m.data {
		out[k] = clone(v)
	}
	return out, nil
}

// WithinTx serialises transactions and applies the buffered writes under the
// write lock.
func (m *Memory) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Repository) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	o := newOverlay(m)
	if err := fn(ctx, o); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if o.cleared {
		m.data = map[string][]byte{}
	}
	for k := range o.deletes {
		delete(m.data, k)
	}
	for k, v := range o.sets {
		m.data[k] = v
	}
	return nil
}

func (m *Memory) Close() error {
	return nil
}
