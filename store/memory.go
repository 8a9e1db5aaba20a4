package store

import (
	"context"
	"sync"
)

// MemoryStore is a thread-safe in-process Store. It does not survive
// restarts; share one instance between service instances to simulate them.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]string
	fault error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]string)}
}

// SetFault makes every following operation fail with err until it is
// cleared with SetFault(nil).
func (m *MemoryStore) SetFault(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fault = err
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.fault != nil {
		return "", false, m.fault
	}
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fault != nil {
		return m.fault
	}
	m.items[key] = value
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fault != nil {
		return m.fault
	}
	delete(m.items, key)
	return nil
}

// Has reports whether key is present, ignoring any injected fault.
func (m *MemoryStore) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.items[key]
	return ok
}

// Raw writes value directly, bypassing faults. Tests use it to plant
// corrupted snapshots.
func (m *MemoryStore) Raw(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
}

func (m *MemoryStore) Close() error { return nil }
