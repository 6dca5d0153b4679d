package store

import (
	"context"
	"sync"
)

// MemoryRecords is an in-memory RecordStore used by tests and early
// iterations before sqlite is wired in.
type MemoryRecords struct {
	mu      sync.RWMutex
	records map[string]string
}

func NewMemoryRecords() *MemoryRecords {
	return &MemoryRecords{records: make(map[string]string)}
}

func (m *MemoryRecords) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.records[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (m *MemoryRecords) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[key] = value
	return nil
}

func (m *MemoryRecords) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, key)
	return nil
}
