package persistence

import (
	"context"
	"fmt"
	"sync"

	"workly-web/internal/session/domain/repository"
	apperrors "workly-web/internal/shared/errors"
)

var _ repository.SessionStorage = (*MemoryStorage)(nil)

// MemoryStorage keeps sessions in a process-local map.
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string][]byte)}
}

func (m *MemoryStorage) Load(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.items[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSessionNotFound, key)
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStorage) Save(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStorage) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
	return nil
}

// Len returns the number of stored records.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
