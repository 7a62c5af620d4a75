package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/annel0/arena-maps/internal/mapdata"
)

// MemoryBlobStore хранит карты в памяти процесса
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[mapdata.Identifier][]byte
}

// NewMemoryBlobStore создаёт пустое хранилище
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[mapdata.Identifier][]byte)}
}

func (m *MemoryBlobStore) Read(ctx context.Context, id mapdata.Identifier) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, mapdata.ErrNotFound)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemoryBlobStore) Write(ctx context.Context, id mapdata.Identifier, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := make([]byte, len(data))
	copy(cp, data)

	m.mu.Lock()
	m.blobs[id] = cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryBlobStore) Delete(ctx context.Context, id mapdata.Identifier) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.blobs[id]; !ok {
		return fmt.Errorf("%s: %w", id, mapdata.ErrNotFound)
	}
	delete(m.blobs, id)
	return nil
}

// List возвращает идентификаторы по возрастанию
func (m *MemoryBlobStore) List(ctx context.Context) ([]mapdata.Identifier, error) {
	m.mu.RLock()
	out := make([]mapdata.Identifier, 0, len(m.blobs))
	for id := range m.blobs {
		out = append(out, id)
	}
	m.mu.RUnlock()

	sortIdentifiers(out)
	return out, nil
}

func (m *MemoryBlobStore) Close() error { return nil }
