package geocache

import (
	"context"
	"sync"

	"karsdrive/internal/domain"
)

// Memory is the in-process cache backend. Append-only for the process
// lifetime.
type Memory struct {
	mu     sync.RWMutex
	coords map[string]domain.Coordinate
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{coords: make(map[string]domain.Coordinate)}
}

var _ Cache = (*Memory)(nil)

// Get returns the cached coordinate and whether it was present.
func (m *Memory) Get(_ context.Context, address string) (domain.Coordinate, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	coord, ok := m.coords[Normalize(address)]
	return coord, ok, nil
}

// Set stores a resolved coordinate.
func (m *Memory) Set(_ context.Context, address string, coord domain.Coordinate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coords[Normalize(address)] = coord
	return nil
}

// Len returns the number of cached entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.coords)
}
