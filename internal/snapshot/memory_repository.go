package snapshot

import (
	"context"
	"sync"
)

// MemoryRepository is an in-memory Repository for single-instance
// deployments and tests.
type MemoryRepository struct {
	mu   sync.RWMutex
	last *Snapshot
}

// NewMemoryRepository creates a new in-memory snapshot repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// SaveLast stores a snapshot as the new latest.
func (r *MemoryRepository) SaveLast(_ context.Context, s *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *s
	r.last = &copied
	return nil
}

// Last returns the most recent snapshot, or ErrNoSnapshot.
func (r *MemoryRepository) Last(_ context.Context) (*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.last == nil {
		return nil, ErrNoSnapshot
	}
	copied := *r.last
	return &copied, nil
}

// Ensure MemoryRepository implements Repository interface.
var _ Repository = (*MemoryRepository)(nil)
