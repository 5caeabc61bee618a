package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps snapshots in process memory.
// Trees are immutable values, so no defensive copying is needed.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string]*Snapshot
}

// NewMemoryStore creates an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]*Snapshot)}
}

// Get retrieves a snapshot by ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snaps[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *snap
	return &out, nil
}

// Put stores a snapshot.
func (s *MemoryStore) Put(ctx context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp(snap)
	stored := *snap
	s.snaps[snap.ID] = &stored
	return nil
}

// Delete removes a snapshot.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snaps[id]; !ok {
		return ErrNotFound
	}
	delete(s.snaps, id)
	return nil
}

// List returns snapshot metadata, most recently updated first.
func (s *MemoryStore) List(ctx context.Context) ([]Meta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metas := make([]Meta, 0, len(s.snaps))
	for _, snap := range s.snaps {
		metas = append(metas, Meta{ID: snap.ID, Name: snap.Name, UpdatedAt: snap.UpdatedAt})
	}
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas, nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
