package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process procedure store for development and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	procs map[string]*Procedure
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{procs: make(map[string]*Procedure)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Procedure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.procs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

func (s *MemoryStore) Put(ctx context.Context, p *Procedure) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp(p)
	s.procs[p.ID] = p.Clone()
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*Procedure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Procedure, 0, len(s.procs))
	for _, p := range s.procs {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.procs[id]; !ok {
		return ErrNotFound
	}
	delete(s.procs, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
