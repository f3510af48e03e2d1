package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/seqflow/pkg/domain"
)

// Store implements ports.DiagramStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Diagram
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Diagram),
	}
}

// Save persists a copy of the diagram.
func (s *Store) Save(ctx context.Context, id string, d *domain.Diagram) error {
	if d == nil {
		return domain.ErrNilInput
	}
	copied := d.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = copied
	return nil
}

// Load retrieves the diagram from memory.
func (s *Store) Load(ctx context.Context, id string) (*domain.Diagram, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.data[id]
	if !ok {
		return nil, domain.ErrDiagramNotFound
	}

	// Copy on read so callers can't mutate the stored value through the pointer.
	return d.Clone(), nil
}

// Delete removes the diagram.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns the stored ids in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
