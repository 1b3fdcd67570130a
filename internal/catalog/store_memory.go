package catalog

import (
	"context"
	"sort"
	"sync"
)

type MemStore struct {
	mu sync.RWMutex
	m  map[string]Product
}

func NewMemStore(products ...Product) *MemStore {
	s := &MemStore{m: map[string]Product{}}
	for _, p := range products {
		s.m[p.ID] = p
	}
	return s
}

// NewSeededStore is the dev-mode catalog used when no catalog file is
// configured.
func NewSeededStore() *MemStore {
	return NewMemStore(
		Product{ID: "sku-lamp", Name: "Brass Desk Lamp", Price: 49.99},
		Product{ID: "sku-vase", Name: "Ceramic Vase", Price: 24.50},
		Product{ID: "sku-throw", Name: "Wool Throw", Price: 89.00},
	)
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) ListSortedByID(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id string) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.m[id]
	return p, ok, nil
}
