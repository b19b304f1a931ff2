package catalog

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore implements Store in memory. It is the default backend when
// no database path is configured, and the fixture store for tests.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[int64]*Product
	nextID   int64
}

// NewMemoryStore creates an empty in-memory catalog.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[int64]*Product),
		nextID:   1,
	}
}

// GetProduct returns the product, or nil if it does not exist.
func (s *MemoryStore) GetProduct(ctx context.Context, id int64) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// ListProducts returns one page of the catalog ordered by ID.
func (s *MemoryStore) ListProducts(ctx context.Context, page int) (*ProductPage, error) {
	if page < 1 {
		page = 1
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*Product, 0, len(s.products))
	for _, p := range s.products {
		cp := *p
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	result := &ProductPage{Page: page, PageSize: PageSize, TotalCount: len(all)}
	start := (page - 1) * PageSize
	if start < len(all) {
		end := start + PageSize
		if end > len(all) {
			end = len(all)
		}
		result.Products = all[start:end]
	}
	return result, nil
}

// SaveProduct inserts or updates a product.
func (s *MemoryStore) SaveProduct(ctx context.Context, p *Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == 0 {
		p.ID = s.nextID
		s.nextID++
	} else if p.ID >= s.nextID {
		s.nextID = p.ID + 1
	}
	cp := *p
	s.products[p.ID] = &cp
	return nil
}

// DeleteProduct removes a product. No-op if absent.
func (s *MemoryStore) DeleteProduct(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.products, id)
	return nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}
