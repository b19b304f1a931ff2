package storage

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"mercator-hq/webstore/pkg/cart"
)

// MemoryStore implements cart.Store in memory with the same invariant and
// conflict semantics as the SQLite backend: one Open cart per user,
// version-checked updates. All data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	carts  map[int64]*cart.Cart
	nextID int64
}

// NewMemoryStore creates an empty in-memory cart store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		carts:  make(map[int64]*cart.Cart),
		nextID: 1,
	}
}

// CreateOpenCart creates a new Open cart for the user, or fails with
// cart.ErrOpenCartExists.
func (s *MemoryStore) CreateOpenCart(ctx context.Context, userID string) (*cart.Cart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.carts {
		if c.UserID == userID && c.Status == cart.StatusOpen {
			return nil, cart.ErrOpenCartExists
		}
	}

	c := &cart.Cart{
		ID:        s.nextID,
		UserID:    userID,
		Status:    cart.StatusOpen,
		CreatedAt: time.Now(),
		Version:   0,
	}
	s.nextID++
	s.carts[c.ID] = copyCart(c)
	return c, nil
}

// GetOpenCart returns the user's Open cart, or nil.
func (s *MemoryStore) GetOpenCart(ctx context.Context, userID string) (*cart.Cart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.carts {
		if c.UserID == userID && c.Status == cart.StatusOpen {
			return copyCart(c), nil
		}
	}
	return nil, nil
}

// GetCart returns the cart with the given ID, or nil.
func (s *MemoryStore) GetCart(ctx context.Context, id int64) (*cart.Cart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.carts[id]
	if !ok {
		return nil, nil
	}
	return copyCart(c), nil
}

// UpdateCart applies a version-checked update.
func (s *MemoryStore) UpdateCart(ctx context.Context, c *cart.Cart) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.carts[c.ID]
	if !ok || stored.Version != c.Version {
		return cart.NewConflictError("update_cart", c.ID, nil)
	}

	c.Version++
	s.carts[c.ID] = copyCart(c)
	return nil
}

// ListSubmitted returns one page of the user's Submitted carts.
func (s *MemoryStore) ListSubmitted(ctx context.Context, userID string, q cart.ListQuery) (*cart.OrderPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if q.Page < 1 {
		q.Page = 1
	}

	s.mu.RLock()
	var matched []*cart.Cart
	searchID, hasSearch := parseSearch(q.Search)
	for _, c := range s.carts {
		if c.UserID != userID || c.Status != cart.StatusSubmitted {
			continue
		}
		if hasSearch && c.ID != searchID {
			continue
		}
		matched = append(matched, copyCart(c))
	}
	s.mu.RUnlock()

	desc := q.SortOrder == cart.SortDateDesc
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			if desc {
				return matched[i].ID > matched[j].ID
			}
			return matched[i].ID < matched[j].ID
		}
		if desc {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	page := &cart.OrderPage{
		Page:       q.Page,
		PageSize:   cart.PageSize,
		TotalCount: len(matched),
		TotalPages: (len(matched) + cart.PageSize - 1) / cart.PageSize,
	}

	start := (q.Page - 1) * cart.PageSize
	if start < len(matched) {
		end := start + cart.PageSize
		if end > len(matched) {
			end = len(matched)
		}
		page.Orders = matched[start:end]
	}
	return page, nil
}

// DeleteCart removes a cart. No-op if absent.
func (s *MemoryStore) DeleteCart(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, id)
	return nil
}

// PruneAbandoned deletes Open carts created before the cutoff.
func (s *MemoryStore) PruneAbandoned(ctx context.Context, olderThan time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for id, c := range s.carts {
		if c.Status == cart.StatusOpen && c.CreatedAt.Before(olderThan) {
			delete(s.carts, id)
			deleted++
		}
	}
	return deleted, nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// copyCart deep-copies a cart so callers never alias stored state.
func copyCart(c *cart.Cart) *cart.Cart {
	cp := *c
	cp.Items = make([]cart.LineItem, len(c.Items))
	copy(cp.Items, c.Items)
	return &cp
}

func parseSearch(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
