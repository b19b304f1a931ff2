package cart

import (
	"context"
	"time"
)

// Status is the lifecycle state of a cart aggregate.
type Status string

const (
	// StatusOpen is the initial, mutable state.
	StatusOpen Status = "Open"

	// StatusSubmitted is the terminal, immutable state reached at checkout.
	StatusSubmitted Status = "Submitted"
)

// Quantity bounds for a single line item.
const (
	MinQuantity = 1
	MaxQuantity = 100
)

// PageSize is the fixed page size for submitted-order listings.
const PageSize = 3

// Recognized sort tokens for ListSubmitted queries. Anything else falls
// back to ascending order by creation time.
const (
	SortDateAsc  = "date_asc"
	SortDateDesc = "date_desc"
)

// Cart is the per-user aggregate of line items.
//
// Version is the optimistic-concurrency token owned by the storage layer:
// every successful UpdateCart increments it, and an update conditioned on
// a stale version fails with a ConflictError.
type Cart struct {
	ID        int64
	UserID    string
	Status    Status
	CreatedAt time.Time
	Version   int64
	Items     []LineItem
}

// LineItem is one product entry in a cart. Line items have no lifecycle of
// their own; they live and die with their cart. ProductID references a
// catalog entity owned elsewhere.
type LineItem struct {
	ProductID int64
	Quantity  int
}

// Item returns the line item for productID, or nil if the cart has none.
func (c *Cart) Item(productID int64) *LineItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// ListQuery describes a submitted-orders listing request.
type ListQuery struct {
	// SortOrder is one of SortDateAsc or SortDateDesc. Unrecognized or
	// empty values sort ascending.
	SortOrder string

	// Search, when numeric, filters to the single order with that ID.
	// Non-numeric search strings are ignored, not errors.
	Search string

	// Page is the 1-based page number. Values below 1 are treated as 1.
	Page int
}

// OrderPage is one page of a user's submitted orders.
type OrderPage struct {
	Orders     []*Cart
	Page       int
	PageSize   int
	TotalCount int
	TotalPages int
}

// Store is the persistence contract for cart aggregates. Implementations
// must be safe for concurrent use.
//
// The single-open-cart invariant is enforced at this layer too: a
// CreateOpenCart racing an existing Open cart for the same user must fail
// with ErrOpenCartExists, and UpdateCart must reject writes conditioned on
// a stale Version with a *ConflictError. The service layer relies on both
// signals to converge concurrent callers.
type Store interface {
	// CreateOpenCart creates a new Open cart for the user. Returns
	// ErrOpenCartExists if the user already has one.
	CreateOpenCart(ctx context.Context, userID string) (*Cart, error)

	// GetOpenCart returns the user's Open cart, or nil if none exists.
	GetOpenCart(ctx context.Context, userID string) (*Cart, error)

	// GetCart returns the cart with the given ID regardless of status, or
	// nil if it does not exist.
	GetCart(ctx context.Context, id int64) (*Cart, error)

	// UpdateCart persists the cart's status and line items, conditioned on
	// cart.Version matching the stored version. On success the stored and
	// in-memory versions are incremented. A stale version yields a
	// *ConflictError and no mutation.
	UpdateCart(ctx context.Context, c *Cart) error

	// ListSubmitted returns one page of the user's Submitted carts.
	ListSubmitted(ctx context.Context, userID string, q ListQuery) (*OrderPage, error)

	// DeleteCart removes a cart and its line items. Administrative
	// operation; the request pipeline never deletes carts.
	DeleteCart(ctx context.Context, id int64) error

	// PruneAbandoned deletes Open carts created before the cutoff and
	// returns how many were removed.
	PruneAbandoned(ctx context.Context, olderThan time.Time) (int, error)

	// Close releases storage resources.
	Close() error
}
