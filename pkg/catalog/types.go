// Package catalog owns product data for the storefront.
//
// The cart pipeline consumes only the Lookup boundary to validate product
// references; the full Store adds the administrative CRUD used by the
// catalog pages. Prices are stored in cents to avoid float drift.
package catalog

import "context"

// Product is a catalog entry.
type Product struct {
	ID         int64
	Name       string
	PriceCents int64
	PhotoURL   string
	Available  bool
}

// ProductPage is one page of the catalog listing.
type ProductPage struct {
	Products   []*Product
	Page       int
	PageSize   int
	TotalCount int
}

// PageSize is the fixed page size for catalog listings.
const PageSize = 3

// Lookup is the read-only boundary the cart pipeline depends on.
type Lookup interface {
	// GetProduct returns the product, or nil if it does not exist.
	GetProduct(ctx context.Context, id int64) (*Product, error)
}

// Store is the full catalog contract, including the role-gated
// administrative operations.
type Store interface {
	Lookup

	// ListProducts returns one page of the catalog. Pages are 1-based.
	ListProducts(ctx context.Context, page int) (*ProductPage, error)

	// SaveProduct inserts the product, or updates it when ID is set and
	// already present. On insert the assigned ID is written back.
	SaveProduct(ctx context.Context, p *Product) error

	// DeleteProduct removes a product. No-op if absent.
	DeleteProduct(ctx context.Context, id int64) error

	// Close releases storage resources.
	Close() error
}
