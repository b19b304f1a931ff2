package cart

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"mercator-hq/webstore/pkg/catalog"
	"mercator-hq/webstore/pkg/telemetry/metrics"
)

// ServiceConfig configures the cart service.
type ServiceConfig struct {
	// Store is the cart persistence backend. Required.
	Store Store

	// Catalog validates product references on line-item merges. Required.
	Catalog catalog.Lookup

	// LockWait bounds how long a mutation waits for the per-user
	// serialization before failing with ErrBusy.
	// Default: 2 seconds
	LockWait time.Duration

	// MaxRetries bounds how many times a storage write conflict is
	// retried before surfacing a ConflictError.
	// Default: 3
	MaxRetries int

	// Metrics records operation outcomes. Optional.
	Metrics *metrics.Collector
}

// Service exposes the cart pipeline operations with the concurrency
// contract required to keep them safe under parallel callers: every
// mutation for a user runs inside that user's critical section (keyed
// mutex with bounded wait), and storage write conflicts are retried
// transparently up to MaxRetries.
type Service struct {
	store      Store
	catalog    catalog.Lookup
	locks      *KeyedMutex
	lockWait   time.Duration
	maxRetries int
	metrics    *metrics.Collector
	logger     *slog.Logger
}

// NewService creates a cart service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.LockWait <= 0 {
		cfg.LockWait = 2 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	return &Service{
		store:      cfg.Store,
		catalog:    cfg.Catalog,
		locks:      NewKeyedMutex(),
		lockWait:   cfg.LockWait,
		maxRetries: cfg.MaxRetries,
		metrics:    cfg.Metrics,
		logger:     slog.Default().With("component", "cart.service"),
	}
}

// FindOrCreateOpenCart returns the user's Open cart, creating one if none
// exists. Serialized per user so concurrent first-time callers converge on
// a single cart.
func (s *Service) FindOrCreateOpenCart(ctx context.Context, userID string) (*Cart, error) {
	start := time.Now()
	c, err := s.findOrCreateOpenCart(ctx, userID)
	s.metrics.RecordCartOp("find_or_create", resultLabel(err), time.Since(start))
	return c, err
}

func (s *Service) findOrCreateOpenCart(ctx context.Context, userID string) (*Cart, error) {
	release, err := s.locks.Acquire(ctx, userID, s.lockWait)
	if err != nil {
		return nil, err
	}
	defer release()

	return s.openCartLocked(ctx, userID)
}

// AddItem merges a line item into the user's Open cart, creating the cart
// if needed. An existing line for the product has its quantity increased;
// otherwise a new line is appended. A merged quantity outside 1..100 is a
// validation error, never a silent clamp.
func (s *Service) AddItem(ctx context.Context, userID string, productID int64, quantity int) (*Cart, error) {
	start := time.Now()
	c, err := s.addItem(ctx, userID, productID, quantity)
	s.metrics.RecordCartOp("add_item", resultLabel(err), time.Since(start))
	return c, err
}

func (s *Service) addItem(ctx context.Context, userID string, productID int64, quantity int) (*Cart, error) {
	if quantity < MinQuantity || quantity > MaxQuantity {
		return nil, NewValidationError("quantity",
			fmt.Sprintf("must be between %d and %d", MinQuantity, MaxQuantity))
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}
	if product == nil {
		return nil, NewNotFoundError("product", strconv.FormatInt(productID, 10))
	}
	if !product.Available {
		return nil, NewValidationError("productId", "product is not available")
	}

	release, err := s.locks.Acquire(ctx, userID, s.lockWait)
	if err != nil {
		return nil, err
	}
	defer release()

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			s.metrics.RecordConflictRetry()
			s.logger.Debug("retrying cart mutation after conflict",
				"user_id", userID, "attempt", attempt)
		}

		c, err := s.openCartLocked(ctx, userID)
		if err != nil {
			return nil, err
		}

		if line := c.Item(productID); line != nil {
			merged := line.Quantity + quantity
			if merged > MaxQuantity {
				return nil, NewValidationError("quantity",
					fmt.Sprintf("merged quantity %d exceeds maximum %d", merged, MaxQuantity))
			}
			line.Quantity = merged
		} else {
			c.Items = append(c.Items, LineItem{ProductID: productID, Quantity: quantity})
		}

		err = s.store.UpdateCart(ctx, c)
		if err == nil {
			return c, nil
		}
		if !IsConflict(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

// Checkout flips the user's Open cart to Submitted exactly once. Without
// an Open cart it reports ErrNothingToSubmit; since a submitted cart is no
// longer Open, a retried checkout takes the same path and is a no-op.
func (s *Service) Checkout(ctx context.Context, userID string) (*Cart, error) {
	start := time.Now()
	c, err := s.checkout(ctx, userID)
	s.metrics.RecordCartOp("checkout", resultLabel(err), time.Since(start))
	return c, err
}

func (s *Service) checkout(ctx context.Context, userID string) (*Cart, error) {
	release, err := s.locks.Acquire(ctx, userID, s.lockWait)
	if err != nil {
		return nil, err
	}
	defer release()

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			s.metrics.RecordConflictRetry()
		}

		c, err := s.store.GetOpenCart(ctx, userID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, ErrNothingToSubmit
		}

		c.Status = StatusSubmitted
		err = s.store.UpdateCart(ctx, c)
		if err == nil {
			s.logger.Info("cart submitted", "user_id", userID, "cart_id", c.ID,
				"line_items", len(c.Items))
			return c, nil
		}
		if !IsConflict(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

// OpenCart returns the user's Open cart without creating one; nil means
// the user has no cart. Read-only, no serialization.
func (s *Service) OpenCart(ctx context.Context, userID string) (*Cart, error) {
	return s.store.GetOpenCart(ctx, userID)
}

// ListSubmittedOrders returns one page of the user's submitted orders.
// Purely a query; takes no lock beyond the store's read consistency.
func (s *Service) ListSubmittedOrders(ctx context.Context, userID string, q ListQuery) (*OrderPage, error) {
	start := time.Now()
	if q.Page < 1 {
		q.Page = 1
	}
	page, err := s.store.ListSubmitted(ctx, userID, q)
	s.metrics.RecordCartOp("list_orders", resultLabel(err), time.Since(start))
	return page, err
}

// DeleteOrder removes an order regardless of status. Administrative
// operation; role gating happens at the HTTP layer.
func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	c, err := s.store.GetCart(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return NewNotFoundError("order", strconv.FormatInt(id, 10))
	}
	return s.store.DeleteCart(ctx, id)
}

// openCartLocked implements find-or-create under the caller-held user
// lock. A CreateOpenCart losing the race against another process is
// resolved by re-fetching the winner's cart.
func (s *Service) openCartLocked(ctx context.Context, userID string) (*Cart, error) {
	c, err := s.store.GetOpenCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c != nil {
		return c, nil
	}

	c, err = s.store.CreateOpenCart(ctx, userID)
	if err == nil {
		s.logger.Debug("created open cart", "user_id", userID, "cart_id", c.ID)
		return c, nil
	}
	if err != ErrOpenCartExists {
		return nil, err
	}

	c, err = s.store.GetOpenCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, NewConflictError("create_cart", 0, ErrOpenCartExists)
	}
	return c, nil
}

// resultLabel maps an operation outcome to a metric label.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case err == ErrNothingToSubmit:
		return "noop"
	case err == ErrBusy:
		return "busy"
	case IsConflict(err):
		return "conflict"
	default:
		switch err.(type) {
		case *ValidationError:
			return "validation"
		case *NotFoundError:
			return "not_found"
		}
		return "error"
	}
}
