// Package retention removes abandoned open carts on a schedule.
//
// Cart deletion is an administrative concern: the request pipeline never
// deletes aggregates. The pruner deletes Open carts older than the
// configured age; Submitted orders are never touched.
package retention

import (
	"context"
	"log/slog"
	"time"

	"mercator-hq/webstore/pkg/cart"
)

// Pruner deletes abandoned Open carts from the store.
type Pruner struct {
	store  cart.Store
	maxAge time.Duration
	logger *slog.Logger
}

// NewPruner creates a pruner that removes Open carts older than maxAge.
func NewPruner(store cart.Store, maxAge time.Duration) *Pruner {
	return &Pruner{
		store:  store,
		maxAge: maxAge,
		logger: slog.Default().With("component", "retention.pruner"),
	}
}

// Prune deletes Open carts created before now minus the configured age.
// Returns the number of carts removed.
func (p *Pruner) Prune(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-p.maxAge)

	deleted, err := p.store.PruneAbandoned(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		p.logger.Info("pruned abandoned carts",
			"deleted", deleted,
			"older_than", cutoff.Format(time.RFC3339),
		)
	}
	return deleted, nil
}
