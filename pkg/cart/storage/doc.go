// Package storage provides persistence backends for the cart pipeline.
//
// Two implementations of the cart.Store contract are available: SQLite
// (durable, single-instance) and an in-memory store with identical
// semantics used by tests and zero-config deployments. Both enforce the
// single-open-cart-per-user invariant and optimistic concurrency on
// writes, so the service layer behaves the same against either.
package storage
