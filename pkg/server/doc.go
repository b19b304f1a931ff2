// Package server provides the storefront HTTP server.
//
// This package ties together the admission gate, authentication,
// handlers and middleware, and provides server lifecycle management
// including start, graceful shutdown and health checks.
//
// # Routes
//
// Storefront routes (admission-gated, bearer-token authenticated):
//
//   - POST /cart/items        - merge a line item into the open cart
//   - POST /cart/checkout     - submit the open cart, redirect to /orders
//   - GET  /cart              - priced view of the open cart
//   - GET  /orders            - paginated submitted-order listing
//   - DELETE /orders/{id}     - delete an order (admin)
//
// Catalog routes (admission-gated; reads are anonymous, mutations need
// the admin or seller role):
//
//   - GET    /products        - paginated catalog listing
//   - GET    /products/{id}   - single product
//   - POST   /products        - insert or update a product
//   - DELETE /products/{id}   - remove a product
//
// Operational routes (never gated, so probes and scrapes keep working
// while the storefront is throttled):
//
//   - GET /health  - liveness probe
//   - GET /ready   - readiness probe
//   - GET /metrics - Prometheus metrics
//
// # Middleware Chain
//
// Storefront requests pass through (outermost first): recovery, logging,
// request ID, per-request timeout, the admission gate, then per-route
// authentication and role checks. The gate runs before authentication:
// admission is identity-agnostic and a throttled request must not spend
// work on session validation.
//
// # Graceful Shutdown
//
// The server shuts down gracefully on SIGTERM or SIGINT: it stops
// accepting connections, waits for in-flight requests up to the
// configured shutdown timeout, then forces closure.
package server
