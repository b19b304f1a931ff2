// Package handlers implements the storefront HTTP endpoints.
//
// Handlers translate between the HTTP surface and the cart/catalog
// services: they decode requests, resolve the authenticated identity from
// the request context, call the service, and map the service's error
// taxonomy onto HTTP statuses. No business rules live here.
//
// # Error Mapping
//
// Service errors map to responses as follows:
//
//   - validation error  -> 400 Bad Request
//   - not found         -> 404 Not Found
//   - write conflict    -> 409 Conflict (after the service's own retries)
//   - busy (lock wait)  -> 503 Service Unavailable with Retry-After
//
// Admission denial (429) never reaches a handler; the gate short-circuits
// it upstream.
package handlers
