// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// Middleware functions are chained in a specific order:
//
//	handler = Recovery(Logging(RequestID(Metrics(Timeout(handler)))))
//
// Order (innermost to outermost):
//  1. Timeout: enforce per-request timeout
//  2. Metrics: record request counts and latency
//  3. RequestID: generate and propagate request ID
//  4. Logging: log request/response details
//  5. Recovery: recover from panics
//
// The admission gate and authentication middleware live in their own
// packages (pkg/admission, pkg/auth) because they carry domain state;
// this package holds only the stateless plumbing.
//
// # Thread Safety
//
// All middleware functions are thread-safe and can be called concurrently
// from multiple goroutines.
package middleware
