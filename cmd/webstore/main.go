// Webstore is an admission-controlled storefront service.
//
// It serves the cart and checkout pipeline behind a process-wide token
// bucket, providing:
//   - Admission control with discrete-tick token replenishment
//   - A per-user cart aggregate with a single-open-cart invariant
//   - Optimistic-concurrency storage with transparent conflict retries
//   - A paginated submitted-orders listing
//   - Product catalog management with role-gated mutations
//
// Usage:
//
//	# Start server with default configuration
//	webstore run
//
//	# Start with custom configuration file
//	webstore run --config /path/to/config.yaml
//
//	# Show version information
//	webstore version
package main

func main() {
	Execute()
}
