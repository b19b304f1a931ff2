package admission

import (
	"encoding/json"
	"fmt"
	"net/http"

	"mercator-hq/webstore/pkg/telemetry/metrics"
)

// throttledResponse is the JSON body returned on an admission denial.
type throttledResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Gate returns HTTP middleware that consults the shared token bucket ahead
// of any business logic.
//
// On a grant the middleware is fully transparent: the downstream handler
// receives the original request and its response passes through untouched.
// On a denial the request is short-circuited with 429 Too Many Requests, a
// Retry-After header equal to the bucket's refill period, and a structured
// JSON body identifying the throttling condition.
//
// The gate is identity-agnostic and applies uniformly to every request;
// its only state is the shared bucket reference.
//
// Example:
//
//	bucket := NewTokenBucket(10, 10, 10*time.Second)
//	handler = Gate(bucket, collector)(handler)
func Gate(bucket *TokenBucket, collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bucket.TryAcquire() {
				collector.RecordAdmission(true)
				next.ServeHTTP(w, r)
				return
			}

			collector.RecordAdmission(false)

			retryAfter := int(bucket.RefillPeriod().Seconds())
			w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)

			_ = json.NewEncoder(w).Encode(throttledResponse{
				Status:  http.StatusTooManyRequests,
				Message: "Too many requests",
			})
		})
	}
}
