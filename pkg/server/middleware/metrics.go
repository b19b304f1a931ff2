package middleware

import (
	"net/http"
	"strconv"
	"time"

	"mercator-hq/webstore/pkg/telemetry/metrics"
)

// MetricsMiddleware records per-request counters and latency histograms.
// The route label is the registered pattern, not the raw path, so metric
// cardinality stays bounded.
func MetricsMiddleware(collector *metrics.Collector, route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			collector.RecordRequest(r.Method, route,
				strconv.Itoa(rw.statusCode), time.Since(start))
		})
	}
}
