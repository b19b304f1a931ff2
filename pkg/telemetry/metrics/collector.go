// Package metrics provides Prometheus instrumentation for the storefront.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns the Prometheus registry and all storefront metric
// instances. It is safe for concurrent use; all methods are no-ops on a
// nil receiver so components can be wired without metrics in tests.
type Collector struct {
	registry *prometheus.Registry

	// Admission metrics
	admissionTotal *prometheus.CounterVec

	// Cart pipeline metrics
	cartOpsTotal    *prometheus.CounterVec
	cartOpDuration  *prometheus.HistogramVec
	conflictRetries prometheus.Counter

	// HTTP metrics
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewCollector creates a collector and registers all metrics with the
// given registry. If registry is nil a fresh one is created.
//
// Example:
//
//	collector := metrics.NewCollector("webstore", nil)
//	mux.Handle("/metrics", collector.Handler())
func NewCollector(namespace string, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if namespace == "" {
		namespace = "webstore"
	}

	c := &Collector{
		registry: registry,

		admissionTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "admission",
				Name:      "requests_total",
				Help:      "Admission gate decisions by outcome (granted, throttled).",
			},
			[]string{"outcome"},
		),

		cartOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cart",
				Name:      "operations_total",
				Help:      "Cart service operations by name and result.",
			},
			[]string{"operation", "result"},
		),

		cartOpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "cart",
				Name:      "operation_duration_seconds",
				Help:      "Cart service operation latency.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
			[]string{"operation"},
		),

		conflictRetries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cart",
				Name:      "conflict_retries_total",
				Help:      "Storage write conflicts retried transparently by the cart service.",
			},
		),

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by method, route and status code.",
			},
			[]string{"method", "route", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency by route.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
			[]string{"route"},
		),
	}

	registry.MustRegister(
		c.admissionTotal,
		c.cartOpsTotal,
		c.cartOpDuration,
		c.conflictRetries,
		c.requestsTotal,
		c.requestDuration,
	)

	return c
}

// RecordAdmission records an admission gate decision.
func (c *Collector) RecordAdmission(granted bool) {
	if c == nil {
		return
	}
	outcome := "granted"
	if !granted {
		outcome = "throttled"
	}
	c.admissionTotal.WithLabelValues(outcome).Inc()
}

// RecordCartOp records the result and latency of one cart service operation.
func (c *Collector) RecordCartOp(operation, result string, duration time.Duration) {
	if c == nil {
		return
	}
	c.cartOpsTotal.WithLabelValues(operation, result).Inc()
	c.cartOpDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordConflictRetry records one transparently retried storage conflict.
func (c *Collector) RecordConflictRetry() {
	if c == nil {
		return
	}
	c.conflictRetries.Inc()
}

// RecordRequest records a completed HTTP request.
func (c *Collector) RecordRequest(method, route, status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.requestsTotal.WithLabelValues(method, route, status).Inc()
	c.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}
