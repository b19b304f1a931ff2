// Package config loads, validates and watches the storefront configuration.
package config

import (
	"time"

	"mercator-hq/webstore/pkg/auth"
)

// Config is the root configuration structure for the webstore service.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts and connection limits.
	Server ServerConfig `yaml:"server"`

	// Admission contains the process-wide token bucket settings applied
	// ahead of all business logic.
	Admission AdmissionConfig `yaml:"admission"`

	// Cart contains cart service tuning: per-user lock wait and conflict
	// retry bounds.
	Cart CartConfig `yaml:"cart"`

	// Storage selects and configures the cart/order persistence backend.
	Storage StorageConfig `yaml:"storage"`

	// Catalog selects and configures the product catalog backend.
	Catalog CatalogConfig `yaml:"catalog"`

	// Auth contains the static session table mapping bearer tokens to
	// identities and roles.
	Auth AuthConfig `yaml:"auth"`

	// Retention configures scheduled pruning of abandoned open carts.
	Retention RetentionConfig `yaml:"retention"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out response
	// writes. Also used as the per-request timeout.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// AdmissionConfig contains the token bucket settings. The defaults mirror
// the storefront's production policy: 10 requests burst, 10 restored
// every 10 seconds.
type AdmissionConfig struct {
	// Capacity is the maximum (and initial) token count.
	// Default: 10
	Capacity int64 `yaml:"capacity"`

	// RefillAmount is the number of tokens restored per refill period.
	// Default: 10
	RefillAmount int64 `yaml:"refill_amount"`

	// RefillPeriod is the interval between replenishment ticks. Rejected
	// requests receive this as their Retry-After hint.
	// Default: 10s
	RefillPeriod time.Duration `yaml:"refill_period"`
}

// CartConfig contains cart service tuning.
type CartConfig struct {
	// LockWait bounds how long a mutation waits for the per-user
	// serialization before failing as busy.
	// Default: 2s
	LockWait time.Duration `yaml:"lock_wait"`

	// MaxRetries bounds transparent retries of storage write conflicts.
	// Default: 3
	MaxRetries int `yaml:"max_retries"`
}

// StorageConfig selects the cart/order persistence backend.
type StorageConfig struct {
	// Backend is "memory" or "sqlite".
	// Default: "memory"
	Backend string `yaml:"backend"`

	// Path is the SQLite database file path (sqlite backend only).
	// Default: "data/webstore.db"
	Path string `yaml:"path"`
}

// CatalogConfig selects the product catalog backend.
type CatalogConfig struct {
	// Backend is "memory" or "sqlite".
	// Default: "memory"
	Backend string `yaml:"backend"`

	// Path is the SQLite database file path (sqlite backend only).
	// Default: "data/catalog.db"
	Path string `yaml:"path"`
}

// AuthConfig contains the static session table.
type AuthConfig struct {
	// Sessions maps bearer tokens to identities.
	Sessions []auth.SessionEntry `yaml:"sessions"`
}

// RetentionConfig configures scheduled pruning of abandoned open carts.
type RetentionConfig struct {
	// Enabled controls whether the pruning scheduler runs.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// PruneSchedule is a standard cron expression (e.g. "0 3 * * *").
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`

	// MaxCartAge is how old an Open cart may grow before it is considered
	// abandoned.
	// Default: 720h (30 days)
	MaxCartAge time.Duration `yaml:"max_cart_age"`
}

// TelemetryConfig contains logging and metrics configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric namespace prefix.
	// Default: "webstore"
	Namespace string `yaml:"namespace"`
}
