package config

import "time"

// ApplyDefaults fills in default values for any unset configuration
// fields. It is called by LoadConfig before validation.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = "127.0.0.1:8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 120 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = 1 << 20
	}

	// Admission defaults: 10 token burst, 10 restored every 10 seconds.
	if cfg.Admission.Capacity == 0 {
		cfg.Admission.Capacity = 10
	}
	if cfg.Admission.RefillAmount == 0 {
		cfg.Admission.RefillAmount = 10
	}
	if cfg.Admission.RefillPeriod == 0 {
		cfg.Admission.RefillPeriod = 10 * time.Second
	}

	// Cart defaults
	if cfg.Cart.LockWait == 0 {
		cfg.Cart.LockWait = 2 * time.Second
	}
	if cfg.Cart.MaxRetries == 0 {
		cfg.Cart.MaxRetries = 3
	}

	// Storage defaults
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "memory"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "data/webstore.db"
	}

	// Catalog defaults
	if cfg.Catalog.Backend == "" {
		cfg.Catalog.Backend = "memory"
	}
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = "data/catalog.db"
	}

	// Retention defaults
	if cfg.Retention.PruneSchedule == "" {
		cfg.Retention.PruneSchedule = "0 3 * * *"
	}
	if cfg.Retention.MaxCartAge == 0 {
		cfg.Retention.MaxCartAge = 30 * 24 * time.Hour
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "json"
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = "webstore"
	}
}
