package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns the first problem found.
func Validate(cfg *Config) error {
	if cfg.Server.ListenAddress == "" {
		return fmt.Errorf("server.listen_address cannot be empty")
	}

	if cfg.Admission.Capacity < 1 {
		return fmt.Errorf("admission.capacity must be at least 1, got %d", cfg.Admission.Capacity)
	}
	if cfg.Admission.RefillAmount < 1 {
		return fmt.Errorf("admission.refill_amount must be at least 1, got %d", cfg.Admission.RefillAmount)
	}
	if cfg.Admission.RefillPeriod <= 0 {
		return fmt.Errorf("admission.refill_period must be positive, got %s", cfg.Admission.RefillPeriod)
	}

	if cfg.Cart.LockWait <= 0 {
		return fmt.Errorf("cart.lock_wait must be positive, got %s", cfg.Cart.LockWait)
	}
	if cfg.Cart.MaxRetries < 1 {
		return fmt.Errorf("cart.max_retries must be at least 1, got %d", cfg.Cart.MaxRetries)
	}

	switch cfg.Storage.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("storage.backend must be \"memory\" or \"sqlite\", got %q", cfg.Storage.Backend)
	}
	if cfg.Storage.Backend == "sqlite" && cfg.Storage.Path == "" {
		return fmt.Errorf("storage.path cannot be empty with the sqlite backend")
	}

	switch cfg.Catalog.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("catalog.backend must be \"memory\" or \"sqlite\", got %q", cfg.Catalog.Backend)
	}
	if cfg.Catalog.Backend == "sqlite" && cfg.Catalog.Path == "" {
		return fmt.Errorf("catalog.path cannot be empty with the sqlite backend")
	}

	if cfg.Retention.Enabled {
		if _, err := cron.ParseStandard(cfg.Retention.PruneSchedule); err != nil {
			return fmt.Errorf("retention.prune_schedule %q is not a valid cron expression: %w",
				cfg.Retention.PruneSchedule, err)
		}
		if cfg.Retention.MaxCartAge <= 0 {
			return fmt.Errorf("retention.max_cart_age must be positive, got %s", cfg.Retention.MaxCartAge)
		}
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("telemetry.logging.level must be one of debug, info, warn, error; got %q",
			cfg.Telemetry.Logging.Level)
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("telemetry.logging.format must be \"json\" or \"text\", got %q",
			cfg.Telemetry.Logging.Format)
	}

	return nil
}
