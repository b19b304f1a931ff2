package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.ListenAddress != "127.0.0.1:8080" {
		t.Errorf("Unexpected default listen address: %s", cfg.Server.ListenAddress)
	}
	if cfg.Admission.Capacity != 10 || cfg.Admission.RefillAmount != 10 {
		t.Errorf("Unexpected admission defaults: %+v", cfg.Admission)
	}
	if cfg.Admission.RefillPeriod != 10*time.Second {
		t.Errorf("Unexpected refill period: %s", cfg.Admission.RefillPeriod)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("Unexpected default storage backend: %s", cfg.Storage.Backend)
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("Expected metrics enabled by default")
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("Default config failed validation: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "0.0.0.0:9090"
admission:
  capacity: 5
  refill_amount: 2
  refill_period: 30s
storage:
  backend: sqlite
  path: /tmp/carts.db
auth:
  sessions:
    - token: alice-token
      user_id: alice
      roles: [admin]
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9090" {
		t.Errorf("listen_address = %s", cfg.Server.ListenAddress)
	}
	if cfg.Admission.Capacity != 5 || cfg.Admission.RefillAmount != 2 {
		t.Errorf("admission = %+v", cfg.Admission)
	}
	if cfg.Admission.RefillPeriod != 30*time.Second {
		t.Errorf("refill_period = %s", cfg.Admission.RefillPeriod)
	}
	if cfg.Storage.Backend != "sqlite" || cfg.Storage.Path != "/tmp/carts.db" {
		t.Errorf("storage = %+v", cfg.Storage)
	}

	// Unset fields still get defaults
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("read_timeout default missing: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Cart.MaxRetries != 3 {
		t.Errorf("cart.max_retries default missing: %d", cfg.Cart.MaxRetries)
	}

	if len(cfg.Auth.Sessions) != 1 || cfg.Auth.Sessions[0].UserID != "alice" {
		t.Errorf("sessions = %+v", cfg.Auth.Sessions)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a mapping")
	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected parse error")
	}
}

func TestLoadConfig_MetricsCanBeDisabled(t *testing.T) {
	path := writeConfig(t, `
telemetry:
  metrics:
    enabled: false
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("Explicit enabled: false was overridden")
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "127.0.0.1:8080"
admission:
  capacity: 5
`)

	t.Setenv("WEBSTORE_SERVER_LISTEN_ADDRESS", "0.0.0.0:7070")
	t.Setenv("WEBSTORE_ADMISSION_CAPACITY", "42")
	t.Setenv("WEBSTORE_ADMISSION_REFILL_PERIOD", "5s")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:7070" {
		t.Errorf("Env override lost: %s", cfg.Server.ListenAddress)
	}
	if cfg.Admission.Capacity != 42 {
		t.Errorf("Env override lost: %d", cfg.Admission.Capacity)
	}
	if cfg.Admission.RefillPeriod != 5*time.Second {
		t.Errorf("Env override lost: %s", cfg.Admission.RefillPeriod)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero capacity", func(c *Config) { c.Admission.Capacity = -1 }},
		{"zero refill amount", func(c *Config) { c.Admission.RefillAmount = -1 }},
		{"negative refill period", func(c *Config) { c.Admission.RefillPeriod = -time.Second }},
		{"unknown storage backend", func(c *Config) { c.Storage.Backend = "postgres" }},
		{"unknown catalog backend", func(c *Config) { c.Catalog.Backend = "redis" }},
		{"bad log level", func(c *Config) { c.Telemetry.Logging.Level = "trace" }},
		{"bad log format", func(c *Config) { c.Telemetry.Logging.Format = "xml" }},
		{"bad cron schedule", func(c *Config) {
			c.Retention.Enabled = true
			c.Retention.PruneSchedule = "not cron"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Error("Expected validation failure")
			}
		})
	}
}

func TestValidate_AcceptsRetentionSchedule(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Retention.Enabled = true
	cfg.Retention.PruneSchedule = "0 */6 * * *"

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
