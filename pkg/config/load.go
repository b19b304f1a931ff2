package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfig returns a configuration with every default applied and no
// file loaded. Boolean defaults that cannot be expressed by ApplyDefaults
// (metrics enabled) are set here.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Telemetry.Metrics.Enabled = true
	ApplyDefaults(cfg)
	return cfg
}

// LoadConfig loads configuration from a YAML file, applies defaults and
// validates the result. A missing file is an error; use DefaultConfig for
// zero-config startup.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := &Config{}
	cfg.Telemetry.Metrics.Enabled = true
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and then
// applies environment variable overrides. Variables follow the naming
// convention WEBSTORE_SECTION_FIELD (e.g. WEBSTORE_SERVER_LISTEN_ADDRESS)
// and always take precedence over file-based configuration.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies WEBSTORE_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("WEBSTORE_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("WEBSTORE_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("WEBSTORE_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	if val := os.Getenv("WEBSTORE_ADMISSION_CAPACITY"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Admission.Capacity = i
		}
	}
	if val := os.Getenv("WEBSTORE_ADMISSION_REFILL_AMOUNT"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Admission.RefillAmount = i
		}
	}
	if val := os.Getenv("WEBSTORE_ADMISSION_REFILL_PERIOD"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Admission.RefillPeriod = d
		}
	}

	if val := os.Getenv("WEBSTORE_STORAGE_BACKEND"); val != "" {
		cfg.Storage.Backend = val
	}
	if val := os.Getenv("WEBSTORE_STORAGE_PATH"); val != "" {
		cfg.Storage.Path = val
	}
	if val := os.Getenv("WEBSTORE_CATALOG_BACKEND"); val != "" {
		cfg.Catalog.Backend = val
	}
	if val := os.Getenv("WEBSTORE_CATALOG_PATH"); val != "" {
		cfg.Catalog.Path = val
	}

	if val := os.Getenv("WEBSTORE_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("WEBSTORE_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
}
