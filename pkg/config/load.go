package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention CIRRUS_SECTION_FIELD (e.g., CIRRUS_SERVICE_BASE_URL).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
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

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format CIRRUS_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Service overrides
	if val := os.Getenv("CIRRUS_SERVICE_BASE_URL"); val != "" {
		cfg.Service.BaseURL = val
	}
	if val := os.Getenv("CIRRUS_SERVICE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Service.Timeout = d
		}
	}
	if val := os.Getenv("CIRRUS_SERVICE_LIMIT_KEY"); val != "" {
		cfg.Service.LimitKey = val
	}

	// Notification overrides
	if val := os.Getenv("CIRRUS_NOTIFICATIONS_BACKEND"); val != "" {
		cfg.Notifications.Backend = val
	}
	if val := os.Getenv("CIRRUS_NOTIFICATIONS_DB_PATH"); val != "" {
		cfg.Notifications.DBPath = val
	}
	if val := os.Getenv("CIRRUS_NOTIFICATIONS_SYNC_SCHEDULE"); val != "" {
		cfg.Notifications.SyncSchedule = val
	}

	// Redis overrides
	if val := os.Getenv("CIRRUS_REDIS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Redis.Enabled = b
		}
	}
	if val := os.Getenv("CIRRUS_REDIS_ADDR"); val != "" {
		cfg.Redis.Addr = val
	}
	if val := os.Getenv("CIRRUS_REDIS_PASSWORD"); val != "" {
		cfg.Redis.Password = val
	}

	// Admin overrides
	if val := os.Getenv("CIRRUS_ADMIN_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Admin.Enabled = &b
		}
	}
	if val := os.Getenv("CIRRUS_ADMIN_LISTEN_ADDRESS"); val != "" {
		cfg.Admin.ListenAddress = val
	}

	// Logging overrides
	if val := os.Getenv("CIRRUS_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("CIRRUS_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
}
