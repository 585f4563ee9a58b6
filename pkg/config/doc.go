// Package config provides configuration management for Cirrus.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with comprehensive validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention CIRRUS_SECTION_FIELD.
// For example:
//
//   - CIRRUS_SERVICE_BASE_URL overrides service.base_url
//   - CIRRUS_REDIS_ADDR overrides redis.addr
//   - CIRRUS_LOGGING_LEVEL overrides logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides
// earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Hot Reload
//
// Watcher observes the configuration file and invokes a callback with the
// freshly loaded configuration after each change. The run loop uses this to
// reapply rate limit categories without a restart; sections that require a
// restart (storage backend, listen address) are left untouched by design of
// the callback, not of this package.
package config
