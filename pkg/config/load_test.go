package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfigFile(t, "{}\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Service.BaseURL != DefaultBaseURL {
		t.Errorf("expected default base URL %q, got %q", DefaultBaseURL, cfg.Service.BaseURL)
	}
	if cfg.Service.Timeout != DefaultTimeout {
		t.Errorf("expected default timeout %v, got %v", DefaultTimeout, cfg.Service.Timeout)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("expected info/json logging defaults, got %s/%s", cfg.Logging.Level, cfg.Logging.Format)
	}

	if len(cfg.Limits.Categories) != 4 {
		t.Fatalf("expected 4 default categories, got %d", len(cfg.Limits.Categories))
	}
	general := cfg.Limits.Categories["general"]
	if general.MaxRequests != 300 || general.Window != 5*time.Minute {
		t.Errorf("unexpected general category defaults: %+v", general)
	}
	search := cfg.Limits.Categories["search"]
	if search.MaxRequests != 50 || search.Window != time.Minute {
		t.Errorf("unexpected search category defaults: %+v", search)
	}
}

func TestLoadConfig_FullFile(t *testing.T) {
	path := writeConfigFile(t, `
service:
  base_url: "https://pds.example.com"
  timeout: "10s"
  limit_key: "session-a"

limits:
  categories:
    general:
      max_requests: 10
      window: "1m"
    search:
      max_requests: 5
      window: "30s"

notifications:
  backend: "memory"
  sync_schedule: "@every 1m"
  page_size: 25
  retention_age: "24h"

redis:
  enabled: true
  addr: "localhost:6379"

admin:
  enabled: true
  listen_address: "127.0.0.1:9001"

logging:
  level: "debug"
  format: "text"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Service.BaseURL != "https://pds.example.com" {
		t.Errorf("unexpected base URL %q", cfg.Service.BaseURL)
	}
	if cfg.Service.Timeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", cfg.Service.Timeout)
	}
	if cfg.Service.LimitKey != "session-a" {
		t.Errorf("unexpected limit key %q", cfg.Service.LimitKey)
	}

	if len(cfg.Limits.Categories) != 2 {
		t.Fatalf("expected 2 configured categories, got %d", len(cfg.Limits.Categories))
	}
	if cfg.Limits.Categories["search"].Window != 30*time.Second {
		t.Errorf("unexpected search window %v", cfg.Limits.Categories["search"].Window)
	}

	if cfg.Notifications.Backend != "memory" || cfg.Notifications.PageSize != 25 {
		t.Errorf("unexpected notifications config: %+v", cfg.Notifications)
	}
	if cfg.Notifications.RetentionAge != 24*time.Hour {
		t.Errorf("expected 24h retention age, got %v", cfg.Notifications.RetentionAge)
	}

	if !cfg.Redis.Enabled || cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("unexpected redis config: %+v", cfg.Redis)
	}
	if cfg.Redis.KeyPrefix != DefaultRedisKeyPrefix {
		t.Errorf("expected default key prefix, got %q", cfg.Redis.KeyPrefix)
	}

	if cfg.Admin.ListenAddress != "127.0.0.1:9001" {
		t.Errorf("unexpected admin address %q", cfg.Admin.ListenAddress)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoadConfig_AdminDisabled(t *testing.T) {
	path := writeConfigFile(t, "admin:\n  enabled: false\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Admin.IsEnabled() {
		t.Error("explicit admin.enabled=false should survive loading")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "service: [not a mapping\n")
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected error for malformed YAML")
	}
	if !strings.Contains(err.Error(), "parse") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
service:
  base_url: "https://file.example.com"
logging:
  level: "info"
`)

	t.Setenv("CIRRUS_SERVICE_BASE_URL", "https://env.example.com")
	t.Setenv("CIRRUS_SERVICE_TIMEOUT", "5s")
	t.Setenv("CIRRUS_LOGGING_LEVEL", "warn")
	t.Setenv("CIRRUS_REDIS_ENABLED", "true")
	t.Setenv("CIRRUS_REDIS_ADDR", "redis.internal:6379")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides failed: %v", err)
	}

	if cfg.Service.BaseURL != "https://env.example.com" {
		t.Errorf("env override should win, got %q", cfg.Service.BaseURL)
	}
	if cfg.Service.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout from env, got %v", cfg.Service.Timeout)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected warn level from env, got %q", cfg.Logging.Level)
	}
	if !cfg.Redis.Enabled || cfg.Redis.Addr != "redis.internal:6379" {
		t.Errorf("unexpected redis config after overrides: %+v", cfg.Redis)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidResult(t *testing.T) {
	path := writeConfigFile(t, "{}\n")

	t.Setenv("CIRRUS_LOGGING_LEVEL", "loud")

	_, err := LoadConfigWithEnvOverrides(path)
	if err == nil {
		t.Fatal("expected validation failure for invalid env override")
	}
}
