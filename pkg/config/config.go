package config

import "time"

// Config is the root configuration structure for Cirrus.
// It contains all configuration sections for the upstream service endpoint,
// rate limit categories, the notification cache, the optional Redis-backed
// distributed limiter, the admin endpoint, and logging.
type Config struct {
	// Service contains the upstream AT Protocol service endpoint settings.
	Service ServiceConfig `yaml:"service"`

	// Limits contains the per-category rate limit configuration.
	Limits LimitsConfig `yaml:"limits"`

	// Notifications contains the notification cache, sync, and retention
	// settings.
	Notifications NotificationsConfig `yaml:"notifications"`

	// Redis contains settings for the optional distributed rate limiter.
	Redis RedisConfig `yaml:"redis"`

	// Admin contains the local admin HTTP endpoint settings
	// (health and metrics).
	Admin AdminConfig `yaml:"admin"`

	// Logging contains structured logging settings.
	Logging LoggingConfig `yaml:"logging"`
}

// ServiceConfig contains the upstream service endpoint configuration.
type ServiceConfig struct {
	// BaseURL is the base URL of the PDS or AppView the client talks to.
	// Default: "https://bsky.social"
	BaseURL string `yaml:"base_url"`

	// Timeout is the per-request HTTP timeout.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// LimitKey is the bucket key the client charges its calls against.
	// All calls from this process sharing a category share this bucket.
	// Default: "default"
	LimitKey string `yaml:"limit_key"`
}

// LimitsConfig contains the rate limit category table.
type LimitsConfig struct {
	// Categories maps category names to their capacity and window.
	// When empty, the stock table is applied: general 300/5m, feed 100/5m,
	// interactions 500/5m, search 50/1m.
	Categories map[string]CategoryLimit `yaml:"categories"`
}

// CategoryLimit is the capacity and refill window for one category.
type CategoryLimit struct {
	// MaxRequests is the bucket capacity for the category.
	MaxRequests int64 `yaml:"max_requests"`

	// Window is the period over which MaxRequests tokens are earned.
	Window time.Duration `yaml:"window"`
}

// NotificationsConfig contains the notification cache settings.
type NotificationsConfig struct {
	// Backend selects the cache store: "memory" or "sqlite".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// DBPath is the SQLite database file path (sqlite backend only).
	// Default: "data/notifications.db"
	DBPath string `yaml:"db_path"`

	// SyncSchedule is the cron schedule for pulling notifications from the
	// upstream service. Supports standard cron syntax and @every intervals.
	// Default: "@every 5m"
	SyncSchedule string `yaml:"sync_schedule"`

	// PageSize is the number of notifications requested per upstream page,
	// 1 to 100. Default: 50
	PageSize int `yaml:"page_size"`

	// RetentionAge is how long cached notifications are kept before the
	// retention job prunes them. Default: 720h (30 days)
	RetentionAge time.Duration `yaml:"retention_age"`

	// RetentionSchedule is the cron schedule for the pruning job.
	// Default: "0 3 * * *" (daily at 3 AM)
	RetentionSchedule string `yaml:"retention_schedule"`
}

// RedisConfig contains settings for the distributed rate limiter backend.
// When disabled, the in-process limiter is used.
type RedisConfig struct {
	// Enabled switches admission control to the Redis-backed gate.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Addr is the Redis server address ("host:port").
	Addr string `yaml:"addr"`

	// Password is the Redis AUTH password, if any.
	Password string `yaml:"password"`

	// DB is the Redis logical database number.
	DB int `yaml:"db"`

	// KeyPrefix overrides the prefix bucket hashes are stored under.
	// Default: "cirrus:ratelimit:"
	KeyPrefix string `yaml:"key_prefix"`
}

// AdminConfig contains the local admin HTTP endpoint configuration.
type AdminConfig struct {
	// Enabled controls whether the admin endpoint is served. A nil value
	// means unset, so an explicit `enabled: false` survives defaulting.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// ListenAddress is the address the admin endpoint listens on.
	// Default: "127.0.0.1:9464"
	ListenAddress string `yaml:"listen_address"`
}

// IsEnabled reports whether the admin endpoint should be served, treating an
// unset value as the default (true).
func (c *AdminConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`
}
