package config

import "time"

// Default values for configuration fields.
const (
	// Service defaults
	DefaultBaseURL  = "https://bsky.social"
	DefaultTimeout  = 30 * time.Second
	DefaultLimitKey = "default"

	// Category defaults. The values reproduce the upstream per-client quotas
	// and must stay in sync with ratelimit.DefaultLimits.
	DefaultGeneralMaxRequests      = int64(300)
	DefaultGeneralWindow           = 5 * time.Minute
	DefaultFeedMaxRequests         = int64(100)
	DefaultFeedWindow              = 5 * time.Minute
	DefaultInteractionsMaxRequests = int64(500)
	DefaultInteractionsWindow      = 5 * time.Minute
	DefaultSearchMaxRequests       = int64(50)
	DefaultSearchWindow            = time.Minute

	// Notification defaults
	DefaultNotificationsBackend   = "sqlite"
	DefaultNotificationsDBPath    = "data/notifications.db"
	DefaultSyncSchedule           = "@every 5m"
	DefaultPageSize               = 50
	DefaultRetentionAge           = 720 * time.Hour
	DefaultRetentionSchedule      = "0 3 * * *"

	// Redis defaults
	DefaultRedisKeyPrefix = "cirrus:ratelimit:"

	// Admin defaults
	DefaultAdminEnabled       = true
	DefaultAdminListenAddress = "127.0.0.1:9464"

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// DefaultCategories returns the stock category table as config entries.
func DefaultCategories() map[string]CategoryLimit {
	return map[string]CategoryLimit{
		"general":      {MaxRequests: DefaultGeneralMaxRequests, Window: DefaultGeneralWindow},
		"feed":         {MaxRequests: DefaultFeedMaxRequests, Window: DefaultFeedWindow},
		"interactions": {MaxRequests: DefaultInteractionsMaxRequests, Window: DefaultInteractionsWindow},
		"search":       {MaxRequests: DefaultSearchMaxRequests, Window: DefaultSearchWindow},
	}
}

// ApplyDefaults fills in default values for any unset configuration fields.
// It is called by LoadConfig after parsing and before validation.
func ApplyDefaults(cfg *Config) {
	if cfg.Service.BaseURL == "" {
		cfg.Service.BaseURL = DefaultBaseURL
	}
	if cfg.Service.Timeout == 0 {
		cfg.Service.Timeout = DefaultTimeout
	}
	if cfg.Service.LimitKey == "" {
		cfg.Service.LimitKey = DefaultLimitKey
	}

	if len(cfg.Limits.Categories) == 0 {
		cfg.Limits.Categories = DefaultCategories()
	}

	if cfg.Notifications.Backend == "" {
		cfg.Notifications.Backend = DefaultNotificationsBackend
	}
	if cfg.Notifications.DBPath == "" {
		cfg.Notifications.DBPath = DefaultNotificationsDBPath
	}
	if cfg.Notifications.SyncSchedule == "" {
		cfg.Notifications.SyncSchedule = DefaultSyncSchedule
	}
	if cfg.Notifications.PageSize == 0 {
		cfg.Notifications.PageSize = DefaultPageSize
	}
	if cfg.Notifications.RetentionAge == 0 {
		cfg.Notifications.RetentionAge = DefaultRetentionAge
	}
	if cfg.Notifications.RetentionSchedule == "" {
		cfg.Notifications.RetentionSchedule = DefaultRetentionSchedule
	}

	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	if cfg.Admin.Enabled == nil {
		enabled := DefaultAdminEnabled
		cfg.Admin.Enabled = &enabled
	}
	if cfg.Admin.ListenAddress == "" {
		cfg.Admin.ListenAddress = DefaultAdminListenAddress
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
}
