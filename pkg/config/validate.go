package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g., "service.base_url").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateService(&cfg.Service)...)
	errs = append(errs, validateLimits(&cfg.Limits)...)
	errs = append(errs, validateNotifications(&cfg.Notifications)...)
	errs = append(errs, validateRedis(&cfg.Redis)...)
	errs = append(errs, validateAdmin(&cfg.Admin)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateService(cfg *ServiceConfig) []FieldError {
	var errs []FieldError

	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, FieldError{
			Field:   "service.base_url",
			Message: fmt.Sprintf("must be a valid http(s) URL, got %q", cfg.BaseURL),
		})
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "service.timeout",
			Message: "must be positive",
		})
	}
	if cfg.LimitKey == "" {
		errs = append(errs, FieldError{
			Field:   "service.limit_key",
			Message: "must not be empty",
		})
	}
	return errs
}

func validateLimits(cfg *LimitsConfig) []FieldError {
	var errs []FieldError

	for name, limit := range cfg.Categories {
		if limit.MaxRequests <= 0 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("limits.categories.%s.max_requests", name),
				Message: "must be positive",
			})
		}
		if limit.Window <= 0 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("limits.categories.%s.window", name),
				Message: "must be positive",
			})
		}
	}
	return errs
}

func validateNotifications(cfg *NotificationsConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "memory", "sqlite":
	default:
		errs = append(errs, FieldError{
			Field:   "notifications.backend",
			Message: fmt.Sprintf("must be \"memory\" or \"sqlite\", got %q", cfg.Backend),
		})
	}
	if cfg.Backend == "sqlite" && cfg.DBPath == "" {
		errs = append(errs, FieldError{
			Field:   "notifications.db_path",
			Message: "required for the sqlite backend",
		})
	}
	if cfg.PageSize < 1 || cfg.PageSize > 100 {
		errs = append(errs, FieldError{
			Field:   "notifications.page_size",
			Message: fmt.Sprintf("must be between 1 and 100, got %d", cfg.PageSize),
		})
	}
	if cfg.RetentionAge <= 0 {
		errs = append(errs, FieldError{
			Field:   "notifications.retention_age",
			Message: "must be positive",
		})
	}
	if err := validateSchedule(cfg.SyncSchedule); err != nil {
		errs = append(errs, FieldError{
			Field:   "notifications.sync_schedule",
			Message: err.Error(),
		})
	}
	if err := validateSchedule(cfg.RetentionSchedule); err != nil {
		errs = append(errs, FieldError{
			Field:   "notifications.retention_schedule",
			Message: err.Error(),
		})
	}
	return errs
}

func validateSchedule(schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %v", schedule, err)
	}
	return nil
}

func validateRedis(cfg *RedisConfig) []FieldError {
	var errs []FieldError

	if cfg.Enabled && cfg.Addr == "" {
		errs = append(errs, FieldError{
			Field:   "redis.addr",
			Message: "required when redis is enabled",
		})
	}
	return errs
}

func validateAdmin(cfg *AdminConfig) []FieldError {
	var errs []FieldError

	if cfg.IsEnabled() {
		if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
			errs = append(errs, FieldError{
				Field:   "admin.listen_address",
				Message: fmt.Sprintf("must be host:port, got %q", cfg.ListenAddress),
			})
		}
	}
	return errs
}

func validateLogging(cfg *LoggingConfig) []FieldError {
	var errs []FieldError

	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "logging.level",
			Message: fmt.Sprintf("must be one of debug, info, warn, error; got %q", cfg.Level),
		})
	}
	switch cfg.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "logging.format",
			Message: fmt.Sprintf("must be \"json\" or \"text\", got %q", cfg.Format),
		})
	}
	return errs
}
