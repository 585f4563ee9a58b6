package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"skyline-hq/cirrus/pkg/config"
	"skyline-hq/cirrus/pkg/notifications"
	"skyline-hq/cirrus/pkg/ratelimit"
	"skyline-hq/cirrus/pkg/server"
	"skyline-hq/cirrus/pkg/telemetry/logging"
	"skyline-hq/cirrus/pkg/xrpc"
)

// accessTokenEnv names the environment variable holding the bearer token.
// Session management is handled outside the daemon.
const accessTokenEnv = "CIRRUS_ACCESS_TOKEN"

var runFlags struct {
	logLevel string
	dryRun   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Cirrus daemon",
	Long: `Start the Cirrus daemon with the specified configuration.

The daemon builds the rate limiter from the configured category budgets,
syncs notifications into the local cache on a schedule, prunes old entries,
and serves the admin endpoint.

Examples:
  # Start with default config
  cirrus run

  # Start with custom config
  cirrus run --config /etc/cirrus/config.yaml

  # Validate config without starting
  cirrus run --dry-run`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the daemon")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply flag overrides
	if runFlags.logLevel != "" {
		cfg.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Cirrus v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Build the admission gate: in-process limiter by default, Redis-backed
	// budgets when configured. The watcher and admin endpoint are wired to
	// whichever gate is active.
	metrics := ratelimit.NewMetrics(prometheus.DefaultRegisterer)

	var (
		gate       ratelimit.Gate
		configurer categoryConfigurer
		// adminLimiter backs /limits; nil when budgets live in Redis.
		adminLimiter *ratelimit.Limiter
	)
	if cfg.Redis.Enabled {
		slog.Info("using redis-backed rate limiter", "addr", cfg.Redis.Addr)
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		redisOpts := []ratelimit.RedisOption{ratelimit.WithRedisMetrics(metrics)}
		if cfg.Redis.KeyPrefix != "" {
			redisOpts = append(redisOpts, ratelimit.WithRedisPrefix(cfg.Redis.KeyPrefix))
		}
		redisLimiter, err := ratelimit.NewRedisLimiter(client, redisOpts...)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		applyCategoryLimits(redisLimiter, cfg)
		gate = redisLimiter
		configurer = redisLimiter
	} else {
		limiter := ratelimit.New(ratelimit.WithMetrics(metrics))
		applyCategoryLimits(limiter, cfg)
		gate = limiter.Gate()
		configurer = limiter
		adminLimiter = limiter
	}
	fmt.Printf("✓ Rate limiter initialized (%d categories)\n", len(cfg.Limits.Categories))

	// XRPC client
	var tokens xrpc.TokenSource
	if token := os.Getenv(accessTokenEnv); token != "" {
		tokens = xrpc.StaticTokenSource(token)
	} else {
		slog.Warn("no access token configured, requests will be unauthenticated",
			"env", accessTokenEnv)
	}

	client, err := xrpc.NewClient(xrpc.ClientConfig{
		BaseURL:  cfg.Service.BaseURL,
		Gate:     gate,
		LimitKey: cfg.Service.LimitKey,
		Tokens:   tokens,
		Timeout:  cfg.Service.Timeout,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	fmt.Printf("✓ Client ready for %s\n", cfg.Service.BaseURL)

	// Notification cache
	store, err := buildStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	fmt.Printf("✓ Notification cache initialized (%s)\n", cfg.Notifications.Backend)

	syncer := notifications.NewSyncer(client, store, notifications.SyncerConfig{
		Schedule: cfg.Notifications.SyncSchedule,
		PageSize: cfg.Notifications.PageSize,
	})
	if err := syncer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start syncer: %w", err)
	}
	defer syncer.Stop()

	retention := notifications.NewRetention(store, notifications.RetentionConfig{
		MaxAge:   cfg.Notifications.RetentionAge,
		Schedule: cfg.Notifications.RetentionSchedule,
	})
	if err := retention.Start(ctx); err != nil {
		return fmt.Errorf("failed to start retention: %w", err)
	}
	defer retention.Stop()

	// Config hot reload: category budgets are reapplied to the active gate.
	watcher := config.NewWatcher(cfgFile, logger)
	go func() {
		err := watcher.Watch(ctx, func(updated *config.Config) {
			applyCategoryLimits(configurer, updated)
			slog.Info("category limits reloaded",
				"categories", len(updated.Limits.Categories))
		})
		if err != nil && ctx.Err() == nil {
			slog.Error("config watcher stopped", "error", err)
		}
	}()

	// Admin endpoint
	errChan := make(chan error, 1)
	if cfg.Admin.IsEnabled() {
		adminSrv := server.NewServer(cfg.Admin.ListenAddress, adminLimiter)
		go func() {
			if err := adminSrv.Start(ctx); err != nil {
				errChan <- fmt.Errorf("admin server error: %w", err)
			}
		}()
		fmt.Printf("✓ Admin endpoint: http://%s/healthz\n", cfg.Admin.ListenAddress)
	}

	fmt.Println("\nPress Ctrl+C to stop")

	select {
	case <-ctx.Done():
		fmt.Println("\nShutting down gracefully...")
		return nil
	case err := <-errChan:
		return err
	}
}

// categoryConfigurer is satisfied by both the in-process and Redis limiters.
type categoryConfigurer interface {
	Configure(category ratelimit.Category, maxRequests int64, window time.Duration)
}

// applyCategoryLimits configures the active gate from cfg.
func applyCategoryLimits(c categoryConfigurer, cfg *config.Config) {
	for name, limit := range cfg.Limits.Categories {
		c.Configure(ratelimit.Category(name), limit.MaxRequests, limit.Window)
	}
}

// buildStore selects the notification cache backend from cfg.
func buildStore(cfg *config.Config) (notifications.Store, error) {
	switch cfg.Notifications.Backend {
	case "sqlite":
		store, err := notifications.NewSQLiteStore(cfg.Notifications.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open notification cache: %w", err)
		}
		return store, nil
	case "memory":
		return notifications.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported notifications backend: %s", cfg.Notifications.Backend)
	}
}
