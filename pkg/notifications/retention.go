package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RetentionConfig controls scheduled pruning of the notification cache.
type RetentionConfig struct {
	// MaxAge is how long a cached notification is kept before pruning.
	// Zero disables pruning.
	MaxAge time.Duration

	// Schedule is a cron expression for when pruning runs.
	// If empty, the scheduler does nothing.
	Schedule string
}

// Retention prunes old cached notifications on a cron schedule.
type Retention struct {
	store   Store
	config  RetentionConfig
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// NewRetention creates a retention scheduler over the given store.
func NewRetention(store Store, cfg RetentionConfig) *Retention {
	return &Retention{
		store:  store,
		config: cfg,
		cron:   cron.New(),
		logger: slog.Default().With("component", "notifications.retention"),
	}
}

// Start begins scheduled pruning based on the cron expression.
//
// Common cron expressions:
//   - "0 3 * * *"    - Daily at 3 AM
//   - "0 */6 * * *"  - Every 6 hours
//
// If Schedule is empty or MaxAge is zero, Start is a no-op.
func (r *Retention) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.config.Schedule == "" || r.config.MaxAge <= 0 {
		r.logger.Info("retention not configured, skipping scheduler")
		return nil
	}

	// Validate cron expression
	if _, err := cron.ParseStandard(r.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", r.config.Schedule, err)
	}

	_, err := r.cron.AddFunc(r.config.Schedule, func() {
		r.runPruning(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	r.cron.Start()
	r.running = true

	r.logger.Info("retention scheduler started",
		"schedule", r.config.Schedule,
		"max_age", r.config.MaxAge,
	)

	go func() {
		<-ctx.Done()
		r.Stop()
	}()

	return nil
}

// RunOnce executes a single pruning cycle immediately.
func (r *Retention) RunOnce(ctx context.Context) (int64, error) {
	return r.store.Prune(ctx, time.Now().Add(-r.config.MaxAge))
}

// runPruning executes a pruning cycle.
func (r *Retention) runPruning(ctx context.Context) {
	deleted, err := r.RunOnce(ctx)
	if err != nil {
		r.logger.Error("scheduled pruning failed",
			"error", err,
		)
		return
	}

	if deleted > 0 {
		r.logger.Info("scheduled pruning completed",
			"deleted_count", deleted,
		)
	} else {
		r.logger.Debug("scheduled pruning completed, no notifications deleted")
	}
}

// Stop stops the scheduler and waits for any running jobs to complete.
func (r *Retention) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cron != nil && r.running {
		ctx := r.cron.Stop()
		<-ctx.Done() // Wait for running jobs to finish
		r.running = false
		r.logger.Info("retention scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (r *Retention) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.running
}

// NextRun returns the next scheduled pruning time.
func (r *Retention) NextRun() *time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cron == nil {
		return nil
	}

	entries := r.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
