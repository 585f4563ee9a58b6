package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"skyline-hq/cirrus/pkg/ratelimit"
	"skyline-hq/cirrus/pkg/xrpc"
)

// Source provides pages of notifications from the upstream service.
// *xrpc.Client satisfies this interface.
type Source interface {
	ListNotifications(ctx context.Context, cursor string, limit int) (*xrpc.ListNotificationsResponse, error)
}

// maxSyncPages bounds how many pages a single sync cycle pulls, so a
// deep backlog cannot monopolize the request budget.
const maxSyncPages = 10

// SyncerConfig controls scheduled notification syncing.
type SyncerConfig struct {
	// Schedule is a cron expression for when syncing runs.
	// If empty, the syncer does nothing.
	Schedule string

	// PageSize is the number of notifications requested per page.
	// Default: 50
	PageSize int
}

// Syncer pulls notification pages from a Source on a cron schedule and
// caches them in a Store. Every pull goes through the client's admission
// gate, so a sync cycle stops cleanly when the local budget runs out.
type Syncer struct {
	source  Source
	store   Store
	config  SyncerConfig
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// NewSyncer creates a syncer pulling from source into store.
func NewSyncer(source Source, store Store, cfg SyncerConfig) *Syncer {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}
	return &Syncer{
		source: source,
		store:  store,
		config: cfg,
		cron:   cron.New(),
		logger: slog.Default().With("component", "notifications.syncer"),
	}
}

// Start begins scheduled syncing based on the cron expression.
// If Schedule is empty, Start is a no-op.
func (s *Syncer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.Schedule == "" {
		s.logger.Info("sync schedule not configured, skipping syncer")
		return nil
	}

	if _, err := cron.ParseStandard(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.config.Schedule, err)
	}

	_, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.runSync(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sync: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("notification syncer started",
		"schedule", s.config.Schedule,
		"page_size", s.config.PageSize,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// SyncOnce pulls pages of notifications until the upstream cursor is
// exhausted, the page cap is reached, or the rate limiter denies the
// next pull. It returns the number of notifications cached.
func (s *Syncer) SyncOnce(ctx context.Context) (int, error) {
	var (
		cursor string
		cached int
	)

	for page := 0; page < maxSyncPages; page++ {
		resp, err := s.source.ListNotifications(ctx, cursor, s.config.PageSize)
		if err != nil {
			var rlErr *ratelimit.RateLimitError
			if errors.As(err, &rlErr) {
				// Budget exhausted mid-sync. Keep what we have and
				// let the next cycle pick up the rest.
				s.logger.Warn("sync paused by rate limit",
					"category", rlErr.Category,
					"retry_after", rlErr.RetryAfter,
					"cached", cached,
				)
				return cached, nil
			}
			return cached, fmt.Errorf("failed to list notifications: %w", err)
		}

		batch := make([]*Notification, 0, len(resp.Notifications))
		now := time.Now()
		for _, n := range resp.Notifications {
			batch = append(batch, &Notification{
				URI:          n.URI,
				CID:          n.CID,
				Reason:       n.Reason,
				AuthorDID:    n.Author.DID,
				AuthorHandle: n.Author.Handle,
				IsRead:       n.IsRead,
				IndexedAt:    n.IndexedAt,
				CachedAt:     now,
			})
		}

		if err := s.store.PutBatch(ctx, batch); err != nil {
			return cached, fmt.Errorf("failed to cache notifications: %w", err)
		}
		cached += len(batch)

		if resp.Cursor == "" {
			break
		}
		cursor = resp.Cursor
	}

	return cached, nil
}

// runSync executes a sync cycle.
func (s *Syncer) runSync(ctx context.Context) {
	cached, err := s.SyncOnce(ctx)
	if err != nil {
		s.logger.Error("scheduled sync failed",
			"error", err,
			"cached", cached,
		)
		return
	}

	if cached > 0 {
		s.logger.Info("scheduled sync completed",
			"cached_count", cached,
		)
	} else {
		s.logger.Debug("scheduled sync completed, no new notifications")
	}
}

// Stop stops the syncer and waits for any running cycle to complete.
func (s *Syncer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("notification syncer stopped")
	}
}

// IsRunning returns true if the syncer is running.
func (s *Syncer) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}
