package notifications

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"skyline-hq/cirrus/pkg/ratelimit"
	"skyline-hq/cirrus/pkg/xrpc"
)

// stubSource serves pre-built notification pages and records how many
// pulls were made.
type stubSource struct {
	pages []*xrpc.ListNotificationsResponse
	errs  []error
	calls int
}

func (s *stubSource) ListNotifications(ctx context.Context, cursor string, limit int) (*xrpc.ListNotificationsResponse, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i >= len(s.pages) {
		return &xrpc.ListNotificationsResponse{}, nil
	}
	return s.pages[i], nil
}

func makePage(start, count int, cursor string) *xrpc.ListNotificationsResponse {
	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	page := &xrpc.ListNotificationsResponse{Cursor: cursor}
	for i := start; i < start+count; i++ {
		page.Notifications = append(page.Notifications, xrpc.Notification{
			URI:       fmt.Sprintf("at://did:plc:abc/app.bsky.feed.like/%d", i),
			CID:       fmt.Sprintf("bafy%d", i),
			Reason:    "like",
			Author:    xrpc.Author{DID: "did:plc:abc", Handle: "alice.bsky.social"},
			IndexedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return page
}

func TestSyncer_SyncOnce(t *testing.T) {
	source := &stubSource{
		pages: []*xrpc.ListNotificationsResponse{
			makePage(0, 3, "page2"),
			makePage(3, 2, ""),
		},
	}
	store := NewMemoryStore()
	syncer := NewSyncer(source, store, SyncerConfig{PageSize: 3})

	cached, err := syncer.SyncOnce(context.Background())
	if err != nil {
		t.Fatalf("SyncOnce() error = %v", err)
	}
	if cached != 5 {
		t.Errorf("SyncOnce() = %d, want 5", cached)
	}
	if source.calls != 2 {
		t.Errorf("source called %d times, want 2", source.calls)
	}

	got, err := store.List(context.Background(), ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 5 {
		t.Errorf("store holds %d notifications, want 5", len(got))
	}
}

func TestSyncer_RateLimitDenialIsNotFatal(t *testing.T) {
	source := &stubSource{
		pages: []*xrpc.ListNotificationsResponse{
			makePage(0, 2, "page2"),
		},
		errs: []error{
			nil,
			&ratelimit.RateLimitError{
				Category:   ratelimit.CategoryGeneral,
				Key:        "default",
				RetryAfter: 3 * time.Second,
			},
		},
	}
	store := NewMemoryStore()
	syncer := NewSyncer(source, store, SyncerConfig{})

	cached, err := syncer.SyncOnce(context.Background())
	if err != nil {
		t.Fatalf("SyncOnce() error = %v, want nil on rate limit denial", err)
	}
	if cached != 2 {
		t.Errorf("SyncOnce() = %d, want 2 from the first page", cached)
	}
}

func TestSyncer_SourceErrorIsFatal(t *testing.T) {
	source := &stubSource{
		errs: []error{errors.New("upstream unavailable")},
	}
	syncer := NewSyncer(source, NewMemoryStore(), SyncerConfig{})

	if _, err := syncer.SyncOnce(context.Background()); err == nil {
		t.Error("SyncOnce() should propagate non-rate-limit errors")
	}
}

func TestSyncer_PageCap(t *testing.T) {
	// Endless cursor: every page points at another one.
	pages := make([]*xrpc.ListNotificationsResponse, maxSyncPages+5)
	for i := range pages {
		pages[i] = makePage(i*2, 2, fmt.Sprintf("page%d", i+1))
	}
	source := &stubSource{pages: pages}
	syncer := NewSyncer(source, NewMemoryStore(), SyncerConfig{})

	cached, err := syncer.SyncOnce(context.Background())
	if err != nil {
		t.Fatalf("SyncOnce() error = %v", err)
	}
	if source.calls != maxSyncPages {
		t.Errorf("source called %d times, want %d", source.calls, maxSyncPages)
	}
	if cached != maxSyncPages*2 {
		t.Errorf("SyncOnce() = %d, want %d", cached, maxSyncPages*2)
	}
}

func TestSyncer_StartWithoutSchedule(t *testing.T) {
	syncer := NewSyncer(&stubSource{}, NewMemoryStore(), SyncerConfig{})

	if err := syncer.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if syncer.IsRunning() {
		t.Error("IsRunning() = true, want false when no schedule is configured")
	}
}

func TestSyncer_StartAndStop(t *testing.T) {
	syncer := NewSyncer(&stubSource{}, NewMemoryStore(), SyncerConfig{
		Schedule: "@every 5m",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := syncer.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !syncer.IsRunning() {
		t.Error("IsRunning() = false after Start()")
	}

	syncer.Stop()
	if syncer.IsRunning() {
		t.Error("IsRunning() = true after Stop()")
	}
}
