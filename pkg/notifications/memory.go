package notifications

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store using an in-process map. All data is lost
// when the process exits. It is safe for concurrent use.
type MemoryStore struct {
	mu            sync.RWMutex
	notifications map[string]*Notification
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		notifications: make(map[string]*Notification),
	}
}

// Put upserts a single notification by URI.
func (m *MemoryStore) Put(ctx context.Context, n *Notification) error {
	if n == nil || n.URI == "" {
		return fmt.Errorf("notification URI cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(n)
	return nil
}

// PutBatch upserts a batch of notifications by URI.
func (m *MemoryStore) PutBatch(ctx context.Context, ns []*Notification) error {
	for _, n := range ns {
		if n == nil || n.URI == "" {
			return fmt.Errorf("notification URI cannot be empty")
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range ns {
		m.put(n)
	}
	return nil
}

// put stores a copy so callers cannot mutate cached rows. Caller holds mu.
func (m *MemoryStore) put(n *Notification) {
	clone := *n
	if clone.CachedAt.IsZero() {
		clone.CachedAt = time.Now()
	}
	m.notifications[clone.URI] = &clone
}

// List returns cached notifications, newest first.
func (m *MemoryStore) List(ctx context.Context, opts ListOptions) ([]*Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Notification, 0, len(m.notifications))
	for _, n := range m.notifications {
		if opts.UnreadOnly && n.IsRead {
			continue
		}
		clone := *n
		out = append(out, &clone)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].IndexedAt.After(out[j].IndexedAt)
	})

	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

// UnreadCount returns the number of cached unread notifications.
func (m *MemoryStore) UnreadCount(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64
	for _, n := range m.notifications {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}

// MarkAllRead flags every notification indexed at or before seenAt as read.
func (m *MemoryStore) MarkAllRead(ctx context.Context, seenAt time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var changed int64
	for _, n := range m.notifications {
		if !n.IsRead && !n.IndexedAt.After(seenAt) {
			n.IsRead = true
			changed++
		}
	}
	return changed, nil
}

// Prune removes notifications cached before olderThan.
func (m *MemoryStore) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for uri, n := range m.notifications {
		if n.CachedAt.Before(olderThan) {
			delete(m.notifications, uri)
			deleted++
		}
	}
	return deleted, nil
}

// Close is a no-op for the memory store.
func (m *MemoryStore) Close() error {
	return nil
}
