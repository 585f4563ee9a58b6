package notifications

import (
	"context"
	"time"
)

// Notification is the cached metadata for one upstream notification.
type Notification struct {
	// URI is the at:// URI of the notification's subject record. It is the
	// cache key; writes upsert on it.
	URI string

	// CID is the content hash of the subject record.
	CID string

	// Reason is why the notification was generated
	// (like, repost, follow, mention, reply, quote).
	Reason string

	// AuthorDID is the DID of the account that triggered the notification.
	AuthorDID string

	// AuthorHandle is the handle of that account at sync time.
	AuthorHandle string

	// IsRead reports whether the notification was read upstream.
	IsRead bool

	// IndexedAt is when the upstream service indexed the notification.
	IndexedAt time.Time

	// CachedAt is when this row was last written locally.
	CachedAt time.Time
}

// ListOptions narrows List results.
type ListOptions struct {
	// Limit caps the number of returned notifications; 0 means no cap.
	Limit int

	// UnreadOnly restricts results to unread notifications.
	UnreadOnly bool
}

// Store is the notification cache contract. Implementations must be safe for
// concurrent use.
type Store interface {
	// Put upserts a single notification by URI.
	Put(ctx context.Context, n *Notification) error

	// PutBatch upserts a batch of notifications by URI.
	PutBatch(ctx context.Context, ns []*Notification) error

	// List returns cached notifications, newest (by IndexedAt) first.
	List(ctx context.Context, opts ListOptions) ([]*Notification, error)

	// UnreadCount returns the number of cached unread notifications.
	UnreadCount(ctx context.Context) (int64, error)

	// MarkAllRead flags every notification indexed at or before seenAt as
	// read, mirroring an upstream updateSeen call. It returns the number of
	// rows changed.
	MarkAllRead(ctx context.Context, seenAt time.Time) (int64, error)

	// Prune removes notifications cached before olderThan and returns the
	// number of rows deleted.
	Prune(ctx context.Context, olderThan time.Time) (int64, error)

	// Close releases any resources held by the store.
	Close() error
}
