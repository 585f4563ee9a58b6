// Package notifications provides the local notification metadata cache.
//
// # Overview
//
// Cirrus keeps a local copy of notification metadata so unread counts and
// recent activity are available without an upstream round trip (and without
// spending rate limit budget). The cache is written by the Syncer, which
// periodically pulls pages of notifications through the rate-limited XRPC
// client, and trimmed by Retention, which prunes aged rows on a schedule.
//
// # Backends
//
// Two Store implementations share the same contract:
//
//   - MemoryStore: map-backed, nothing survives the process. Used in tests
//     and ephemeral runs.
//   - SQLiteStore: durable single-file storage using the pure-Go SQLite
//     driver with WAL journaling. Notifications upsert on URI, so re-syncing
//     overlapping pages is idempotent.
//
// Both are safe for concurrent use.
package notifications
