package notifications

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore implements Store using SQLite for persistence. It survives
// process restarts and is suitable for single-instance deployments.
//
// SQLiteStore uses a write-ahead log (WAL) for better concurrent performance.
type SQLiteStore struct {
	db        *sql.DB
	dbPath    string
	mu        sync.RWMutex
	closeOnce sync.Once

	// preparedStatements contains pre-compiled SQL statements for performance
	putStmt         *sql.Stmt
	unreadStmt      *sql.Stmt
	markAllReadStmt *sql.Stmt
	pruneStmt       *sql.Stmt
}

// SQLiteStoreConfig configures the SQLite store.
type SQLiteStoreConfig struct {
	// DBPath is the path to the SQLite database file. Parent directories
	// are created if missing.
	DBPath string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewSQLiteStore creates a new SQLite store with default settings.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithConfig(SQLiteStoreConfig{
		DBPath:      dbPath,
		BusyTimeout: 5 * time.Second,
	})
}

// NewSQLiteStoreWithConfig creates a new SQLite store with custom configuration.
func NewSQLiteStoreWithConfig(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Open database with WAL mode and busy timeout
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.DBPath, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{
		db:     db,
		dbPath: cfg.DBPath,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := store.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return store, nil
}

// initSchema creates the database schema if it doesn't exist.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS notifications (
		uri TEXT NOT NULL PRIMARY KEY,
		cid TEXT NOT NULL,
		reason TEXT NOT NULL,
		author_did TEXT NOT NULL,
		author_handle TEXT NOT NULL,
		is_read INTEGER NOT NULL DEFAULT 0,
		indexed_at INTEGER NOT NULL,
		cached_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_indexed_at ON notifications(indexed_at);
	CREATE INDEX IF NOT EXISTS idx_cached_at ON notifications(cached_at);
	CREATE INDEX IF NOT EXISTS idx_is_read ON notifications(is_read);
	`

	_, err := s.db.Exec(schema)
	return err
}

// prepareStatements prepares SQL statements for reuse.
func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.putStmt, err = s.db.Prepare(`
		INSERT INTO notifications (uri, cid, reason, author_did, author_handle, is_read, indexed_at, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (uri) DO UPDATE SET
			cid = excluded.cid,
			reason = excluded.reason,
			author_did = excluded.author_did,
			author_handle = excluded.author_handle,
			is_read = excluded.is_read,
			indexed_at = excluded.indexed_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare put statement: %w", err)
	}

	s.unreadStmt, err = s.db.Prepare(`
		SELECT COUNT(*) FROM notifications WHERE is_read = 0
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare unread statement: %w", err)
	}

	s.markAllReadStmt, err = s.db.Prepare(`
		UPDATE notifications SET is_read = 1
		WHERE is_read = 0 AND indexed_at <= ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare mark-read statement: %w", err)
	}

	s.pruneStmt, err = s.db.Prepare(`
		DELETE FROM notifications WHERE cached_at < ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare prune statement: %w", err)
	}

	return nil
}

// Put upserts a single notification by URI.
func (s *SQLiteStore) Put(ctx context.Context, n *Notification) error {
	if err := validateNotification(n); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.put(ctx, s.putStmt, n)
}

// PutBatch upserts a batch of notifications inside a single transaction.
func (s *SQLiteStore) PutBatch(ctx context.Context, ns []*Notification) error {
	for _, n := range ns {
		if err := validateNotification(n); err != nil {
			return err
		}
	}
	if len(ns) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt := tx.StmtContext(ctx, s.putStmt)
	for _, n := range ns {
		if err := s.put(ctx, stmt, n); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) put(ctx context.Context, stmt *sql.Stmt, n *Notification) error {
	cachedAt := n.CachedAt
	if cachedAt.IsZero() {
		cachedAt = time.Now()
	}

	_, err := stmt.ExecContext(ctx,
		n.URI,
		n.CID,
		n.Reason,
		n.AuthorDID,
		n.AuthorHandle,
		boolToInt(n.IsRead),
		n.IndexedAt.Unix(),
		cachedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}
	return nil
}

// List returns cached notifications, newest first.
func (s *SQLiteStore) List(ctx context.Context, opts ListOptions) ([]*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT uri, cid, reason, author_did, author_handle, is_read, indexed_at, cached_at
		FROM notifications
	`
	if opts.UnreadOnly {
		query += " WHERE is_read = 0"
	}
	query += " ORDER BY indexed_at DESC"

	var args []any
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var out []*Notification
	for rows.Next() {
		var (
			n         Notification
			isRead    int
			indexedAt int64
			cachedAt  int64
		)
		if err := rows.Scan(&n.URI, &n.CID, &n.Reason, &n.AuthorDID, &n.AuthorHandle, &isRead, &indexedAt, &cachedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		n.IsRead = isRead != 0
		n.IndexedAt = time.Unix(indexedAt, 0)
		n.CachedAt = time.Unix(cachedAt, 0)
		out = append(out, &n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

// UnreadCount returns the number of cached unread notifications.
func (s *SQLiteStore) UnreadCount(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	if err := s.unreadStmt.QueryRowContext(ctx).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkAllRead flags every notification indexed at or before seenAt as read.
func (s *SQLiteStore) MarkAllRead(ctx context.Context, seenAt time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.markAllReadStmt.ExecContext(ctx, seenAt.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	changed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return changed, nil
}

// Prune removes notifications cached before olderThan.
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.pruneStmt.ExecContext(ctx, olderThan.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune notifications: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// Close releases any resources held by the store.
// Close is idempotent and safe to call multiple times.
func (s *SQLiteStore) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		if s.putStmt != nil {
			s.putStmt.Close()
		}
		if s.unreadStmt != nil {
			s.unreadStmt.Close()
		}
		if s.markAllReadStmt != nil {
			s.markAllReadStmt.Close()
		}
		if s.pruneStmt != nil {
			s.pruneStmt.Close()
		}

		if s.db != nil {
			// Run final checkpoint
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
	})

	return closeErr
}

func validateNotification(n *Notification) error {
	if n == nil {
		return fmt.Errorf("notification cannot be nil")
	}
	if n.URI == "" {
		return fmt.Errorf("notification URI cannot be empty")
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
