package ratelimit

import (
	"sync"
	"time"
)

// bucket is the throttling state for one (category, key) pair.
// Invariant: 0 <= tokens <= the category's MaxRequests.
type bucket struct {
	tokens     int64
	lastRefill time.Time
}

// Limiter is a registry of token buckets keyed by (category, key).
//
// Limiter is safe for concurrent use by multiple goroutines; all bucket
// reads and mutations happen under a single mutex, so the check-then-decrement
// sequence in TryAcquire is atomic.
type Limiter struct {
	mu      sync.Mutex
	configs map[Category]Config
	buckets map[string]*bucket

	now     func() time.Time
	metrics *Metrics
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces the limiter's time source. Tests use this to simulate
// elapsed time deterministically.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// WithMetrics attaches a Prometheus recorder for admission decisions.
func WithMetrics(m *Metrics) Option {
	return func(l *Limiter) {
		l.metrics = m
	}
}

// New constructs a Limiter with no categories configured. Checks against an
// unconfigured category are always admitted.
func New(opts ...Option) *Limiter {
	l := &Limiter{
		configs: make(map[Category]Config),
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewWithDefaults constructs a Limiter pre-configured with DefaultLimits.
func NewWithDefaults(opts ...Option) *Limiter {
	l := New(opts...)
	for category, cfg := range DefaultLimits() {
		l.Configure(category, cfg.MaxRequests, cfg.Window)
	}
	return l
}

// Configure establishes (or overwrites) the capacity and window for a
// category. Existing buckets keep their token balance; the new configuration
// applies from the next check.
func (l *Limiter) Configure(category Category, maxRequests int64, window time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.configs[category] = Config{MaxRequests: maxRequests, Window: window}
}

// TryAcquire reports whether a caller may proceed with one action attributed
// to (category, key), consuming one token when it may.
//
// The bucket for an unseen pair is created full. Before the check, the bucket
// passively refills by floor(elapsed/window * MaxRequests) whole tokens,
// capped at MaxRequests. TryAcquire never blocks and performs no I/O.
func (l *Limiter) TryAcquire(category Category, key string) bool {
	allowed, _, _ := l.acquire(category, key)
	return allowed
}

// TryAcquireDefault is TryAcquire against the category's shared DefaultKey
// bucket.
func (l *Limiter) TryAcquireDefault(category Category) bool {
	return l.TryAcquire(category, DefaultKey)
}

// TimeUntilNextSlot estimates how long until the next single token becomes
// available for (category, key). It returns 0 when a call would be admitted
// right now, including when no bucket exists yet. The estimate is rounded up
// to a whole millisecond so callers never retry early.
//
// This is a pure read: it does not refill or otherwise mutate the bucket.
func (l *Limiter) TimeUntilNextSlot(category Category, key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	cfg, ok := l.configs[category]
	if !ok {
		return 0
	}
	b, ok := l.buckets[bucketID(category, key)]
	if !ok || b.tokens > 0 {
		return 0
	}
	return nextSlotWait(cfg, l.now().Sub(b.lastRefill))
}

// Reset discards the bucket for (category, key). The next TryAcquire
// recreates it full. Use this to recover from known-stale throttling state,
// for example after explicit backoff handling elsewhere.
func (l *Limiter) Reset(category Category, key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, bucketID(category, key))
}

// Remaining returns the current token balance for (category, key) without
// consuming or refilling. A pair with no bucket reports full capacity.
// An unconfigured category reports -1 (unlimited).
func (l *Limiter) Remaining(category Category, key string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	cfg, ok := l.configs[category]
	if !ok {
		return -1
	}
	b, ok := l.buckets[bucketID(category, key)]
	if !ok {
		return cfg.MaxRequests
	}
	return b.tokens
}

// acquire performs the refill, check and decrement under one lock. It returns
// the decision, the remaining balance after the decision, and, on denial, the
// estimated wait until the next token.
func (l *Limiter) acquire(category Category, key string) (bool, int64, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cfg, ok := l.configs[category]
	if !ok {
		// No configuration means no limit.
		l.metrics.recordCheck(category, true)
		return true, -1, 0
	}

	now := l.now()
	id := bucketID(category, key)
	b, ok := l.buckets[id]
	if !ok {
		b = &bucket{tokens: cfg.MaxRequests, lastRefill: now}
		l.buckets[id] = b
	} else {
		refill(b, cfg, now)
	}

	if b.tokens > 0 {
		b.tokens--
		l.metrics.recordCheck(category, true)
		return true, b.tokens, 0
	}

	wait := nextSlotWait(cfg, now.Sub(b.lastRefill))
	l.metrics.recordCheck(category, false)
	l.metrics.recordDenial(category, wait)
	return false, 0, wait
}

// refill tops up b by the whole tokens earned since lastRefill. Truncating
// division means fractional credit is never granted; lastRefill only advances
// when at least one token was added, so partial progress toward the next
// token is preserved across calls.
//
// The arithmetic stays in nanoseconds so any positive window works, however
// short. A full window elapsed short-circuits to capacity, which also keeps
// the product below overflow range.
func refill(b *bucket, cfg Config, now time.Time) {
	elapsed := now.Sub(b.lastRefill)
	if elapsed <= 0 || cfg.Window <= 0 {
		return
	}
	var replenished int64
	if elapsed >= cfg.Window {
		replenished = cfg.MaxRequests
	} else {
		replenished = int64(elapsed) * cfg.MaxRequests / int64(cfg.Window)
	}
	if replenished <= 0 {
		return
	}
	b.tokens += replenished
	if b.tokens > cfg.MaxRequests {
		b.tokens = cfg.MaxRequests
	}
	b.lastRefill = now
}

// nextSlotWait computes window/MaxRequests - elapsed, floored at 0 and
// rounded up to a whole millisecond.
func nextSlotWait(cfg Config, elapsed time.Duration) time.Duration {
	if cfg.MaxRequests <= 0 {
		return 0
	}
	wait := cfg.Window/time.Duration(cfg.MaxRequests) - elapsed
	if wait <= 0 {
		return 0
	}
	if rem := wait % time.Millisecond; rem != 0 {
		wait += time.Millisecond - rem
	}
	return wait
}

func bucketID(category Category, key string) string {
	return string(category) + ":" + key
}
