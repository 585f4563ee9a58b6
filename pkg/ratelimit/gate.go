package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of one admission check.
type Decision struct {
	// Allowed reports whether the call may proceed.
	Allowed bool

	// Remaining is the token balance after the decision was applied.
	// -1 means the category is not limited.
	Remaining int64

	// RetryAfter is 0 when allowed; on denial it is the estimated wait until
	// the next single token becomes available.
	RetryAfter time.Duration
}

// Gate is the admission-control interface shared by the in-process Limiter
// and the Redis-backed RedisLimiter.
//
// Allow consumes one token on admission. Reset discards the bucket for the
// pair so the next check starts from a full bucket.
type Gate interface {
	Allow(ctx context.Context, category Category, key string) (Decision, error)
	Reset(ctx context.Context, category Category, key string) error
}

// memoryGate adapts Limiter to the Gate interface. The in-process check is
// synchronous and instantaneous, so the context is unused and the error is
// always nil.
type memoryGate struct {
	l *Limiter
}

// Gate returns a Gate view of the limiter for call sites written against the
// backend-agnostic interface.
func (l *Limiter) Gate() Gate {
	return memoryGate{l: l}
}

func (g memoryGate) Allow(_ context.Context, category Category, key string) (Decision, error) {
	allowed, remaining, wait := g.l.acquire(category, key)
	return Decision{Allowed: allowed, Remaining: remaining, RetryAfter: wait}, nil
}

func (g memoryGate) Reset(_ context.Context, category Category, key string) error {
	g.l.Reset(category, key)
	return nil
}
