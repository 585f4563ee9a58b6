package ratelimit

import (
	"context"
	_ "embed"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

//go:embed token_bucket.lua
var tokenBucketScript string

// DefaultRedisPrefix is the key prefix RedisLimiter uses unless overridden
// with WithRedisPrefix.
const DefaultRedisPrefix = "cirrus:ratelimit:"

// RedisLimiter is a Gate whose bucket state lives in Redis, enforcing a
// single shared budget per (category, key) across multiple client instances.
//
// The read/compute/write cycle runs atomically in a Lua script with the same
// integer refill semantics as the in-process Limiter. Category configuration
// is local to each instance; only bucket state is shared, so all instances
// must be configured with the same category table.
//
// Redis errors (including context cancellation) are returned to the caller;
// this type does not impose a fail-open or fail-closed policy.
type RedisLimiter struct {
	client    *redis.Client
	scriptSHA string
	prefix    string
	now       func() time.Time
	metrics   *Metrics

	mu      sync.RWMutex
	configs map[Category]Config
}

// RedisOption configures a RedisLimiter.
type RedisOption func(*RedisLimiter)

// WithRedisPrefix overrides the key prefix bucket hashes are stored under.
func WithRedisPrefix(prefix string) RedisOption {
	return func(r *RedisLimiter) {
		r.prefix = prefix
	}
}

// WithRedisClock replaces the time source used for refill arithmetic.
func WithRedisClock(now func() time.Time) RedisOption {
	return func(r *RedisLimiter) {
		r.now = now
	}
}

// WithRedisMetrics attaches a Prometheus recorder for admission decisions.
func WithRedisMetrics(m *Metrics) RedisOption {
	return func(r *RedisLimiter) {
		r.metrics = m
	}
}

// NewRedisLimiter constructs a RedisLimiter, verifies connectivity, and loads
// the admission script into the Redis script cache.
func NewRedisLimiter(client *redis.Client, opts ...RedisOption) (*RedisLimiter, error) {
	r := &RedisLimiter{
		client:  client,
		prefix:  DefaultRedisPrefix,
		now:     time.Now,
		configs: make(map[Category]Config),
	}
	for _, opt := range opts {
		opt(r)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	sha, err := client.ScriptLoad(ctx, tokenBucketScript).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load admission script: %w", err)
	}
	r.scriptSHA = sha

	return r, nil
}

// NewRedisLimiterWithDefaults is NewRedisLimiter followed by configuring the
// stock category table.
func NewRedisLimiterWithDefaults(client *redis.Client, opts ...RedisOption) (*RedisLimiter, error) {
	r, err := NewRedisLimiter(client, opts...)
	if err != nil {
		return nil, err
	}
	for category, cfg := range DefaultLimits() {
		r.Configure(category, cfg.MaxRequests, cfg.Window)
	}
	return r, nil
}

// Configure establishes (or overwrites) the capacity and window for a
// category on this instance.
func (r *RedisLimiter) Configure(category Category, maxRequests int64, window time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[category] = Config{MaxRequests: maxRequests, Window: window}
}

// Allow performs one admission check for (category, key), consuming one token
// on admission. An unconfigured category is always admitted.
func (r *RedisLimiter) Allow(ctx context.Context, category Category, key string) (Decision, error) {
	r.mu.RLock()
	cfg, ok := r.configs[category]
	r.mu.RUnlock()
	if !ok {
		r.metrics.recordCheck(category, true)
		return Decision{Allowed: true, Remaining: -1}, nil
	}

	// The script works in whole milliseconds; a positive sub-millisecond
	// window would truncate to zero and divide by it, so clamp.
	windowMs := cfg.Window.Milliseconds()
	if windowMs < 1 {
		windowMs = 1
	}

	cmd := r.client.EvalSha(ctx, r.scriptSHA, []string{r.bucketKey(category, key)},
		cfg.MaxRequests,
		windowMs,
		r.now().UnixMilli(),
	)
	result, err := cmd.Result()
	if err != nil {
		return Decision{}, fmt.Errorf("admission check failed: %w", err)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 3 {
		return Decision{}, fmt.Errorf("unexpected admission script reply: %v", result)
	}

	allowed, _ := values[0].(int64)
	remaining, _ := values[1].(int64)
	retryAfterMs, _ := values[2].(int64)

	dec := Decision{
		Allowed:    allowed == 1,
		Remaining:  remaining,
		RetryAfter: time.Duration(retryAfterMs) * time.Millisecond,
	}
	r.metrics.recordCheck(category, dec.Allowed)
	if !dec.Allowed {
		r.metrics.recordDenial(category, dec.RetryAfter)
	}
	return dec, nil
}

// Reset discards the shared bucket for (category, key); the next check on any
// instance recreates it full.
func (r *RedisLimiter) Reset(ctx context.Context, category Category, key string) error {
	return r.client.Del(ctx, r.bucketKey(category, key)).Err()
}

func (r *RedisLimiter) bucketKey(category Category, key string) string {
	return r.prefix + string(category) + ":" + key
}
