// Package ratelimit provides client-side admission control for outbound API
// calls, partitioned by call category and an optional per-category key.
//
// # Overview
//
// The package implements a token bucket per (category, key) pair:
//
//   - Each pair owns a bucket holding up to MaxRequests tokens.
//   - A bucket is created lazily, full, on first use of a pair.
//   - Tokens replenish passively: on each check the limiter computes
//     floor(elapsed/window * MaxRequests) whole tokens and adds them, capped
//     at MaxRequests. There is no background refill task; correctness depends
//     only on elapsed wall-clock time at the moment of the call.
//   - Each admitted call consumes exactly one token.
//
// Categories are independent axes: the same key in two categories maintains
// two independent buckets. Callers that do not pass a key share the bucket
// for DefaultKey within their category.
//
// # Core Types
//
// Config defines the policy for one category:
//
//   - MaxRequests: bucket capacity, also the maximum burst
//   - Window: the period over which MaxRequests tokens are earned
//
// Limiter is an explicitly constructed registry of buckets. It is not a
// package-level singleton; construct one per process (or per test) and pass
// it to the call sites that need it.
//
// # Admission
//
// TryAcquire is synchronous and non-blocking: it performs no I/O, never
// waits, and returns immediately. Denial is an expected, recoverable outcome.
// TimeUntilNextSlot is advisory; it estimates when the next single token
// becomes available, not when the bucket can absorb a burst. Callers own
// their retry and backoff policy.
//
// # Guarded Calls
//
// Do wraps a single action behind one admission check:
//
//	out, err := ratelimit.Do(ctx, gate, ratelimit.CategorySearch, key, fn)
//
// When the check is denied, fn is never invoked and the returned error is a
// *RateLimitError carrying the estimated wait. When admitted, Do returns
// exactly what fn produced. Do never retries and never queues.
//
// # Backends
//
// Two Gate implementations share the same admission semantics:
//
//   - Limiter (via its Gate method): in-process state, suitable for a single
//     instance. Safe for concurrent use; the registry read-modify-write is
//     protected by a mutex.
//   - RedisLimiter: state shared through Redis for multi-instance
//     deployments. The read/compute/write cycle runs atomically in a Lua
//     script. Redis errors are returned to the caller, which decides between
//     failing open and failing closed.
//
// # Time
//
// Refill arithmetic depends on a time source. WithClock injects one so tests
// can simulate elapsed time deterministically instead of sleeping.
package ratelimit
