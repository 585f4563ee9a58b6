package ratelimit

import "context"

// Do runs fn behind a single admission check against gate.
//
// The check happens synchronously before fn starts; the decision is never
// deferred past a suspension point, so two concurrently initiated calls
// cannot both observe the same token. On denial fn is not invoked and Do
// returns a *RateLimitError carrying the estimated wait. On admission Do
// returns exactly what fn produced, including a propagated failure. Do never
// retries, queues, or waits.
//
// A non-nil error from the gate itself (for example a Redis outage) is
// returned unchanged; whether to fail open in that case is the caller's
// policy, not Do's.
func Do[T any](ctx context.Context, gate Gate, category Category, key string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	dec, err := gate.Allow(ctx, category, key)
	if err != nil {
		return zero, err
	}
	if !dec.Allowed {
		return zero, &RateLimitError{
			Category:   category,
			Key:        key,
			RetryAfter: dec.RetryAfter,
		}
	}
	return fn(ctx)
}
