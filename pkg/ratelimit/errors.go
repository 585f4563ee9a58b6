package ratelimit

import (
	"errors"
	"fmt"
	"time"
)

// RateLimitError is returned by Do when the admission check denies a call.
// It carries the identity of the exhausted bucket and the estimated wait
// until the next token. Denial is a recoverable condition; the caller owns
// the retry, surface-to-user, or drop decision.
type RateLimitError struct {
	Category   Category
	Key        string
	RetryAfter time.Duration
}

// Error reports the wait in whole seconds, rounded up, for user-facing
// messaging.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s/%s: retry in %ds",
		e.Category, e.Key, e.RetryAfterSeconds())
}

// RetryAfterSeconds returns the wait rounded up to whole seconds. A denial
// always reports at least one second so callers never retry early.
func (e *RateLimitError) RetryAfterSeconds() int64 {
	secs := int64((e.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// IsRateLimit reports whether err is (or wraps) a RateLimitError.
func IsRateLimit(err error) bool {
	var rle *RateLimitError
	return errors.As(err, &rle)
}
