package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

// errorGate simulates a backend failure (e.g. Redis outage).
type errorGate struct {
	err error
}

func (g errorGate) Allow(context.Context, Category, string) (Decision, error) {
	return Decision{}, g.err
}

func (g errorGate) Reset(context.Context, Category, string) error {
	return g.err
}

func TestDo_PropagatesResult(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	limiter.Configure(CategoryGeneral, 5, time.Minute)

	got, err := Do(context.Background(), limiter.Gate(), CategoryGeneral, "default",
		func(context.Context) (string, error) {
			return "payload", nil
		})
	if err != nil {
		t.Fatalf("Do returned unexpected error: %v", err)
	}
	if got != "payload" {
		t.Errorf("expected action result to pass through, got %q", got)
	}
}

func TestDo_PropagatesActionError(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	limiter.Configure(CategoryGeneral, 5, time.Minute)

	wantErr := errors.New("upstream exploded")
	_, err := Do(context.Background(), limiter.Gate(), CategoryGeneral, "default",
		func(context.Context) (int, error) {
			return 0, wantErr
		})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected action error to pass through, got %v", err)
	}
	if IsRateLimit(err) {
		t.Error("action error must not be classified as a rate limit error")
	}
}

func TestDo_DenialSkipsAction(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	limiter.Configure(CategorySearch, 1, time.Minute)
	limiter.TryAcquire(CategorySearch, "default")

	invoked := false
	_, err := Do(context.Background(), limiter.Gate(), CategorySearch, "default",
		func(context.Context) (string, error) {
			invoked = true
			return "", nil
		})

	if invoked {
		t.Error("action must never run when admission is denied")
	}
	if !IsRateLimit(err) {
		t.Fatalf("expected a rate limit error, got %v", err)
	}

	var rle *RateLimitError
	if !errors.As(err, &rle) {
		t.Fatalf("expected *RateLimitError, got %T", err)
	}
	if rle.Category != CategorySearch || rle.Key != "default" {
		t.Errorf("error should carry the bucket identity, got %s/%s", rle.Category, rle.Key)
	}
	if rle.RetryAfter <= 0 {
		t.Errorf("denial should carry a positive wait, got %v", rle.RetryAfter)
	}
}

func TestDo_PropagatesGateError(t *testing.T) {
	wantErr := errors.New("redis: connection refused")

	invoked := false
	_, err := Do(context.Background(), errorGate{err: wantErr}, CategoryGeneral, "default",
		func(context.Context) (string, error) {
			invoked = true
			return "", nil
		})

	if invoked {
		t.Error("action must not run when the gate itself fails")
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("expected gate error to pass through, got %v", err)
	}
}

func TestRateLimitError_SecondsRoundUp(t *testing.T) {
	tests := []struct {
		retryAfter time.Duration
		wantSecs   int64
	}{
		{300 * time.Millisecond, 1},
		{time.Second, 1},
		{1200 * time.Millisecond, 2},
		{59*time.Second + time.Millisecond, 60},
		{0, 1},
	}

	for _, tt := range tests {
		e := &RateLimitError{Category: CategorySearch, Key: "default", RetryAfter: tt.retryAfter}
		if got := e.RetryAfterSeconds(); got != tt.wantSecs {
			t.Errorf("RetryAfterSeconds(%v) = %d, want %d", tt.retryAfter, got, tt.wantSecs)
		}
	}
}

func TestGate_Decision(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	limiter.Configure(CategoryFeed, 2, time.Minute)
	gate := limiter.Gate()

	dec, err := gate.Allow(context.Background(), CategoryFeed, "default")
	if err != nil {
		t.Fatalf("memory gate must not error: %v", err)
	}
	if !dec.Allowed || dec.Remaining != 1 || dec.RetryAfter != 0 {
		t.Errorf("unexpected decision on admission: %+v", dec)
	}

	gate.Allow(context.Background(), CategoryFeed, "default")
	dec, _ = gate.Allow(context.Background(), CategoryFeed, "default")
	if dec.Allowed {
		t.Fatal("expected denial once the bucket is empty")
	}
	if dec.RetryAfter <= 0 {
		t.Errorf("denial should advertise a positive wait, got %v", dec.RetryAfter)
	}

	if err := gate.Reset(context.Background(), CategoryFeed, "default"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	dec, _ = gate.Allow(context.Background(), CategoryFeed, "default")
	if !dec.Allowed {
		t.Error("expected admission after reset")
	}
}
