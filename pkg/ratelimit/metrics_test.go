package ratelimit

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountsDecisions(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	clock := newFakeClock()
	limiter := New(WithClock(clock.Now), WithMetrics(metrics))
	limiter.Configure(CategorySearch, 2, time.Minute)

	limiter.TryAcquire(CategorySearch, "default")
	limiter.TryAcquire(CategorySearch, "default")
	limiter.TryAcquire(CategorySearch, "default")

	allowed := testutil.ToFloat64(metrics.checks.WithLabelValues("search", "allowed"))
	if allowed != 2 {
		t.Errorf("expected 2 allowed checks, got %v", allowed)
	}

	denied := testutil.ToFloat64(metrics.checks.WithLabelValues("search", "denied"))
	if denied != 1 {
		t.Errorf("expected 1 denied check, got %v", denied)
	}

	denials := testutil.ToFloat64(metrics.denials.WithLabelValues("search"))
	if denials != 1 {
		t.Errorf("expected 1 denial, got %v", denials)
	}
}

func TestMetrics_NilRecorderIsSafe(t *testing.T) {
	limiter := New()
	limiter.Configure(CategoryGeneral, 1, time.Minute)

	// No recorder attached; checks must not panic.
	limiter.TryAcquire(CategoryGeneral, "default")
	limiter.TryAcquire(CategoryGeneral, "default")
}
