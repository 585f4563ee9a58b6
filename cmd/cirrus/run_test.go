package main

import (
	"testing"
	"time"

	"skyline-hq/cirrus/pkg/config"
	"skyline-hq/cirrus/pkg/ratelimit"
)

// recordingConfigurer captures Configure calls so tests can assert the
// reload path reaches whichever gate is active.
type recordingConfigurer struct {
	configured map[ratelimit.Category]config.CategoryLimit
}

func (r *recordingConfigurer) Configure(category ratelimit.Category, maxRequests int64, window time.Duration) {
	if r.configured == nil {
		r.configured = make(map[ratelimit.Category]config.CategoryLimit)
	}
	r.configured[category] = config.CategoryLimit{MaxRequests: maxRequests, Window: window}
}

func TestApplyCategoryLimits(t *testing.T) {
	cfg := &config.Config{}
	cfg.Limits.Categories = map[string]config.CategoryLimit{
		"general": {MaxRequests: 30, Window: time.Minute},
		"search":  {MaxRequests: 5, Window: 30 * time.Second},
	}

	rec := &recordingConfigurer{}
	applyCategoryLimits(rec, cfg)

	if len(rec.configured) != 2 {
		t.Fatalf("expected 2 categories configured, got %d", len(rec.configured))
	}
	if got := rec.configured[ratelimit.CategorySearch]; got.MaxRequests != 5 || got.Window != 30*time.Second {
		t.Errorf("search configured as %+v", got)
	}
	if got := rec.configured[ratelimit.CategoryGeneral]; got.MaxRequests != 30 || got.Window != time.Minute {
		t.Errorf("general configured as %+v", got)
	}
}

func TestApplyCategoryLimits_ReloadOverwrites(t *testing.T) {
	limiter := ratelimit.New()

	cfg := &config.Config{}
	cfg.Limits.Categories = map[string]config.CategoryLimit{
		"search": {MaxRequests: 2, Window: time.Minute},
	}
	applyCategoryLimits(limiter, cfg)

	limiter.TryAcquireDefault(ratelimit.CategorySearch)
	limiter.TryAcquireDefault(ratelimit.CategorySearch)
	if limiter.TryAcquireDefault(ratelimit.CategorySearch) {
		t.Fatal("bucket should be exhausted under the initial budget")
	}

	// A raised budget applies on the next check without restarting.
	cfg.Limits.Categories["search"] = config.CategoryLimit{MaxRequests: 10, Window: time.Minute}
	applyCategoryLimits(limiter, cfg)

	if remaining := limiter.Remaining(ratelimit.CategorySearch, ratelimit.DefaultKey); remaining != 0 {
		t.Errorf("existing bucket balance should be kept across reload, got %d", remaining)
	}
}
