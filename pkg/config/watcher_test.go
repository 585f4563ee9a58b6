package config

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestWatcher_ReloadsOnChange(t *testing.T) {
	path := writeConfigFile(t, "logging:\n  level: \"info\"\n")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reloaded := make(chan *Config, 1)
	watcher := NewWatcher(path, nil)

	done := make(chan error, 1)
	go func() {
		done <- watcher.Watch(ctx, func(cfg *Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// Give the watcher a moment to register before mutating the file.
	time.Sleep(250 * time.Millisecond)

	if err := os.WriteFile(path, []byte("logging:\n  level: \"debug\"\n"), 0o644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Logging.Level != "debug" {
			t.Errorf("expected reloaded level debug, got %q", cfg.Logging.Level)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for reload")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned error: %v", err)
	}
}

func TestWatcher_SkipsInvalidConfig(t *testing.T) {
	path := writeConfigFile(t, "logging:\n  level: \"info\"\n")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reloaded := make(chan *Config, 2)
	watcher := NewWatcher(path, nil)
	go watcher.Watch(ctx, func(cfg *Config) { reloaded <- cfg })

	time.Sleep(250 * time.Millisecond)

	// An invalid file must not reach the callback.
	if err := os.WriteFile(path, []byte("logging:\n  level: \"loud\"\n"), 0o644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}

	select {
	case cfg := <-reloaded:
		t.Fatalf("invalid config should not trigger reload, got level %q", cfg.Logging.Level)
	case <-time.After(1 * time.Second):
	}

	// A subsequent valid write still works.
	if err := os.WriteFile(path, []byte("logging:\n  level: \"error\"\n"), 0o644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Logging.Level != "error" {
			t.Errorf("expected level error after recovery, got %q", cfg.Logging.Level)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for reload after recovery")
	}
}
