// Package server provides the local admin HTTP server: health, Prometheus
// metrics, and a read-only view of the current rate-limit budgets.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"skyline-hq/cirrus/pkg/ratelimit"
)

const defaultShutdownTimeout = 10 * time.Second

// Server is the admin HTTP server. It binds to a local address and is not
// meant to be exposed publicly.
type Server struct {
	listenAddress string
	limiter       *ratelimit.Limiter
	httpServer    *http.Server
	shutdownOnce  sync.Once
	mu            sync.RWMutex
	isRunning     bool
}

// NewServer creates a new admin server. limiter may be nil when the
// in-process limiter is not in use; the limits endpoint then reports
// an empty budget set.
func NewServer(listenAddress string, limiter *ratelimit.Limiter) *Server {
	return &Server{
		listenAddress: listenAddress,
		limiter:       limiter,
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.httpServer = &http.Server{
		Addr:         s.listenAddress,
		Handler:      s.setupRoutes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting admin server", "address", s.listenAddress)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("admin server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, stopping admin server")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		shutdownCtx, cancel := context.WithTimeout(ctx, defaultShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during admin server shutdown", "error", err)
				shutdownErr = fmt.Errorf("admin server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("admin server stopped")
	})

	return shutdownErr
}

// setupRoutes configures the admin HTTP routes.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/limits", s.handleLimits)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// limitStatus is one category's default-key budget as reported by /limits.
type limitStatus struct {
	Category  string `json:"category"`
	Remaining int64  `json:"remaining"`
}

func (s *Server) handleLimits(w http.ResponseWriter, r *http.Request) {
	statuses := make([]limitStatus, 0, len(ratelimit.DefaultLimits()))
	if s.limiter != nil {
		for category := range ratelimit.DefaultLimits() {
			statuses = append(statuses, limitStatus{
				Category:  string(category),
				Remaining: s.limiter.Remaining(category, ratelimit.DefaultKey),
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{"limits": statuses})
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}
