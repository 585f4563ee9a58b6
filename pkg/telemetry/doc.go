// Package telemetry groups the observability layers for Cirrus.
//
// # Components
//
//   - logging: structured slog logger construction
//
// Prometheus metrics for the rate limiter live alongside the limiter in
// pkg/ratelimit and are exposed by the admin server's /metrics endpoint.
package telemetry
