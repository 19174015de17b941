// Package config provides centralized timeout constants for the application.
//
// Validation requests are pure computation, so the HTTP limits are short.
// Only the shutdown window needs to leave room for in-flight requests and
// the Sentry and Better Stack flushes.
package config

import "time"

// HTTP server timeouts
const (
	// HTTPRead is the server read timeout. Request bodies are small JSON forms.
	HTTPRead = 10 * time.Second

	// HTTPReadHeader bounds slow header delivery.
	HTTPReadHeader = 5 * time.Second

	// HTTPWrite is the server write timeout.
	HTTPWrite = 15 * time.Second

	// HTTPIdle is the idle timeout for keep-alive connections.
	HTTPIdle = 120 * time.Second
)

// Background job intervals
const (
	// RateLimiterCleanupInterval is how often idle per-client limiters are removed.
	RateLimiterCleanupInterval = 5 * time.Minute

	// RateLimiterIdleTTL is how long a client limiter may stay unused before removal.
	RateLimiterIdleTTL = 10 * time.Minute
)

// Graceful shutdown
const (
	// GracefulShutdown is the default timeout for graceful server shutdown.
	GracefulShutdown = 30 * time.Second

	// ErrorFlush is how long shutdown waits for buffered Sentry events.
	ErrorFlush = 2 * time.Second

	// HealthcheckRequest is the timeout of the container health probe.
	HealthcheckRequest = 3 * time.Second
)
