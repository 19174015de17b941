// Package sentry reports unexpected server errors to Better Stack Errors
// through the Sentry SDK. Validation failures are expected outcomes and are
// never reported.
package sentry

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	domerrors "github.com/rvceconnect/rvce-connect-go/internal/errors"
)

// Config holds Sentry configuration for Better Stack integration.
type Config struct {
	// Token is the Better Stack Errors application token. Empty disables reporting.
	Token string

	// Host is the Better Stack Errors ingesting host (e.g., "errors.betterstack.com").
	Host string

	Environment string
	Release     string

	// SampleRate controls error sampling (0.0-1.0). Zero means 1.0.
	SampleRate float64
}

// DSN builds the Better Stack DSN. The project ID is required by the SDK
// but ignored by Better Stack.
func (c Config) DSN() string {
	return fmt.Sprintf("https://%s@%s/1", c.Token, c.Host)
}

// Initialize sets up the Sentry SDK. With an empty Token it does nothing.
func Initialize(cfg Config) error {
	if cfg.Token == "" {
		return nil
	}
	if cfg.Host == "" {
		return fmt.Errorf("sentry host is required when token is provided")
	}

	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 1.0
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN(),
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		SampleRate:       sampleRate,
		AttachStacktrace: true,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			if hint != nil && hint.OriginalException != nil && !shouldReport(hint.OriginalException) {
				return nil
			}
			return event
		},
	})
}

// Flush waits for buffered events to be sent to the server.
// Returns true if all events were sent within the timeout.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// IsEnabled returns true if Sentry is initialized and active.
func IsEnabled() bool {
	return sentry.CurrentHub().Client() != nil
}

// CaptureError reports err using the hub attached to ctx, falling back to
// the global hub. It returns false when err is nil or a validation error.
func CaptureError(ctx context.Context, err error) bool {
	if !shouldReport(err) {
		return false
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.CaptureException(err)
	return true
}

func shouldReport(err error) bool {
	return err != nil && !domerrors.IsValidationError(err)
}
