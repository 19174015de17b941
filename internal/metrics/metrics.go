// Package metrics defines the Prometheus metrics exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Validation check names used as the "check" label.
const (
	CheckEmail    = "email"
	CheckSemester = "semester"
	CheckSignup   = "signup"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Validation metrics
	ValidationsTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPDurationSeconds *prometheus.HistogramVec

	// Rate limiter metrics
	RateLimiterDropped       *prometheus.CounterVec
	RateLimiterActiveClients prometheus.Gauge
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	return &Metrics{
		ValidationsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "rvce_validations_total",
				Help: "Total number of eligibility checks by check, result and failure reason",
			},
			[]string{"check", "result", "reason"}, // result: valid, invalid; reason empty when valid
		),

		HTTPRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "rvce_http_requests_total",
				Help: "Total number of API requests by route and status code",
			},
			[]string{"route", "code"},
		),

		HTTPDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rvce_http_duration_seconds",
				Help:    "API request duration in seconds by route",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5}, // validation is CPU-only
			},
			[]string{"route"},
		),

		RateLimiterDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "rvce_rate_limiter_dropped_total",
				Help: "Total number of requests dropped by rate limiter",
			},
			[]string{"limiter_type"}, // limiter_type: client
		),

		RateLimiterActiveClients: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "rvce_rate_limiter_active_clients",
				Help: "Number of clients currently tracked by the rate limiter",
			},
		),
	}
}

// RecordValidation records one eligibility check. An empty reason means the check passed.
func (m *Metrics) RecordValidation(check, reason string) {
	result := "valid"
	if reason != "" {
		result = "invalid"
	}
	m.ValidationsTotal.WithLabelValues(check, result, reason).Inc()
}

// RecordHTTPRequest records a handled API request
func (m *Metrics) RecordHTTPRequest(route, code string, duration float64) {
	m.HTTPRequestsTotal.WithLabelValues(route, code).Inc()
	m.HTTPDurationSeconds.WithLabelValues(route).Observe(duration)
}

// RecordRateLimiterDrop records a request dropped by rate limiter
func (m *Metrics) RecordRateLimiterDrop(limiterType string) {
	m.RateLimiterDropped.WithLabelValues(limiterType).Inc()
}

// SetRateLimiterClients sets the number of tracked rate limiter clients
func (m *Metrics) SetRateLimiterClients(n int) {
	m.RateLimiterActiveClients.Set(float64(n))
}
