// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Server
	EnvPort            = "RVCE_PORT"
	EnvLogLevel        = "RVCE_LOG_LEVEL"
	EnvShutdownTimeout = "RVCE_SHUTDOWN_TIMEOUT"

	// Institution
	EnvInstitutionName = "RVCE_INSTITUTION_NAME"
	EnvEmailDomain     = "RVCE_EMAIL_DOMAIN"
	EnvBranchCodes     = "RVCE_BRANCH_CODES"
	EnvYearsBack       = "RVCE_YEARS_BACK"
	EnvYearsAhead      = "RVCE_YEARS_AHEAD"
	EnvMaxSemester     = "RVCE_MAX_SEMESTER"
	EnvTimezone        = "RVCE_TIMEZONE"

	// Rate Limits
	EnvRateBurst  = "RVCE_RATE_BURST"
	EnvRateRefill = "RVCE_RATE_REFILL"

	// Sentry Feature
	EnvSentryEnabled     = "RVCE_SENTRY_ENABLED"
	EnvSentryToken       = "RVCE_SENTRY_TOKEN"
	EnvSentryHost        = "RVCE_SENTRY_HOST"
	EnvSentryEnvironment = "RVCE_SENTRY_ENVIRONMENT"
	EnvSentrySampleRate  = "RVCE_SENTRY_SAMPLE_RATE"

	// Better Stack Feature
	EnvBetterStackEnabled  = "RVCE_BETTERSTACK_ENABLED"
	EnvBetterStackToken    = "RVCE_BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "RVCE_BETTERSTACK_ENDPOINT"

	// Metrics Auth Feature
	EnvMetricsAuthEnabled = "RVCE_METRICS_AUTH_ENABLED"
	EnvMetricsUsername    = "RVCE_METRICS_USERNAME"
	EnvMetricsPassword    = "RVCE_METRICS_PASSWORD"
)
