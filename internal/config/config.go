// Package config provides application configuration management.
// It loads settings from environment variables (optionally from a .env file)
// and provides defaults for the server, the institution rules, rate limits
// and the optional observability integrations.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/rvceconnect/rvce-connect-go/internal/eligibility"
	"github.com/rvceconnect/rvce-connect-go/internal/timeutil"
)

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Institution Configuration
	InstitutionName string
	EmailDomain     string   // suffix including "@"
	BranchCodes     []string // lowercase 2-3 letter codes
	YearsBack       int
	YearsAhead      int
	MaxSemester     int
	Timezone        string

	// Rate Limits (Token Bucket Algorithm, per client IP)
	RateBurst  float64 // Maximum burst tokens per client (default: 30)
	RateRefill float64 // Tokens refilled per second (default: 1)

	// Metrics Authentication
	MetricsAuthEnabled bool
	MetricsUsername    string // Username for /metrics Basic Auth (default: "prometheus")
	MetricsPassword    string

	// Sentry (Better Stack Errors)
	SentryEnabled     bool
	SentryToken       string
	SentryHost        string
	SentryEnvironment string
	SentrySampleRate  float64

	// Better Stack Logs
	BetterStackEnabled  bool
	BetterStackToken    string
	BetterStackEndpoint string
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		// Server Configuration
		Port:            getEnv(EnvPort, "10000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),

		// Institution Configuration
		InstitutionName: getEnv(EnvInstitutionName, eligibility.DefaultInstitution().Name),
		EmailDomain:     getEnv(EnvEmailDomain, eligibility.DefaultInstitution().DomainSuffix),
		BranchCodes:     getListEnv(EnvBranchCodes, eligibility.DefaultBranchCodes),
		YearsBack:       getIntEnv(EnvYearsBack, eligibility.DefaultYearsBack),
		YearsAhead:      getIntEnv(EnvYearsAhead, eligibility.DefaultYearsAhead),
		MaxSemester:     getIntEnv(EnvMaxSemester, eligibility.DefaultMaxSemester),
		Timezone:        getEnv(EnvTimezone, timeutil.DefaultTimezone),

		// Rate Limits
		RateBurst:  getFloatEnv(EnvRateBurst, 30.0),
		RateRefill: getFloatEnv(EnvRateRefill, 1.0),

		// Metrics Authentication
		MetricsAuthEnabled: getBoolEnv(EnvMetricsAuthEnabled, false),
		MetricsUsername:    getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword:    getEnv(EnvMetricsPassword, ""),

		// Sentry
		SentryEnabled:     getBoolEnv(EnvSentryEnabled, false),
		SentryToken:       getEnv(EnvSentryToken, ""),
		SentryHost:        getEnv(EnvSentryHost, ""),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),
		SentrySampleRate:  getFloatEnv(EnvSentrySampleRate, 1.0),

		// Better Stack
		BetterStackEnabled:  getBoolEnv(EnvBetterStackEnabled, false),
		BetterStackToken:    getEnv(EnvBetterStackToken, ""),
		BetterStackEndpoint: getEnv(EnvBetterStackEndpoint, ""),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvPort))
	} else if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		errs = append(errs, fmt.Errorf("%s must be a port number, got %q", EnvPort, c.Port))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvShutdownTimeout, c.ShutdownTimeout))
	}
	if err := c.Institution().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("institution: %w", err))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", EnvTimezone, err))
	}
	if c.RateBurst < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1, got %v", EnvRateBurst, c.RateBurst))
	}
	if c.RateRefill <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvRateRefill, c.RateRefill))
	}
	if c.MetricsAuthEnabled && c.MetricsPassword == "" {
		errs = append(errs, fmt.Errorf("%s is required when metrics auth is enabled", EnvMetricsPassword))
	}
	if c.SentryEnabled {
		if c.SentryToken == "" {
			errs = append(errs, fmt.Errorf("%s is required when Sentry is enabled", EnvSentryToken))
		}
		if c.SentryHost == "" {
			errs = append(errs, fmt.Errorf("%s is required when Sentry is enabled", EnvSentryHost))
		}
		if c.SentrySampleRate < 0 || c.SentrySampleRate > 1 {
			errs = append(errs, fmt.Errorf("%s must be between 0 and 1, got %v", EnvSentrySampleRate, c.SentrySampleRate))
		}
	}
	if c.BetterStackEnabled && c.BetterStackToken == "" {
		errs = append(errs, fmt.Errorf("%s is required when Better Stack is enabled", EnvBetterStackToken))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Institution builds the eligibility rules from the configuration.
func (c *Config) Institution() eligibility.Institution {
	return eligibility.Institution{
		Name:              c.InstitutionName,
		DomainSuffix:      c.EmailDomain,
		BranchCodes:       c.BranchCodes,
		YearsBack:         c.YearsBack,
		YearsAhead:        c.YearsAhead,
		MaxSemester:       c.MaxSemester,
		MonthsPerSemester: eligibility.DefaultMonthsPerSemester,
	}
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return timeutil.LoadLocation(c.Timezone)
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getListEnv retrieves a comma-separated list. Entries are trimmed and empty
// entries dropped; the default is copied so callers may modify the result.
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for item := range strings.SplitSeq(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
