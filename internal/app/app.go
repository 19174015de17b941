// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/rvceconnect/rvce-connect-go/internal/buildinfo"
	"github.com/rvceconnect/rvce-connect-go/internal/config"
	"github.com/rvceconnect/rvce-connect-go/internal/logger"
	"github.com/rvceconnect/rvce-connect-go/internal/metrics"
	"github.com/rvceconnect/rvce-connect-go/internal/ratelimit"
	"github.com/rvceconnect/rvce-connect-go/internal/sentry"
	"github.com/rvceconnect/rvce-connect-go/internal/timeutil"
)

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg      *config.Config
	logger   *logger.Logger
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	limiter  *ratelimit.KeyedLimiter
	api      *api
	router   *gin.Engine
	server   *http.Server
}

// Initialize creates and initializes a new application with all dependencies.
func Initialize(cfg *config.Config) (*Application, error) {
	betterStackToken := ""
	if cfg.BetterStackEnabled {
		betterStackToken = cfg.BetterStackToken
	}
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logger.Options{
		BetterStackToken:    betterStackToken,
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})
	log = log.WithField("service", "rvce-connect-go")
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Package-level slog.*Context() calls get request IDs through ContextHandler.
	slog.SetDefault(log.Logger)

	log.WithField("version", buildinfo.String()).Info("Initializing application...")

	if cfg.SentryEnabled {
		if err := sentry.Initialize(sentry.Config{
			Token:       cfg.SentryToken,
			Host:        cfg.SentryHost,
			Environment: cfg.SentryEnvironment,
			Release:     buildinfo.Version,
			SampleRate:  cfg.SentrySampleRate,
		}); err != nil {
			return nil, fmt.Errorf("sentry: %w", err)
		}
		log.WithField("host", cfg.SentryHost).Info("Sentry error reporting enabled")
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	limiter := ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:          "client",
		Burst:         cfg.RateBurst,
		RefillRate:    cfg.RateRefill,
		CleanupPeriod: config.RateLimiterCleanupInterval,
		IdleTTL:       config.RateLimiterIdleTTL,
		Reporter:      m,
	})

	app := &Application{
		cfg:      cfg,
		logger:   log,
		metrics:  m,
		registry: registry,
		limiter:  limiter,
		api:      newAPI(cfg.Institution(), timeutil.NewClock(loc), m, log.WithModule("api")),
	}
	app.router = app.newRouter()
	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.router,
		ReadHeaderTimeout: config.HTTPReadHeader,
		ReadTimeout:       config.HTTPRead,
		WriteTimeout:      config.HTTPWrite,
		IdleTimeout:       config.HTTPIdle,
	}

	inst := cfg.Institution()
	log.WithFields(map[string]any{
		"institution": inst.Name,
		"domain":      inst.DomainSuffix,
		"branches":    len(inst.BranchCodes),
		"timezone":    loc.String(),
	}).Info("Initialization complete")
	return app, nil
}

// newRouter wires middleware and routes.
func (a *Application) newRouter() *gin.Engine {
	if a.cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if a.cfg.SentryEnabled {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(securityHeadersMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(a.logger))

	router.GET("/livez", a.livenessCheck)
	router.HEAD("/livez", a.livenessCheck)
	router.GET("/readyz", a.readinessCheck)
	router.HEAD("/readyz", a.readinessCheck)
	router.GET("/metrics",
		metricsAuthMiddleware(a.cfg.MetricsAuthEnabled, a.cfg.MetricsUsername, a.cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")
	v1.Use(metricsMiddleware(a.metrics), rateLimitMiddleware(a.limiter))
	a.api.register(v1)

	return router
}

// Handler returns the HTTP handler serving every route.
func (a *Application) Handler() http.Handler {
	return a.router
}

func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

// readinessCheck reports ready once the rules are loaded. The service has no
// external dependencies, so readiness only fails if initialization was skipped.
func (a *Application) readinessCheck(c *gin.Context) {
	if a.api == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "validation rules not loaded",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "ready",
		"version":     buildinfo.Version,
		"commit":      buildinfo.Commit,
		"build_date":  buildinfo.BuildDate,
		"institution": a.api.inst.Name,
	})
}

// Run serves HTTP until ctx is canceled or SIGINT/SIGTERM is received, then
// shuts down gracefully.
//
// Shutdown order:
//  1. Stop accepting new requests and wait for in-flight ones
//  2. Stop the rate limiter cleanup loop
//  3. Flush Sentry events and queued Better Stack logs
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("Shutdown requested")
		return a.shutdown()
	})

	err := g.Wait()
	if err != nil {
		sentry.CaptureError(context.Background(), err)
		a.logger.WithError(err).Error("Server stopped with error")
	}
	a.flush()
	return err
}

// shutdown stops the HTTP server and background work.
func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	err := a.server.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}

	a.limiter.Stop()
	return err
}

// flush sends buffered telemetry before exit.
func (a *Application) flush() {
	if sentry.IsEnabled() {
		sentry.Flush(config.ErrorFlush)
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	a.logger.Info("Shutdown complete")
	if err := a.logger.Shutdown(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "logger shutdown: %v\n", err)
	}
}

// Close releases background resources of an Application that never ran.
func (a *Application) Close() {
	a.limiter.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = a.logger.Shutdown(shutdownCtx)
}
