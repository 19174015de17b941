package app

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvceconnect/rvce-connect-go/internal/ctxutil"
	"github.com/rvceconnect/rvce-connect-go/internal/logger"
	"github.com/rvceconnect/rvce-connect-go/internal/metrics"
	"github.com/rvceconnect/rvce-connect-go/internal/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func okHandler(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func TestMetricsAuthMiddleware_Disabled(t *testing.T) {
	router := gin.New()
	router.GET("/metrics", metricsAuthMiddleware(false, "prometheus", ""), okHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestMetricsAuthMiddleware_ValidCredentials(t *testing.T) {
	router := gin.New()
	router.GET("/metrics", metricsAuthMiddleware(true, "prometheus", "secret123"), okHandler)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("prometheus:secret123")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsAuthMiddleware_InvalidCredentials(t *testing.T) {
	router := gin.New()
	router.GET("/metrics", metricsAuthMiddleware(true, "prometheus", "secret123"), okHandler)

	tests := []struct {
		name     string
		username string
		password string
		noAuth   bool
	}{
		{"wrong username", "wronguser", "secret123", false},
		{"wrong password", "prometheus", "wrong", false},
		{"empty password", "prometheus", "", false},
		{"no header", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if !tt.noAuth {
				req.SetBasicAuth(tt.username, tt.password)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, `Basic realm="metrics"`, w.Header().Get("WWW-Authenticate"))
		})
	}
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(securityHeadersMiddleware())
	router.GET("/", okHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestRequestIDMiddleware(t *testing.T) {
	var seenID, seenIP string
	router := gin.New()
	router.Use(requestIDMiddleware())
	router.GET("/", func(c *gin.Context) {
		seenID, _ = ctxutil.GetRequestID(c.Request.Context())
		seenIP = ctxutil.GetClientIP(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	t.Run("echoes caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestIDHeader, "req-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Header().Get(requestIDHeader))
		assert.Equal(t, "req-123", seenID)
		assert.Equal(t, "192.0.2.1", seenIP)
	})

	t.Run("generates id when missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		id := w.Header().Get(requestIDHeader)
		assert.Len(t, id, 36)
		assert.Equal(t, id, seenID)
	})

	t.Run("replaces oversized id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestIDHeader, strings.Repeat("x", maxRequestIDLength+1))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Len(t, w.Header().Get(requestIDHeader), 36)
	})
}

func TestLoggingMiddleware_IncludesRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("debug", &buf)

	router := gin.New()
	router.Use(requestIDMiddleware(), loggingMiddleware(log))
	router.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	req.Header.Set(requestIDHeader, "trace-me")
	router.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "trace-me", entry["request_id"])
	assert.EqualValues(t, 500, entry["http_status"])
	assert.Equal(t, "/fail", entry["http_path"])
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	router := gin.New()
	router.Use(metricsMiddleware(m))
	router.GET("/items/:id", okHandler)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/1", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/2", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.InDelta(t, 2, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/items/:id", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("unmatched", "404")), 0)
}

func TestRateLimitMiddleware(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	limiter := ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:       "client",
		Burst:      2,
		RefillRate: 0.5,
		Reporter:   m,
	})
	t.Cleanup(limiter.Stop)

	router := gin.New()
	router.Use(rateLimitMiddleware(limiter))
	router.GET("/", okHandler)

	send := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1:1001").Code)

	w := send("10.0.0.1:1002")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))

	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Too many requests, please slow down", body.Error)

	// Another client has its own bucket.
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1000").Code)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RateLimiterDropped.WithLabelValues("client")), 0)
}
