package ratelimit

import (
	"sync"
	"time"
)

// Reporter receives rate limiter events. *metrics.Metrics implements it.
type Reporter interface {
	RecordRateLimiterDrop(limiterType string)
	SetRateLimiterClients(n int)
}

// KeyedConfig configures a KeyedLimiter instance.
type KeyedConfig struct {
	// Name identifies this limiter for metrics (e.g., "client")
	Name string

	// Token bucket settings
	Burst      float64 // Maximum tokens (burst capacity)
	RefillRate float64 // Tokens refilled per second

	// CleanupPeriod is how often idle keys are removed. Zero disables the loop.
	CleanupPeriod time.Duration
	// IdleTTL is how long a key must be unused, with a full bucket, before removal.
	IdleTTL time.Duration

	// Reporter is optional.
	Reporter Reporter
}

// KeyedLimiter keeps one token bucket per key (the client IP for the API)
// and periodically forgets idle keys.
type KeyedLimiter struct {
	mu       sync.Mutex
	entries  map[string]*keyedEntry
	config   KeyedConfig
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

type keyedEntry struct {
	limiter  *Limiter
	lastSeen time.Time
}

// NewKeyedLimiter creates a per-key limiter and starts its cleanup loop.
// Call Stop when done.
//
//	limiter := ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
//	    Name:          "client",
//	    Burst:         30,
//	    RefillRate:    1,
//	    CleanupPeriod: 5 * time.Minute,
//	    IdleTTL:       10 * time.Minute,
//	})
//	defer limiter.Stop()
func NewKeyedLimiter(cfg KeyedConfig) *KeyedLimiter {
	kl := newKeyedWithClock(cfg, time.Now)
	if cfg.CleanupPeriod > 0 {
		go kl.cleanupLoop()
	}
	return kl
}

func newKeyedWithClock(cfg KeyedConfig, now func() time.Time) *KeyedLimiter {
	return &KeyedLimiter{
		entries: make(map[string]*keyedEntry),
		config:  cfg,
		now:     now,
		stopCh:  make(chan struct{}),
	}
}

// Allow consumes a token for key. When the request is rejected it also
// returns how long the caller should wait. An empty key is always allowed.
func (kl *KeyedLimiter) Allow(key string) (bool, time.Duration) {
	if key == "" {
		return true, 0
	}

	kl.mu.Lock()
	entry, ok := kl.entries[key]
	if !ok {
		entry = &keyedEntry{limiter: newWithClock(kl.config.Burst, kl.config.RefillRate, kl.now)}
		kl.entries[key] = entry
	}
	entry.lastSeen = kl.now()
	count := len(kl.entries)
	kl.mu.Unlock()

	if !ok && kl.config.Reporter != nil {
		kl.config.Reporter.SetRateLimiterClients(count)
	}

	if entry.limiter.Allow() {
		return true, 0
	}
	if kl.config.Reporter != nil {
		kl.config.Reporter.RecordRateLimiterDrop(kl.config.Name)
	}
	return false, entry.limiter.RetryAfter()
}

// Available returns the tokens left for key, or Burst for an unknown key.
func (kl *KeyedLimiter) Available(key string) float64 {
	kl.mu.Lock()
	entry, ok := kl.entries[key]
	kl.mu.Unlock()

	if !ok {
		return kl.config.Burst
	}
	return entry.limiter.Available()
}

// ActiveCount returns the number of tracked keys.
func (kl *KeyedLimiter) ActiveCount() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.entries)
}

// Cleanup removes keys that have been idle for IdleTTL and whose bucket is
// full again, and returns how many keys remain.
func (kl *KeyedLimiter) Cleanup() int {
	cutoff := kl.now().Add(-kl.config.IdleTTL)

	kl.mu.Lock()
	for key, entry := range kl.entries {
		if entry.lastSeen.Before(cutoff) && entry.limiter.IsFull() {
			delete(kl.entries, key)
		}
	}
	remaining := len(kl.entries)
	kl.mu.Unlock()

	if kl.config.Reporter != nil {
		kl.config.Reporter.SetRateLimiterClients(remaining)
	}
	return remaining
}

func (kl *KeyedLimiter) cleanupLoop() {
	ticker := time.NewTicker(kl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-kl.stopCh:
			return
		case <-ticker.C:
			kl.Cleanup()
		}
	}
}

// Stop ends the cleanup loop. Safe to call multiple times.
func (kl *KeyedLimiter) Stop() {
	kl.stopOnce.Do(func() { close(kl.stopCh) })
}
