package ratelimit

import (
	"sync"
	"testing"
	"time"
)

type recordingReporter struct {
	mu      sync.Mutex
	drops   map[string]int
	clients int
}

func (r *recordingReporter) RecordRateLimiterDrop(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.drops == nil {
		r.drops = make(map[string]int)
	}
	r.drops[name]++
}

func (r *recordingReporter) SetRateLimiterClients(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients = n
}

func TestKeyedLimiter_PerKey(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	rep := &recordingReporter{}
	kl := newKeyedWithClock(KeyedConfig{Name: "client", Burst: 2, RefillRate: 1, Reporter: rep}, clock.Now)

	for range 2 {
		if ok, _ := kl.Allow("10.0.0.1"); !ok {
			t.Fatal("first two requests should be allowed")
		}
	}
	ok, retry := kl.Allow("10.0.0.1")
	if ok {
		t.Fatal("third request should be denied")
	}
	if retry != time.Second {
		t.Errorf("retry = %v, want 1s", retry)
	}

	if ok, _ := kl.Allow("10.0.0.2"); !ok {
		t.Error("other client must have its own bucket")
	}
	if ok, _ := kl.Allow(""); !ok {
		t.Error("empty key is always allowed")
	}

	if kl.ActiveCount() != 2 {
		t.Errorf("ActiveCount() = %d, want 2", kl.ActiveCount())
	}
	if rep.drops["client"] != 1 {
		t.Errorf("drops = %v, want client:1", rep.drops)
	}
	if rep.clients != 2 {
		t.Errorf("reported clients = %d, want 2", rep.clients)
	}
}

func TestKeyedLimiter_Available(t *testing.T) {
	t.Parallel()
	kl := newKeyedWithClock(KeyedConfig{Burst: 5, RefillRate: 1}, newFakeClock().Now)

	if got := kl.Available("unknown"); got != 5 {
		t.Errorf("Available(unknown) = %v, want 5", got)
	}
	kl.Allow("a")
	if got := kl.Available("a"); got != 4 {
		t.Errorf("Available(a) = %v, want 4", got)
	}
}

func TestKeyedLimiter_Cleanup(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	rep := &recordingReporter{}
	kl := newKeyedWithClock(KeyedConfig{
		Name:       "client",
		Burst:      10,
		RefillRate: 1,
		IdleTTL:    time.Minute,
		Reporter:   rep,
	}, clock.Now)

	kl.Allow("idle")
	clock.Advance(30 * time.Second)
	kl.Allow("recent")

	if got := kl.Cleanup(); got != 2 {
		t.Errorf("Cleanup() before TTL = %d, want 2", got)
	}

	clock.Advance(45 * time.Second)
	if got := kl.Cleanup(); got != 1 {
		t.Errorf("Cleanup() = %d, want 1 (idle removed)", got)
	}
	if rep.clients != 1 {
		t.Errorf("reported clients = %d, want 1", rep.clients)
	}

	clock.Advance(time.Minute)
	if got := kl.Cleanup(); got != 0 {
		t.Errorf("Cleanup() = %d, want 0", got)
	}
}

func TestKeyedLimiter_CleanupKeepsThrottledClients(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	kl := newKeyedWithClock(KeyedConfig{Burst: 100, RefillRate: 0.01, IdleTTL: time.Second}, clock.Now)

	for range 100 {
		kl.Allow("busy")
	}
	clock.Advance(10 * time.Second)

	if got := kl.Cleanup(); got != 1 {
		t.Errorf("Cleanup() = %d, want 1 (bucket not yet full)", got)
	}
}

func TestKeyedLimiter_StopIsIdempotent(t *testing.T) {
	t.Parallel()
	kl := NewKeyedLimiter(KeyedConfig{Burst: 1, RefillRate: 1, CleanupPeriod: time.Millisecond, IdleTTL: time.Millisecond})
	kl.Allow("a")
	time.Sleep(10 * time.Millisecond)
	kl.Stop()
	kl.Stop()
}

func TestKeyedLimiter_ThreadSafety(t *testing.T) {
	t.Parallel()
	kl := NewKeyedLimiter(KeyedConfig{Burst: 1000, RefillRate: 100})
	defer kl.Stop()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Go(func() {
			key := string(rune('a' + i%5))
			for range 20 {
				kl.Allow(key)
			}
		})
	}
	wg.Wait()

	if kl.ActiveCount() != 5 {
		t.Errorf("ActiveCount() = %d, want 5", kl.ActiveCount())
	}
}
