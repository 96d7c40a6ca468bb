package middleware

import (
	"testing"
	"time"
)

func TestIPLimiter_AllowsUpToMax(t *testing.T) {
	l := newIPLimiter(3, time.Minute)
	now := time.Now()

	for i := 0; i < 3; i++ {
		if !l.allow("1.2.3.4", now) {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.allow("1.2.3.4", now) {
		t.Error("request over the limit should be rejected")
	}

	// A different IP has its own counter.
	if !l.allow("5.6.7.8", now) {
		t.Error("other IP should not share the counter")
	}
}

func TestIPLimiter_WindowExpiryResets(t *testing.T) {
	l := newIPLimiter(1, time.Minute)
	now := time.Now()

	if !l.allow("1.2.3.4", now) {
		t.Fatal("first request should be allowed")
	}
	if l.allow("1.2.3.4", now) {
		t.Fatal("second request inside the window should be rejected")
	}
	if !l.allow("1.2.3.4", now.Add(time.Minute+time.Second)) {
		t.Error("request after the window should start a fresh count")
	}
}

func TestIPLimiter_SweepDropsStaleEntries(t *testing.T) {
	l := newIPLimiter(5, time.Minute)
	now := time.Now()

	l.allow("1.2.3.4", now)
	l.allow("5.6.7.8", now)
	if len(l.entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(l.entries))
	}

	// Well past both the sweep interval and twice the window: the next
	// request prunes the stale counters inline.
	later := now.Add(3 * time.Minute)
	l.allow("9.9.9.9", later)

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) != 1 {
		t.Errorf("entries after sweep = %d, want 1", len(l.entries))
	}
	if _, ok := l.entries["9.9.9.9"]; !ok {
		t.Error("current entry should survive the sweep")
	}
}
