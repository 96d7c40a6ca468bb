package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/sigstudio/sigsite/internal/store"
)

// fakeClock is a settable time source for simulating window/lockout expiry.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time            { return c.t }
func (c *fakeClock) advance(d time.Duration)   { c.t = c.t.Add(d) }

func newTestLimiter() (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	l := New(store.NewMemory()).WithClock(clock.now)
	return l, clock
}

func TestStatus_FreshState(t *testing.T) {
	l, _ := newTestLimiter()
	st := l.Status(context.Background())
	if st.Limited {
		t.Error("fresh state should not be limited")
	}
	if st.RemainingAttempts != MaxAttempts {
		t.Errorf("want %d remaining, got %d", MaxAttempts, st.RemainingAttempts)
	}
}

func TestRecordAttempt_SequenceToLockout(t *testing.T) {
	l, _ := newTestLimiter()
	ctx := context.Background()

	// First four attempts allowed with strictly decreasing remainder.
	for i, want := range []int{4, 3, 2, 1} {
		att := l.RecordAttempt(ctx)
		if !att.Allowed {
			t.Fatalf("attempt %d: want allowed", i+1)
		}
		if att.RemainingAttempts != want {
			t.Errorf("attempt %d: want %d remaining, got %d", i+1, want, att.RemainingAttempts)
		}
		if !att.LockedUntil.IsZero() {
			t.Errorf("attempt %d: unexpected lockout", i+1)
		}
	}

	// Fifth attempt engages the lockout.
	att := l.RecordAttempt(ctx)
	if att.Allowed {
		t.Error("fifth attempt should be rejected")
	}
	if att.RemainingAttempts != 0 {
		t.Errorf("want 0 remaining, got %d", att.RemainingAttempts)
	}
	if att.LockedUntil.IsZero() {
		t.Error("fifth attempt should set lockedUntil")
	}

	st := l.Status(ctx)
	if !st.Limited {
		t.Error("status should report limited")
	}
	if st.Remaining <= 0 || st.Remaining > Lockout {
		t.Errorf("remaining lockout out of range: %v", st.Remaining)
	}
}

func TestRecordAttempt_WhileLockedDoesNotIncrement(t *testing.T) {
	l, clock := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < MaxAttempts; i++ {
		l.RecordAttempt(ctx)
	}

	att := l.RecordAttempt(ctx)
	if att.Allowed || att.LockedUntil.IsZero() {
		t.Fatal("locked scope should reject with lockedUntil")
	}

	// After the lockout passes, the next attempt gets a clean window.
	clock.advance(Lockout + time.Second)
	att = l.RecordAttempt(ctx)
	if !att.Allowed {
		t.Fatal("post-lockout attempt should be allowed")
	}
	if att.RemainingAttempts != MaxAttempts-1 {
		t.Errorf("want %d remaining, got %d", MaxAttempts-1, att.RemainingAttempts)
	}
}

func TestStatus_LockoutExpiryReadsFresh(t *testing.T) {
	l, clock := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < MaxAttempts; i++ {
		l.RecordAttempt(ctx)
	}
	clock.advance(Lockout + time.Minute)

	st := l.Status(ctx)
	if st.Limited {
		t.Error("served lockout should read as not limited")
	}
	if st.RemainingAttempts != MaxAttempts {
		t.Errorf("want full %d attempts, got %d", MaxAttempts, st.RemainingAttempts)
	}
}

func TestWindowExpiry(t *testing.T) {
	l, clock := newTestLimiter()
	ctx := context.Background()

	l.RecordAttempt(ctx)
	l.RecordAttempt(ctx)

	// Window rolls over; the read path treats the record as fresh.
	clock.advance(Window + time.Second)
	st := l.Status(ctx)
	if st.Limited || st.RemainingAttempts != MaxAttempts {
		t.Errorf("expired window should read fresh, got %+v", st)
	}

	// And the next recorded attempt starts a new window.
	att := l.RecordAttempt(ctx)
	if !att.Allowed || att.RemainingAttempts != MaxAttempts-1 {
		t.Errorf("want fresh window attempt, got %+v", att)
	}
}

func TestReset(t *testing.T) {
	l, _ := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < MaxAttempts; i++ {
		l.RecordAttempt(ctx)
	}
	l.Reset(ctx)

	att := l.RecordAttempt(ctx)
	if !att.Allowed {
		t.Error("attempt after reset should be allowed")
	}
	if att.RemainingAttempts != MaxAttempts-1 {
		t.Errorf("want %d remaining, got %d", MaxAttempts-1, att.RemainingAttempts)
	}
}

func TestBackoffDelay(t *testing.T) {
	l, _ := newTestLimiter()
	ctx := context.Background()

	if d := l.BackoffDelay(ctx); d != 0 {
		t.Errorf("no attempts: want 0, got %v", d)
	}

	l.RecordAttempt(ctx)
	if d := l.BackoffDelay(ctx); d != 0 {
		t.Errorf("first attempt: want 0, got %v", d)
	}

	l.RecordAttempt(ctx)
	if d := l.BackoffDelay(ctx); d != 1*time.Second {
		t.Errorf("second attempt: want 1s, got %v", d)
	}

	l.RecordAttempt(ctx)
	if d := l.BackoffDelay(ctx); d != 2*time.Second {
		t.Errorf("third attempt: want 2s, got %v", d)
	}

	l.RecordAttempt(ctx)
	l.RecordAttempt(ctx)
	if d := l.BackoffDelay(ctx); d > backoffCap {
		t.Errorf("backoff exceeds cap: %v", d)
	}
}

func TestCorruptRecordReadsAsZero(t *testing.T) {
	kv := store.NewMemory()
	ctx := context.Background()
	_ = kv.Set(ctx, "login_ratelimit", []byte("{not json"))

	l := New(kv)
	st := l.Status(ctx)
	if st.Limited || st.RemainingAttempts != MaxAttempts {
		t.Errorf("corrupt record should read fresh, got %+v", st)
	}
}
