// Package ratelimit tracks failed admin login attempts for one browsing
// scope and enforces a window/lockout policy plus a client-side exponential
// backoff hint. State lives as a JSON record in an injected key-value store;
// a missing or corrupt record reads as the zero state.
package ratelimit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sigstudio/sigsite/internal/store"
)

// recordKey is the logical key of the rate-limit record inside its scope.
const recordKey = "login_ratelimit"

// Policy constants. The single admin identity means tracking is global to
// the scope, not keyed per account.
const (
	// MaxAttempts is the number of attempts allowed inside one window.
	MaxAttempts = 5

	// Window is the rolling window in which attempts are counted.
	Window = 15 * time.Minute

	// Lockout is how long the scope stays locked after the limit is hit.
	Lockout = 30 * time.Minute

	// backoffBase is the starting delay for the exponential backoff hint.
	backoffBase = 500 * time.Millisecond

	// backoffCap bounds the backoff hint.
	backoffCap = 10 * time.Second
)

// record is the persisted brute-force tracking state. Timestamps are
// milliseconds since epoch for interoperability with the SPA.
type record struct {
	Count          int   `json:"count"`
	FirstAttemptAt int64 `json:"firstAttemptAt"`
	LockedUntil    int64 `json:"lockedUntil,omitempty"`
}

// Status is the read-only rate-limit view returned to callers deciding
// whether to even offer the login form.
type Status struct {
	Limited           bool
	Remaining         time.Duration
	RemainingAttempts int
}

// Attempt is the outcome of recording one login attempt.
type Attempt struct {
	Allowed           bool
	RemainingAttempts int
	// LockedUntil is zero unless this or an earlier attempt engaged the
	// lockout.
	LockedUntil time.Time
}

// Limiter tracks login attempts in one scope. Not safe for concurrent use
// on the same scope; the storage model assumes a single writer per logical
// key (one browsing session).
type Limiter struct {
	kv  store.KV
	now func() time.Time
}

// New creates a limiter over the given scope store.
func New(kv store.KV) *Limiter {
	return &Limiter{kv: kv, now: time.Now}
}

// WithClock replaces the limiter's time source. Tests use this to simulate
// window and lockout expiry.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Status reports the current limit state without mutating it. Lockout takes
// precedence; an expired lockout or window reads as a fresh record (the
// stored state is actually cleared on the next RecordAttempt call).
func (l *Limiter) Status(ctx context.Context) Status {
	now := l.now()
	r := l.load(ctx)

	if r.LockedUntil != 0 {
		until := time.UnixMilli(r.LockedUntil)
		if now.Before(until) {
			return Status{Limited: true, Remaining: until.Sub(now)}
		}
		// Lockout served; the scope gets a fresh window.
		return Status{RemainingAttempts: MaxAttempts}
	}

	if l.windowExpired(r, now) {
		return Status{RemainingAttempts: MaxAttempts}
	}

	return Status{RemainingAttempts: MaxAttempts - r.Count}
}

// RecordAttempt registers one login attempt. A locked scope is rejected
// without incrementing; an expired window or served lockout starts fresh;
// hitting the limit engages the lockout and rejects.
func (l *Limiter) RecordAttempt(ctx context.Context) Attempt {
	now := l.now()
	r := l.load(ctx)

	if r.LockedUntil != 0 {
		until := time.UnixMilli(r.LockedUntil)
		if now.Before(until) {
			return Attempt{LockedUntil: until}
		}
		r = record{}
	}

	if l.windowExpired(r, now) {
		r = record{}
	}

	if r.FirstAttemptAt == 0 {
		r.FirstAttemptAt = now.UnixMilli()
	}
	r.Count++

	if r.Count >= MaxAttempts {
		until := now.Add(Lockout)
		r.LockedUntil = until.UnixMilli()
		l.save(ctx, r)
		return Attempt{LockedUntil: until}
	}

	l.save(ctx, r)
	return Attempt{Allowed: true, RemainingAttempts: MaxAttempts - r.Count}
}

// Reset clears all tracked state. Called after a successful login.
func (l *Limiter) Reset(ctx context.Context) {
	_ = l.kv.Delete(ctx, recordKey)
}

// BackoffDelay returns the client-side delay hint for the next attempt:
// zero for the first attempt, then backoffBase * 2^(count-1), capped. This
// throttles automated retries before the hard lockout engages.
func (l *Limiter) BackoffDelay(ctx context.Context) time.Duration {
	r := l.load(ctx)
	if r.Count <= 1 {
		return 0
	}
	d := backoffBase << (r.Count - 1)
	if d > backoffCap || d <= 0 {
		return backoffCap
	}
	return d
}

// windowExpired reports whether the counting window has rolled over.
func (l *Limiter) windowExpired(r record, now time.Time) bool {
	return r.FirstAttemptAt > 0 && now.UnixMilli()-r.FirstAttemptAt > Window.Milliseconds()
}

// load reads the stored record; absence and corruption both yield the zero
// record.
func (l *Limiter) load(ctx context.Context) record {
	data, err := l.kv.Get(ctx, recordKey)
	if err != nil {
		return record{}
	}
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return record{}
	}
	return r
}

func (l *Limiter) save(ctx context.Context, r record) {
	data, err := json.Marshal(r)
	if err != nil {
		return
	}
	_ = l.kv.Set(ctx, recordKey, data)
}
