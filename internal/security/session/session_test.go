package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sigstudio/sigsite/internal/store"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

var testSignals = StaticSignals{Values: Signals{
	UserAgent: "Mozilla/5.0 (test)",
	Language:  "en-US",
	Screen:    "1920x1080",
	Timezone:  "Asia/Seoul",
}}

func newTestManager() (*Manager, *store.Memory, *fakeClock) {
	kv := store.NewMemory()
	clock := &fakeClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	m := New(kv, nil, testSignals).WithClock(clock.now)
	return m, kv, clock
}

func TestCreateThenLoad(t *testing.T) {
	m, kv, _ := newTestManager()
	ctx := context.Background()

	if m.Load(ctx) {
		t.Fatal("no session yet, Load should be false")
	}

	if err := m.Create(ctx); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !m.Load(ctx) {
		t.Fatal("Load after Create should be true")
	}

	// The stored record carries a 64-hex-char id and a fingerprint.
	data, err := kv.Get(ctx, "admin_session")
	if err != nil {
		t.Fatalf("record missing: %v", err)
	}
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	if len(r.SessionID) != 64 {
		t.Errorf("session id length %d, want 64", len(r.SessionID))
	}
	if r.Fingerprint != Fingerprint(testSignals) {
		t.Errorf("fingerprint mismatch: %q", r.Fingerprint)
	}
}

func TestCreate_OverwritesExisting(t *testing.T) {
	m, kv, _ := newTestManager()
	ctx := context.Background()

	_ = m.Create(ctx)
	first, _ := kv.Get(ctx, "admin_session")
	_ = m.Create(ctx)
	second, _ := kv.Get(ctx, "admin_session")

	if string(first) == string(second) {
		t.Error("second Create should replace the session record")
	}
	if !m.Load(ctx) {
		t.Error("replacement session should load")
	}
}

func TestClearThenLoad(t *testing.T) {
	m, _, _ := newTestManager()
	ctx := context.Background()

	_ = m.Create(ctx)
	if err := m.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if m.Load(ctx) {
		t.Error("Load after Clear should be false")
	}
	// Idempotent.
	_ = m.Clear(ctx)
}

func TestLoad_ExpiryErasesRecord(t *testing.T) {
	m, kv, clock := newTestManager()
	ctx := context.Background()

	_ = m.Create(ctx)
	clock.advance(9 * time.Hour) // TTL is 8h

	if m.Load(ctx) {
		t.Fatal("expired session should not load")
	}
	if _, err := kv.Get(ctx, "admin_session"); !errors.Is(err, store.ErrNotFound) {
		t.Error("expired record should be erased")
	}
}

func TestLoad_RenewsNearExpiry(t *testing.T) {
	m, kv, clock := newTestManager()
	ctx := context.Background()

	_ = m.Create(ctx)
	before := storedExpiry(t, kv)

	clock.advance(7*time.Hour + 30*time.Minute + time.Minute) // inside renewal threshold

	if !m.Load(ctx) {
		t.Fatal("session within renewal threshold should load")
	}
	after := storedExpiry(t, kv)
	if after <= before {
		t.Errorf("expiresAt should strictly increase: before %d, after %d", before, after)
	}
}

func TestLoad_NoRenewalOutsideThreshold(t *testing.T) {
	m, kv, clock := newTestManager()
	ctx := context.Background()

	_ = m.Create(ctx)
	before := storedExpiry(t, kv)

	clock.advance(time.Hour)

	if !m.Load(ctx) {
		t.Fatal("fresh session should load")
	}
	if after := storedExpiry(t, kv); after != before {
		t.Errorf("expiresAt should be unchanged: before %d, after %d", before, after)
	}
}

func TestLoad_FingerprintMismatchClears(t *testing.T) {
	kv := store.NewMemory()
	clock := &fakeClock{t: time.Now()}
	ctx := context.Background()

	creator := New(kv, nil, testSignals).WithClock(clock.now)
	_ = creator.Create(ctx)

	// Same store read from a different environment.
	other := New(kv, nil, StaticSignals{Values: Signals{UserAgent: "curl/8.0"}}).WithClock(clock.now)
	if other.Load(ctx) {
		t.Fatal("session should not load under a different fingerprint")
	}
	if _, err := kv.Get(ctx, "admin_session"); !errors.Is(err, store.ErrNotFound) {
		t.Error("mismatched record should be cleared")
	}
}

func TestLoad_CorruptRecordReadsAsAbsent(t *testing.T) {
	m, kv, _ := newTestManager()
	ctx := context.Background()

	_ = kv.Set(ctx, "admin_session", []byte("{broken"))
	if m.Load(ctx) {
		t.Error("corrupt record should read as no session")
	}
}

func TestCreate_RemovesLegacyArtifact(t *testing.T) {
	kv := store.NewMemory()
	legacy := store.NewMemory()
	ctx := context.Background()

	_ = legacy.Set(ctx, "sig_admin_session", []byte(`{"ts":123}`))

	m := New(kv, legacy, testSignals)
	_ = m.Create(ctx)

	if _, err := legacy.Get(ctx, "sig_admin_session"); !errors.Is(err, store.ErrNotFound) {
		t.Error("legacy session artifact should be removed on create")
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint(testSignals)
	b := Fingerprint(testSignals)
	if a != b {
		t.Errorf("fingerprint not deterministic: %q vs %q", a, b)
	}

	other := Fingerprint(StaticSignals{Values: Signals{UserAgent: "different"}})
	if a == other {
		t.Error("different signals should fingerprint differently")
	}

	if got := Fingerprint(nil); got != fallbackFingerprint {
		t.Errorf("nil provider: want %q, got %q", fallbackFingerprint, got)
	}
	if got := Fingerprint(failingSignals{}); got != fallbackFingerprint {
		t.Errorf("failing provider: want %q, got %q", fallbackFingerprint, got)
	}

	// Non-ASCII signals hash over UTF-16 code units without error.
	if got := Fingerprint(StaticSignals{Values: Signals{Language: "한국어", Timezone: "Asia/Seoul"}}); got == "" || got == fallbackFingerprint {
		t.Errorf("non-ASCII signals should produce a real fingerprint, got %q", got)
	}
}

type failingSignals struct{}

func (failingSignals) Signals() (Signals, error) {
	return Signals{}, errors.New("no environment")
}

func storedExpiry(t *testing.T, kv store.KV) int64 {
	t.Helper()
	data, err := kv.Get(context.Background(), "admin_session")
	if err != nil {
		t.Fatalf("session record missing: %v", err)
	}
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	return r.ExpiresAt
}
