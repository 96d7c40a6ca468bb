// Package session manages the single authenticated admin session of one
// browsing scope: creation on login, validation and silent renewal on every
// protected read, and teardown on logout, expiry, or fingerprint mismatch.
// The record lives as JSON in an injected key-value store; the environment
// fingerprint comes from an injected signal provider so the algorithm is
// deterministic under test.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sigstudio/sigsite/internal/store"
)

// sessionKey is the logical key of the session record inside its scope.
const sessionKey = "admin_session"

// legacyKey is the key of the retired persistent session artifact, removed
// on create and clear as migration hygiene from the older storage scheme.
const legacyKey = "sig_admin_session"

const (
	// TTL is the session lifetime.
	TTL = 8 * time.Hour

	// RenewThreshold: a session loaded with less than this much lifetime
	// left is silently extended to a full TTL.
	RenewThreshold = 30 * time.Minute

	// idBytes is the entropy of a session id (32 bytes = 256 bits).
	idBytes = 32
)

// record is the persisted session state. ExpiresAt is milliseconds since
// epoch for interoperability with the SPA.
type record struct {
	SessionID   string `json:"sessionId"`
	ExpiresAt   int64  `json:"expiresAt"`
	Fingerprint string `json:"fingerprint"`
}

// Manager owns the session record of one scope. Exactly one session exists
// per scope; creating a new one overwrites the old.
type Manager struct {
	kv      store.KV
	legacy  store.KV
	signals SignalProvider
	now     func() time.Time
}

// New creates a session manager over the given scope store. legacy may be
// nil when no retired storage location needs cleanup.
func New(kv store.KV, legacy store.KV, signals SignalProvider) *Manager {
	if signals == nil {
		signals = StaticSignals{}
	}
	return &Manager{kv: kv, legacy: legacy, signals: signals, now: time.Now}
}

// WithClock replaces the manager's time source for deterministic expiry and
// renewal tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Create generates and stores a fresh session: a 256-bit random id, expiry
// one TTL out, and the current environment fingerprint. Any legacy
// persistent artifact is removed at the same time.
func (m *Manager) Create(ctx context.Context) error {
	id, err := generateID()
	if err != nil {
		return fmt.Errorf("generating session id: %w", err)
	}

	r := record{
		SessionID:   id,
		ExpiresAt:   m.now().Add(TTL).UnixMilli(),
		Fingerprint: Fingerprint(m.signals),
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	if err := m.kv.Set(ctx, sessionKey, data); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}

	if m.legacy != nil {
		_ = m.legacy.Delete(ctx, legacyKey)
	}
	return nil
}

// Load reports whether a valid session exists. Absent or corrupt records
// read as no session. An expired record or one whose recomputed fingerprint
// no longer matches is cleared and reads as no session. A valid session
// within the renewal threshold of expiry is extended in place.
func (m *Manager) Load(ctx context.Context) bool {
	data, err := m.kv.Get(ctx, sessionKey)
	if err != nil {
		return false
	}

	var r record
	if err := json.Unmarshal(data, &r); err != nil || r.SessionID == "" {
		// Corrupt data is treated as absence, never an error.
		return false
	}

	now := m.now()
	if now.UnixMilli() >= r.ExpiresAt {
		_ = m.Clear(ctx)
		return false
	}

	// The fingerprint is a tamper/confusion signal, not cryptographic
	// proof: a record copied into a different environment stops working.
	if r.Fingerprint != Fingerprint(m.signals) {
		slog.Warn("session fingerprint mismatch, clearing session")
		_ = m.Clear(ctx)
		return false
	}

	if time.UnixMilli(r.ExpiresAt).Sub(now) < RenewThreshold {
		r.ExpiresAt = now.Add(TTL).UnixMilli()
		if data, err := json.Marshal(r); err == nil {
			_ = m.kv.Set(ctx, sessionKey, data)
		}
	}

	return true
}

// Clear removes the session record from both the current and legacy
// storage locations. Idempotent.
func (m *Manager) Clear(ctx context.Context) error {
	err := m.kv.Delete(ctx, sessionKey)
	if m.legacy != nil {
		_ = m.legacy.Delete(ctx, legacyKey)
	}
	return err
}

// generateID creates a cryptographically random hex-encoded session id.
func generateID() (string, error) {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
