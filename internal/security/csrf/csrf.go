// Package csrf manages the double-submit token for one browsing scope: a
// single 256-bit hex token held in an injected key-value store, echoed back
// by the SPA on state-changing requests and rotated after each protected
// submission.
package csrf

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/sigstudio/sigsite/internal/store"
)

// tokenKey is the logical key of the token inside its scope.
const tokenKey = "csrf_token"

// tokenBytes is the number of random bytes in a token (32 bytes = 256 bits,
// hex-encoded to 64 lowercase characters).
const tokenBytes = 32

// Manager holds at most one valid token per scope at a time.
type Manager struct {
	kv store.KV
}

// New creates a manager over the given scope store.
func New(kv store.KV) *Manager {
	return &Manager{kv: kv}
}

// Init returns the stored token, generating and storing a fresh one if none
// exists. Idempotent: repeated calls within a scope return the same token.
func (m *Manager) Init(ctx context.Context) (string, error) {
	if data, err := m.kv.Get(ctx, tokenKey); err == nil && len(data) > 0 {
		return string(data), nil
	}
	return m.Rotate(ctx)
}

// Token returns the stored token, or "" and false when uninitialized.
func (m *Manager) Token(ctx context.Context) (string, bool) {
	data, err := m.kv.Get(ctx, tokenKey)
	if err != nil || len(data) == 0 {
		return "", false
	}
	return string(data), true
}

// Verify reports whether submitted matches the stored token. It returns
// false immediately when no token is stored, the input is empty, or the
// lengths differ. The length short-circuit leaks only the token length,
// an accepted tradeoff for a double-submit token. The content comparison
// itself is constant-time so execution does not depend on where the first
// mismatching byte sits.
func (m *Manager) Verify(ctx context.Context, submitted string) bool {
	stored, ok := m.Token(ctx)
	if !ok || submitted == "" {
		return false
	}
	if len(stored) != len(submitted) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}

// Rotate unconditionally generates, stores, and returns a fresh token,
// invalidating the previous one. Called after a protected form submission
// completes to prevent token replay.
func (m *Manager) Rotate(ctx context.Context) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("generating csrf token: %w", err)
	}
	if err := m.kv.Set(ctx, tokenKey, []byte(token)); err != nil {
		return "", fmt.Errorf("storing csrf token: %w", err)
	}
	return token, nil
}

// generateToken creates a cryptographically random hex-encoded token.
func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
