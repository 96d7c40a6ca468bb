// Package security wires the per-scope security state machines (session,
// rate limiter, CSRF token) over one browsing scope's key-value namespace.
// A scope is the server-side analogue of one browser session: all three
// records live under "scope:<id>:" in the shared store and die together.
package security

import (
	"github.com/sigstudio/sigsite/internal/security/csrf"
	"github.com/sigstudio/sigsite/internal/security/ratelimit"
	"github.com/sigstudio/sigsite/internal/security/session"
	"github.com/sigstudio/sigsite/internal/store"
)

// Scope bundles the security managers of one browsing scope.
type Scope struct {
	Sessions *session.Manager
	Limiter  *ratelimit.Limiter
	CSRF     *csrf.Manager
}

// ForScope builds the managers for the scope identified by scopeID.
// signals supplies the environment fingerprint inputs; legacy, when
// non-nil, is the retired persistent store cleaned up on session
// create/clear.
func ForScope(kv store.KV, legacy store.KV, scopeID string, signals session.SignalProvider) Scope {
	ns := store.Namespace(kv, "scope:"+scopeID)
	return Scope{
		Sessions: session.New(ns, legacy, signals),
		Limiter:  ratelimit.New(ns),
		CSRF:     csrf.New(ns),
	}
}
