package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sigstudio/sigsite/internal/security"
	"github.com/sigstudio/sigsite/internal/security/session"
	"github.com/sigstudio/sigsite/internal/store"
)

// scopeCookieName identifies one browser's security scope. All per-browser
// security state (session, login rate limit, CSRF token) is keyed by it.
const scopeCookieName = "sig_scope"

// scopeContextKey is where the per-request security.Scope lives in the
// Echo context.
const scopeContextKey = "security_scope"

// SecurityScope returns middleware that assigns every browser a scope id
// via cookie and attaches the scope's security managers to the request
// context. The cookie is HttpOnly: the scope id is an opaque storage key,
// never an authentication credential.
func SecurityScope(kv store.KV, ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			id := ""
			if cookie, err := req.Cookie(scopeCookieName); err == nil {
				if parsed, err := uuid.Parse(cookie.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     scopeCookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					Secure:   req.TLS != nil || req.Header.Get("X-Forwarded-Proto") == "https",
					SameSite: http.SameSiteLaxMode,
				})
			}

			scope := security.ForScope(kv, kv, id, requestSignals{req: req})
			c.Set(scopeContextKey, scope)
			return next(c)
		}
	}
}

// ScopeFrom returns the security scope attached by SecurityScope.
func ScopeFrom(c echo.Context) (security.Scope, bool) {
	scope, ok := c.Get(scopeContextKey).(security.Scope)
	return scope, ok
}

// requestSignals derives environment signals from request headers. Only
// signals the browser sends on every request are used, so the fingerprint
// stays stable across a browsing session.
type requestSignals struct {
	req *http.Request
}

func (r requestSignals) Signals() (session.Signals, error) {
	return session.Signals{
		UserAgent: r.req.UserAgent(),
		Language:  r.req.Header.Get("Accept-Language"),
	}, nil
}
