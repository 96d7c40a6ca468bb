package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sigstudio/sigsite/internal/middleware"
)

// errMissingScope signals that the security scope middleware did not run
// before a handler that depends on it.
var errMissingScope = errors.New("security scope not attached to request")

// RequireAdmin returns middleware that rejects requests whose scope holds
// no live admin session. Loading the session also applies expiry,
// fingerprint checks, and silent renewal as side effects.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			scope, ok := middleware.ScopeFrom(c)
			if !ok || !scope.Sessions.Load(c.Request().Context()) {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error":   "unauthorized",
					"message": "authentication required",
				})
			}
			return next(c)
		}
	}
}
