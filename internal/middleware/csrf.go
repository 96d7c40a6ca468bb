package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// csrfHeaderName is the header the SPA sends the CSRF token in.
const csrfHeaderName = "X-CSRF-Token"

// CSRF returns middleware that protects state-changing requests with a
// per-scope token. The SPA obtains the token from the session endpoint and
// echoes it back in the X-CSRF-Token header; the middleware compares it
// against the token stored in the request's security scope.
//
// Safe methods (GET, HEAD, OPTIONS) pass through untouched. A missing
// scope, missing header, or mismatched token rejects with 403.
func CSRF() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if isSafeMethod(c.Request().Method) {
				return next(c)
			}

			scope, ok := ScopeFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusForbidden, "missing security scope")
			}

			submitted := c.Request().Header.Get(csrfHeaderName)
			if !scope.CSRF.Verify(c.Request().Context(), submitted) {
				return echo.NewHTTPError(http.StatusForbidden, "invalid or missing CSRF token")
			}

			return next(c)
		}
	}
}

// isSafeMethod returns true for HTTP methods that should not change state.
func isSafeMethod(method string) bool {
	return method == http.MethodGet ||
		method == http.MethodHead ||
		method == http.MethodOptions
}
