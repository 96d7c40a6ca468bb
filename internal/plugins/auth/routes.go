package auth

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sigstudio/sigsite/internal/middleware"
)

// RegisterRoutes sets up the admin auth routes. RequireAdmin is exported
// separately for other plugins to use on their route groups.
//
// Login carries two rate limits: the per-scope limiter inside the service
// (window plus lockout) and a coarse per-IP cap here so one client cannot
// grind through scope cookies to bypass it.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.POST("/api/admin/login", h.Login, middleware.RateLimit(20, time.Minute))
	e.GET("/api/admin/session", h.Session)

	// Logout requires an active session and a valid CSRF token.
	e.POST("/api/admin/logout", h.Logout, RequireAdmin(), middleware.CSRF())
}
