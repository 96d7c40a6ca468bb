package contact

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sigstudio/sigsite/internal/middleware"
	"github.com/sigstudio/sigsite/internal/plugins/auth"
)

// RegisterRoutes sets up the public submission endpoint and the admin
// inbox. Submission is rate-limited per IP to blunt form spam.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.POST("/api/contact", h.Submit, middleware.RateLimit(5, time.Minute))

	g := e.Group("/api/admin/messages", auth.RequireAdmin(), middleware.CSRF())
	g.GET("", h.List)
	g.PATCH("/:id", h.SetStatus)
}
