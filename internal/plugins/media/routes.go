package media

import (
	"github.com/labstack/echo/v4"

	"github.com/sigstudio/sigsite/internal/middleware"
	"github.com/sigstudio/sigsite/internal/plugins/auth"
)

// RegisterRoutes sets up public file serving and the admin media library.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	// Public file serving for published portfolio pages.
	e.GET("/api/media/:id", h.Serve)

	g := e.Group("/api/admin/media", auth.RequireAdmin(), middleware.CSRF())
	g.GET("", h.List)
	g.GET("/stats", h.Stats)
	g.POST("", h.Upload)
	g.DELETE("/:id", h.Delete)
}
