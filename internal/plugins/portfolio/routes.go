package portfolio

import (
	"github.com/labstack/echo/v4"

	"github.com/sigstudio/sigsite/internal/middleware"
	"github.com/sigstudio/sigsite/internal/plugins/auth"
)

// RegisterRoutes sets up public reads and admin CRUD for portfolio items.
// Admin mutations require both a live session and a valid CSRF token.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/api/portfolio", h.ListPublic)
	e.GET("/api/portfolio/:slug", h.GetPublic)

	g := e.Group("/api/admin/portfolio", auth.RequireAdmin(), middleware.CSRF())
	g.GET("", h.ListAdmin)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
