package audit

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the audit feed under the admin API. The caller
// supplies the admin middleware so this package stays independent of the
// auth plugin.
func RegisterRoutes(e *echo.Echo, h *Handler, requireAdmin echo.MiddlewareFunc) {
	g := e.Group("/api/admin/audit", requireAdmin)
	g.GET("", h.List)
}
