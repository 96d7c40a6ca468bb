package app

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sigstudio/sigsite/internal/plugins/audit"
	"github.com/sigstudio/sigsite/internal/plugins/auth"
	"github.com/sigstudio/sigsite/internal/plugins/contact"
	"github.com/sigstudio/sigsite/internal/plugins/media"
	"github.com/sigstudio/sigsite/internal/plugins/portfolio"
)

// RegisterRoutes sets up all application routes. It constructs each
// plugin's repository/service/handler chain and delegates to the plugin's
// route registration function.
//
// This is the single place where all routes are aggregated. When a new
// plugin is added, its routes are registered here.
func (a *App) RegisterRoutes() {
	e := a.Echo

	// Health check endpoint for Docker health monitoring.
	e.GET("/healthz", func(c echo.Context) error {
		if err := a.DB.PingContext(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// --- Plugin Routes ---

	// auth: admin login, logout, session status.
	authService := auth.NewAuthService(a.Config.Admin, a.Config.IsDevelopment(), a.Audit)
	auth.RegisterRoutes(e, auth.NewHandler(authService))

	// portfolio: public case studies plus admin CRUD.
	portfolioService := portfolio.NewService(portfolio.NewRepository(a.DB), a.Audit)
	portfolio.RegisterRoutes(e, portfolio.NewHandler(portfolioService))

	// contact: public submissions plus admin inbox.
	contactService := contact.NewService(contact.NewRepository(a.DB))
	contact.RegisterRoutes(e, contact.NewHandler(contactService))

	// media: portfolio image uploads, thumbnails, and file serving.
	mediaService := media.NewService(media.NewRepository(a.DB), a.Audit, a.Config.Upload.MediaPath, a.Config.Upload.MaxSize)
	media.RegisterRoutes(e, media.NewHandler(mediaService, a.Config.Upload.MaxSize))

	// audit: read-only admin feed over the same table the emitter writes.
	audit.RegisterRoutes(e, audit.NewHandler(audit.NewRepository(a.DB)), auth.RequireAdmin())
}
