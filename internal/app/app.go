// Package app is the application bootstrap and dependency injection root.
// It creates and holds all shared infrastructure (DB pool, Redis client,
// key-value store, audit emitter, Echo instance) and wires together all
// plugins.
package app

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/sigstudio/sigsite/internal/apperror"
	"github.com/sigstudio/sigsite/internal/config"
	"github.com/sigstudio/sigsite/internal/middleware"
	"github.com/sigstudio/sigsite/internal/plugins/audit"
	"github.com/sigstudio/sigsite/internal/sanitize"
	"github.com/sigstudio/sigsite/internal/store"
)

// App holds all shared dependencies and the Echo HTTP server instance.
// Created once at startup in main.go and used to register all routes.
type App struct {
	// Config holds the loaded application configuration.
	Config *config.Config

	// DB is the MariaDB connection pool shared by all plugins.
	DB *sql.DB

	// Redis is the raw Redis client.
	Redis *redis.Client

	// KV is the key-value capability the security managers run on,
	// backed by Redis with per-key TTL.
	KV store.KV

	// Audit is the shared best-effort audit emitter. Closed on shutdown
	// to drain queued entries.
	Audit *audit.Emitter

	// Echo is the HTTP server instance.
	Echo *echo.Echo
}

// New creates a new App instance with the given dependencies and configures
// the Echo server with global middleware and error handling.
func New(cfg *config.Config, db *sql.DB, rdb *redis.Client) *App {
	e := echo.New()

	// Disable Echo's default banner and startup message -- we log our own.
	e.HideBanner = true
	e.HidePort = true

	// Configure trusted reverse proxy IPs so c.RealIP() returns the actual
	// client IP instead of the proxy's IP. Critical for rate limiting and
	// audit logging.
	middleware.TrustedProxies(e, []string{
		"127.0.0.0/8",    // Localhost
		"10.0.0.0/8",     // Docker default bridge
		"172.16.0.0/12",  // Docker bridge (alternate range)
		"192.168.0.0/16", // Common LAN
		"fd00::/8",       // IPv6 private
	})

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		KV:     store.NewRedis(rdb, cfg.Admin.ScopeTTL),
		Audit:  audit.NewEmitter(audit.NewRepository(db)),
		Echo:   e,
	}

	// Register global middleware in order of execution.
	app.setupMiddleware()

	// Register the custom error handler that maps AppErrors to HTTP responses.
	e.HTTPErrorHandler = app.errorHandler

	return app
}

// setupMiddleware registers global middleware on the Echo instance.
// Order matters: outermost (recovery) runs first. CSRF is applied
// per-route-group, not globally, because only admin mutations need it.
func (a *App) setupMiddleware() {
	// Panic recovery -- must be outermost to catch panics from all other middleware.
	a.Echo.Use(middleware.Recovery())

	// Request logging -- log every request with method, path, status, latency.
	a.Echo.Use(middleware.RequestLogger())

	// Security headers -- CSP, X-Frame-Options, X-Content-Type-Options, etc.
	a.Echo.Use(middleware.SecurityHeaders())

	// CORS -- the SPA dev server runs on its own origin and sends cookies.
	a.Echo.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   a.Config.AllowedOrigins,
		AllowCredentials: true,
	}))

	// Security scope -- assigns the per-browser scope cookie and attaches
	// the scope's session/ratelimit/CSRF managers to every request.
	a.Echo.Use(middleware.SecurityScope(a.KV, a.Config.Admin.ScopeTTL))
}

// errorHandler is the custom Echo error handler. It maps domain errors
// (AppError) to JSON responses; everything this server speaks is JSON.
// Unknown errors are reduced to a user-safe message so internal details
// never leak to the client.
func (a *App) errorHandler(err error, c echo.Context) {
	// Don't double-write if response is already committed.
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "An unexpected error occurred"
	var fields map[string]string

	var appErr *apperror.AppError
	var echoErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		code = appErr.Code
		message = appErr.Message
		fields = appErr.Fields

		// Log internal errors with the underlying cause.
		if appErr.Internal != nil {
			slog.Error("internal error",
				slog.String("type", appErr.Type),
				slog.String("message", appErr.Message),
				slog.Any("internal", appErr.Internal),
				slog.String("path", c.Request().URL.Path),
			)
		}

	case errors.As(err, &echoErr):
		// Echo's built-in HTTP errors (e.g., 404 from the router).
		code = echoErr.Code
		if msg, ok := echoErr.Message.(string); ok {
			message = msg
		} else {
			message = defaultErrorMessage(code)
		}

	default:
		// Truly unexpected error -- log the real thing, send a scrubbed
		// message.
		slog.Error("unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Request().URL.Path),
		)
		message = sanitize.ErrorMessage(err)
	}

	body := map[string]any{
		"error":   http.StatusText(code),
		"message": message,
	}
	if len(fields) > 0 {
		body["fields"] = fields
	}
	c.JSON(code, body)
}

// defaultErrorMessage returns a user-friendly message for common HTTP status
// codes when no specific message was provided by the error.
func defaultErrorMessage(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "The request was invalid or cannot be processed."
	case http.StatusUnauthorized:
		return "You need to log in to perform this action."
	case http.StatusForbidden:
		return "You don't have permission to access this resource."
	case http.StatusNotFound:
		return "The resource you're looking for doesn't exist."
	case http.StatusMethodNotAllowed:
		return "This action is not allowed."
	case http.StatusConflict:
		return "This action conflicts with the current state."
	case http.StatusUnprocessableEntity:
		return "The submitted data could not be processed."
	case http.StatusTooManyRequests:
		return "You're making too many requests. Please slow down."
	case http.StatusInternalServerError:
		return "Something went wrong on our end. Please try again."
	case http.StatusBadGateway:
		return "The server received an invalid response."
	case http.StatusServiceUnavailable:
		return "The service is temporarily unavailable. Please try again later."
	default:
		return "An unexpected error occurred."
	}
}

// Close drains the audit queue. Called after the HTTP server has stopped.
func (a *App) Close() {
	a.Audit.Close()
}

// Start begins listening for HTTP requests on the configured port.
func (a *App) Start() error {
	addr := fmt.Sprintf(":%d", a.Config.Port)
	slog.Info("starting server",
		slog.String("addr", addr),
		slog.String("env", a.Config.Env),
	)
	return a.Echo.Start(addr)
}
