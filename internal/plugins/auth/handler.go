package auth

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sigstudio/sigsite/internal/apperror"
	"github.com/sigstudio/sigsite/internal/middleware"
)

// retryAfterHeader carries the backoff hint (milliseconds) on failed login
// responses. The SPA disables the form for that long before retrying.
const retryAfterHeader = "X-Retry-After-Ms"

// Handler handles HTTP requests for admin authentication. Handlers are
// thin: they bind the request, call the service, and shape the response.
// No business logic lives here.
type Handler struct {
	service AuthService
}

// NewHandler creates a new auth handler with the given service.
func NewHandler(service AuthService) *Handler {
	return &Handler{service: service}
}

// Login processes POST /api/admin/login.
func (h *Handler) Login(c echo.Context) error {
	scope, ok := middleware.ScopeFrom(c)
	if !ok {
		return apperror.NewInternal(errMissingScope)
	}

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	ctx := c.Request().Context()
	resp, err := h.service.Login(ctx, scope, req.Password, c.Request().UserAgent())
	if err != nil {
		if delay := scope.Limiter.BackoffDelay(ctx); delay > 0 {
			c.Response().Header().Set(retryAfterHeader,
				strconv.FormatInt(delay.Milliseconds(), 10))
		}
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

// Logout processes POST /api/admin/logout.
func (h *Handler) Logout(c echo.Context) error {
	scope, ok := middleware.ScopeFrom(c)
	if !ok {
		return apperror.NewInternal(errMissingScope)
	}

	if err := h.service.Logout(c.Request().Context(), scope, c.Request().UserAgent()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Session reports auth state for GET /api/admin/session.
func (h *Handler) Session(c echo.Context) error {
	scope, ok := middleware.ScopeFrom(c)
	if !ok {
		return apperror.NewInternal(errMissingScope)
	}

	return c.JSON(http.StatusOK, h.service.Status(c.Request().Context(), scope))
}
