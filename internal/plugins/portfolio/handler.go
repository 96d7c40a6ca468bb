package portfolio

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sigstudio/sigsite/internal/apperror"
	"github.com/sigstudio/sigsite/internal/validate"
)

// Handler handles HTTP requests for portfolio items. Handlers are thin:
// bind, call the service, shape the response.
type Handler struct {
	service Service
}

// NewHandler creates a portfolio handler with the given service.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListPublic returns published items (GET /api/portfolio).
func (h *Handler) ListPublic(c echo.Context) error {
	items, err := h.service.List(c.Request().Context(), ListOptions{
		Category: c.QueryParam("category"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// GetPublic returns one published item (GET /api/portfolio/:slug).
func (h *Handler) GetPublic(c echo.Context) error {
	item, err := h.service.GetBySlug(c.Request().Context(), c.Param("slug"), false)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// ListAdmin returns all items including unpublished (GET /api/admin/portfolio).
func (h *Handler) ListAdmin(c echo.Context) error {
	items, err := h.service.List(c.Request().Context(), ListOptions{
		IncludeUnpublished: true,
		Category:           c.QueryParam("category"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Create handles POST /api/admin/portfolio.
func (h *Handler) Create(c echo.Context) error {
	var input validate.PortfolioItem
	if err := c.Bind(&input); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	item, err := h.service.Create(c.Request().Context(), input, c.Request().UserAgent())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

// Update handles PUT /api/admin/portfolio/:id.
func (h *Handler) Update(c echo.Context) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}

	var input UpdateInput
	if err := c.Bind(&input); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	item, err := h.service.Update(c.Request().Context(), id, input, c.Request().UserAgent())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// Delete handles DELETE /api/admin/portfolio/:id.
func (h *Handler) Delete(c echo.Context) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), id, c.Request().UserAgent()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// itemID parses the :id path parameter.
func itemID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperror.NewBadRequest("invalid item id")
	}
	return id, nil
}
