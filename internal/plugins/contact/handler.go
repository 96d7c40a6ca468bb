package contact

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sigstudio/sigsite/internal/apperror"
	"github.com/sigstudio/sigsite/internal/validate"
)

// inboxPerPage is the admin inbox page size.
const inboxPerPage = 50

// Handler handles HTTP requests for contact messages.
type Handler struct {
	service Service
}

// NewHandler creates a contact handler with the given service.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Submit handles POST /api/contact from the public site.
func (h *Handler) Submit(c echo.Context) error {
	var input validate.ContactMessage
	if err := c.Bind(&input); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	msg, err := h.service.Submit(c.Request().Context(), input)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"id":      msg.ID,
		"message": "Thanks for reaching out. We'll be in touch soon.",
	})
}

// List handles GET /api/admin/messages.
func (h *Handler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}

	messages, total, err := h.service.List(c.Request().Context(),
		c.QueryParam("status"), inboxPerPage, (page-1)*inboxPerPage)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"messages": messages,
		"total":    total,
		"page":     page,
	})
}

// SetStatus handles PATCH /api/admin/messages/:id.
func (h *Handler) SetStatus(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return apperror.NewBadRequest("invalid message id")
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	if err := h.service.SetStatus(c.Request().Context(), id, body.Status); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
