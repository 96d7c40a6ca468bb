package audit

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sigstudio/sigsite/internal/apperror"
)

// perPage is the number of audit entries returned per page.
const perPage = 50

// Handler serves the admin-facing audit log feed. Read-only: entries are
// appended through the Emitter, never through HTTP.
type Handler struct {
	repo Repository
}

// NewHandler creates an audit handler over the given repository.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// List returns a page of recent audit entries (GET /api/admin/audit).
// Pages are 1-indexed; invalid page numbers clamp to 1.
func (h *Handler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}

	entries, total, err := h.repo.ListRecent(c.Request().Context(), perPage, (page-1)*perPage)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("listing audit entries: %w", err))
	}
	if entries == nil {
		entries = []Entry{}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"entries": entries,
		"total":   total,
		"page":    page,
	})
}
