package media

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sigstudio/sigsite/internal/apperror"
)

const libraryPerPage = 50

// Handler handles HTTP requests for media operations.
type Handler struct {
	service Service
	maxSize int64
}

// NewHandler creates a new media handler.
func NewHandler(service Service, maxSize int64) *Handler {
	return &Handler{service: service, maxSize: maxSize}
}

// Upload handles POST /api/admin/media (multipart form, "file" field).
func (h *Handler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperror.NewBadRequest("missing file upload")
	}

	if fileHeader.Size > h.maxSize {
		return apperror.NewBadRequest(fmt.Sprintf("file too large; maximum size is %d MB", h.maxSize/(1024*1024)))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("opening uploaded file: %w", err))
	}
	defer src.Close()

	fileBytes, err := io.ReadAll(io.LimitReader(src, h.maxSize+1))
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("reading uploaded file: %w", err))
	}
	if int64(len(fileBytes)) > h.maxSize {
		return apperror.NewBadRequest(fmt.Sprintf("file too large; maximum size is %d MB", h.maxSize/(1024*1024)))
	}

	input := UploadInput{
		OriginalName: fileHeader.Filename,
		MimeType:     fileHeader.Header.Get("Content-Type"),
		FileSize:     int64(len(fileBytes)),
		FileBytes:    fileBytes,
	}

	file, err := h.service.Upload(c.Request().Context(), input, c.Request().UserAgent())
	if err != nil {
		return err
	}

	resp := UploadResponse{
		ID:       file.ID,
		URL:      "/api/media/" + file.ID,
		MimeType: file.MimeType,
		FileSize: file.FileSize,
	}
	if _, ok := file.ThumbnailPaths["300"]; ok {
		resp.ThumbnailURL = "/api/media/" + file.ID + "?size=300"
	}
	return c.JSON(http.StatusCreated, resp)
}

// Serve handles GET /api/media/:id, optionally with ?size=300 or ?size=800.
func (h *Handler) Serve(c echo.Context) error {
	file, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	path := h.service.FilePath(file)
	if size := c.QueryParam("size"); size != "" {
		path = h.service.ThumbnailPath(file, size)
	}

	c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	return c.File(path)
}

// List handles GET /api/admin/media for the admin library view.
func (h *Handler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}

	files, total, err := h.service.List(c.Request().Context(), libraryPerPage, (page-1)*libraryPerPage)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"files": files,
		"total": total,
		"page":  page,
	})
}

// Stats handles GET /api/admin/media/stats.
func (h *Handler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// Delete handles DELETE /api/admin/media/:id.
func (h *Handler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id"), c.Request().UserAgent()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
