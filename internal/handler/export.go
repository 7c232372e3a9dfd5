package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/verdanthq/verdant/internal/export"
	"github.com/verdanthq/verdant/internal/repository"
	"github.com/verdanthq/verdant/internal/service"
)

// ExportHandler streams garden data archives.
type ExportHandler struct {
	exporter *export.Exporter
	gardens  *repository.GardenRepository
	access   *service.AccessService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exporter *export.Exporter, gardens *repository.GardenRepository, access *service.AccessService) *ExportHandler {
	return &ExportHandler{exporter: exporter, gardens: gardens, access: access}
}

// Download streams a ZIP of the garden's data. The archive is written
// straight to the response, so a mid-stream failure cannot be turned
// into a clean error response.
func (h *ExportHandler) Download(c echo.Context) error {
	userID, _ := GetUserID(c)
	gardenID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.access.RequireViewer(ctx, gardenID, userID); err != nil {
		return err
	}

	garden, err := h.gardens.FindByID(ctx, gardenID)
	if err != nil {
		return err
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "application/zip")
	res.Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, export.Filename(garden, time.Now())))
	res.WriteHeader(http.StatusOK)

	return h.exporter.WriteArchive(ctx, res, gardenID, userID)
}
