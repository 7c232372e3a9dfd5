package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/verdanthq/verdant/internal/domain"
	"github.com/verdanthq/verdant/internal/repository"
	"github.com/verdanthq/verdant/internal/service"
)

// LogHandler handles activity log entries.
type LogHandler struct {
	logs   *repository.LogRepository
	plants *repository.PlantRepository
	zones  *repository.ZoneRepository
	access *service.AccessService
}

// NewLogHandler creates a new LogHandler.
func NewLogHandler(logs *repository.LogRepository, plants *repository.PlantRepository, zones *repository.ZoneRepository, access *service.AccessService) *LogHandler {
	return &LogHandler{logs: logs, plants: plants, zones: zones, access: access}
}

// List returns the caller's log entries, optionally filtered by plant
// or zone.
func (h *LogHandler) List(c echo.Context) error {
	userID, _ := GetUserID(c)

	filter := repository.LogFilter{Limit: queryInt(c, "limit", 0)}
	if v := queryInt(c, "plant_id", 0); v > 0 {
		id := int64(v)
		filter.PlantID = &id
	}
	if v := queryInt(c, "zone_id", 0); v > 0 {
		id := int64(v)
		filter.ZoneID = &id
	}

	entries, err := h.logs.List(c.Request().Context(), userID, filter)
	if err != nil {
		return err
	}
	return JSONList(c, http.StatusOK, entries, len(entries))
}

type createLogRequest struct {
	PlantID  *int64          `json:"plant_id,omitempty"`
	ZoneID   *int64          `json:"zone_id,omitempty"`
	Activity domain.Activity `json:"activity" validate:"required,oneof=watering feeding pruning transplant harvest observation"`
	Note     *string         `json:"note,omitempty" validate:"omitempty,max=2000"`
	LoggedAt *time.Time      `json:"logged_at,omitempty"`
}

// Create records an activity against a plant or zone. At least one
// target is required; the caller must be able to edit its garden.
func (h *LogHandler) Create(c echo.Context) error {
	userID, _ := GetUserID(c)

	var req createLogRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.PlantID == nil && req.ZoneID == nil {
		return &domain.ValidationError{Field: "plant_id", Message: "a plant_id or zone_id is required"}
	}

	ctx := c.Request().Context()

	zoneID := req.ZoneID
	if req.PlantID != nil {
		plant, err := h.plants.FindByID(ctx, *req.PlantID)
		if err != nil {
			return err
		}
		// A plant entry may carry an explicit zone, but it must be
		// the plant's own zone.
		if zoneID != nil && *zoneID != plant.ZoneID {
			return &domain.ValidationError{Field: "zone_id", Message: "does not match the plant's zone"}
		}
		id := plant.ZoneID
		zoneID = &id
	}

	zctx, err := h.zones.Context(ctx, *zoneID)
	if err != nil {
		return err
	}
	if err := h.access.RequireEditor(ctx, zctx.GardenID, userID); err != nil {
		return err
	}

	entry := domain.LogEntry{
		PlantID:  req.PlantID,
		ZoneID:   req.ZoneID,
		UserID:   userID,
		Activity: req.Activity,
		Note:     req.Note,
	}
	if req.LoggedAt != nil {
		entry.LoggedAt = *req.LoggedAt
	}

	created, err := h.logs.Create(ctx, entry)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusCreated, created)
}

// Delete removes one of the caller's own log entries.
func (h *LogHandler) Delete(c echo.Context) error {
	userID, _ := GetUserID(c)
	logID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.logs.Delete(c.Request().Context(), logID, userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
