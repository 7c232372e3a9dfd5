package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/verdanthq/verdant/internal/domain"
	"github.com/verdanthq/verdant/internal/repository"
	"github.com/verdanthq/verdant/internal/service"
)

// ChangeLogHandler exposes the audit history.
type ChangeLogHandler struct {
	changes *repository.ChangeLogRepository
	gardens *repository.GardenRepository
	access  *service.AccessService
}

// NewChangeLogHandler creates a new ChangeLogHandler.
func NewChangeLogHandler(changes *repository.ChangeLogRepository, gardens *repository.GardenRepository, access *service.AccessService) *ChangeLogHandler {
	return &ChangeLogHandler{changes: changes, gardens: gardens, access: access}
}

var changeLogEntityTypes = map[string]bool{
	"garden": true,
	"room":   true,
	"zone":   true,
	"plant":  true,
}

// List returns a garden's change history, newest first. Passing
// ?entity_type= and ?entity_id= narrows it to one entity.
func (h *ChangeLogHandler) List(c echo.Context) error {
	userID, _ := GetUserID(c)
	gardenID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.access.RequireViewer(ctx, gardenID, userID); err != nil {
		return err
	}

	if entityType := c.QueryParam("entity_type"); entityType != "" {
		if !changeLogEntityTypes[entityType] {
			return &domain.ValidationError{Field: "entity_type", Message: "unknown entity type"}
		}
		entityID := int64(queryInt(c, "entity_id", 0))
		if entityID <= 0 {
			return &domain.ValidationError{Field: "entity_id", Message: "required with entity_type"}
		}
		entries, err := h.changes.ListByEntity(ctx, entityType, entityID)
		if err != nil {
			return err
		}
		return JSONList(c, http.StatusOK, entries, len(entries))
	}

	garden, err := h.gardens.FindByID(ctx, gardenID)
	if err != nil {
		return err
	}
	entries, err := h.changes.ListByGarden(ctx, garden.Name, queryInt(c, "limit", 0))
	if err != nil {
		return err
	}
	return JSONList(c, http.StatusOK, entries, len(entries))
}
