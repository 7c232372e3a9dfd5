package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/verdanthq/verdant/internal/changelog"
	"github.com/verdanthq/verdant/internal/domain"
	"github.com/verdanthq/verdant/internal/repository"
	"github.com/verdanthq/verdant/internal/service"
)

// PlantHandler handles plants within a zone.
type PlantHandler struct {
	plants  *repository.PlantRepository
	zones   *repository.ZoneRepository
	access  *service.AccessService
	changes *changelog.Tracker
}

// NewPlantHandler creates a new PlantHandler.
func NewPlantHandler(plants *repository.PlantRepository, zones *repository.ZoneRepository, access *service.AccessService, changes *changelog.Tracker) *PlantHandler {
	return &PlantHandler{plants: plants, zones: zones, access: access, changes: changes}
}

// List returns a zone's plants.
func (h *PlantHandler) List(c echo.Context) error {
	userID, _ := GetUserID(c)
	zoneID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	zctx, err := h.zones.Context(ctx, zoneID)
	if err != nil {
		return err
	}
	if err := h.access.RequireViewer(ctx, zctx.GardenID, userID); err != nil {
		return err
	}

	plants, err := h.plants.ListByZone(ctx, zoneID)
	if err != nil {
		return err
	}
	return JSONList(c, http.StatusOK, plants, len(plants))
}

type createPlantRequest struct {
	Name           string             `json:"name" validate:"required,min=1,max=100"`
	Species        *string            `json:"species,omitempty" validate:"omitempty,max=100"`
	GrowthStage    domain.GrowthStage `json:"growth_stage,omitempty" validate:"omitempty,oneof=seedling vegetative flowering"`
	PlantedAt      *time.Time         `json:"planted_at,omitempty"`
	HeatSensitive  bool               `json:"heat_sensitive"`
	FrostSensitive bool               `json:"frost_sensitive"`
	WindSensitive  bool               `json:"wind_sensitive"`
	FloodSensitive bool               `json:"flood_sensitive"`
	Notes          *string            `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// Create adds a plant to a zone.
func (h *PlantHandler) Create(c echo.Context) error {
	userID, _ := GetUserID(c)
	zoneID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	zctx, err := h.zones.Context(ctx, zoneID)
	if err != nil {
		return err
	}
	if err := h.access.RequireEditor(ctx, zctx.GardenID, userID); err != nil {
		return err
	}

	var req createPlantRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	plant, err := h.plants.Create(ctx, domain.Plant{
		ZoneID:         zoneID,
		Name:           req.Name,
		Species:        req.Species,
		GrowthStage:    req.GrowthStage,
		PlantedAt:      req.PlantedAt,
		HeatSensitive:  req.HeatSensitive,
		FrostSensitive: req.FrostSensitive,
		WindSensitive:  req.WindSensitive,
		FloodSensitive: req.FloodSensitive,
		Notes:          req.Notes,
	})
	if err != nil {
		return err
	}
	return JSON(c, http.StatusCreated, plant)
}

// Get returns one plant.
func (h *PlantHandler) Get(c echo.Context) error {
	userID, _ := GetUserID(c)
	plantID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	plant, err := h.plants.FindByID(ctx, plantID)
	if err != nil {
		return err
	}
	zctx, err := h.zones.Context(ctx, plant.ZoneID)
	if err != nil {
		return err
	}
	if err := h.access.RequireViewer(ctx, zctx.GardenID, userID); err != nil {
		return err
	}
	return JSON(c, http.StatusOK, plant)
}

type updatePlantRequest struct {
	Name           *string             `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Species        *string             `json:"species,omitempty" validate:"omitempty,max=100"`
	GrowthStage    *domain.GrowthStage `json:"growth_stage,omitempty" validate:"omitempty,oneof=seedling vegetative flowering"`
	PlantedAt      *time.Time          `json:"planted_at,omitempty"`
	HeatSensitive  *bool               `json:"heat_sensitive,omitempty"`
	FrostSensitive *bool               `json:"frost_sensitive,omitempty"`
	WindSensitive  *bool               `json:"wind_sensitive,omitempty"`
	FloodSensitive *bool               `json:"flood_sensitive,omitempty"`
	Notes          *string             `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// Update applies a partial update to a plant.
func (h *PlantHandler) Update(c echo.Context) error {
	userID, _ := GetUserID(c)
	plantID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	before, err := h.plants.FindByID(ctx, plantID)
	if err != nil {
		return err
	}
	zctx, err := h.zones.Context(ctx, before.ZoneID)
	if err != nil {
		return err
	}
	if err := h.access.RequireEditor(ctx, zctx.GardenID, userID); err != nil {
		return err
	}

	var req updatePlantRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	updated := *before
	if req.Name != nil {
		updated.Name = *req.Name
	}
	if req.Species != nil {
		updated.Species = req.Species
	}
	if req.GrowthStage != nil {
		updated.GrowthStage = *req.GrowthStage
	}
	if req.PlantedAt != nil {
		updated.PlantedAt = req.PlantedAt
	}
	if req.HeatSensitive != nil {
		updated.HeatSensitive = *req.HeatSensitive
	}
	if req.FrostSensitive != nil {
		updated.FrostSensitive = *req.FrostSensitive
	}
	if req.WindSensitive != nil {
		updated.WindSensitive = *req.WindSensitive
	}
	if req.FloodSensitive != nil {
		updated.FloodSensitive = *req.FloodSensitive
	}
	if req.Notes != nil {
		updated.Notes = req.Notes
	}

	plant, err := h.plants.Update(ctx, updated)
	if err != nil {
		return err
	}

	h.changes.Record(ctx, "plant", plant.ID, plant.Name, zctx.Path(), userID,
		changelog.DiffPlant(*before, *plant))

	return JSON(c, http.StatusOK, plant)
}

// Delete removes a plant.
func (h *PlantHandler) Delete(c echo.Context) error {
	userID, _ := GetUserID(c)
	plantID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	plant, err := h.plants.FindByID(ctx, plantID)
	if err != nil {
		return err
	}
	zctx, err := h.zones.Context(ctx, plant.ZoneID)
	if err != nil {
		return err
	}
	if err := h.access.RequireEditor(ctx, zctx.GardenID, userID); err != nil {
		return err
	}

	if err := h.plants.Delete(ctx, plantID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
