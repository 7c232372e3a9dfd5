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

// SeedHandler handles the garden-level seed inventory.
type SeedHandler struct {
	seeds  *repository.SeedRepository
	access *service.AccessService
}

// NewSeedHandler creates a new SeedHandler.
func NewSeedHandler(seeds *repository.SeedRepository, access *service.AccessService) *SeedHandler {
	return &SeedHandler{seeds: seeds, access: access}
}

// List returns a garden's seed inventory.
func (h *SeedHandler) List(c echo.Context) error {
	userID, _ := GetUserID(c)
	gardenID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.access.RequireViewer(ctx, gardenID, userID); err != nil {
		return err
	}

	seeds, err := h.seeds.ListByGarden(ctx, gardenID)
	if err != nil {
		return err
	}
	return JSONList(c, http.StatusOK, seeds, len(seeds))
}

type createSeedRequest struct {
	Name       string     `json:"name" validate:"required,min=1,max=100"`
	Species    *string    `json:"species,omitempty" validate:"omitempty,max=100"`
	Vendor     *string    `json:"vendor,omitempty" validate:"omitempty,max=100"`
	Quantity   int        `json:"quantity" validate:"gte=0"`
	AcquiredAt *time.Time `json:"acquired_at,omitempty"`
	Notes      *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// Create adds a seed entry to a garden.
func (h *SeedHandler) Create(c echo.Context) error {
	userID, _ := GetUserID(c)
	gardenID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.access.RequireEditor(ctx, gardenID, userID); err != nil {
		return err
	}

	var req createSeedRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	seed, err := h.seeds.Create(ctx, domain.Seed{
		GardenID:   gardenID,
		Name:       req.Name,
		Species:    req.Species,
		Vendor:     req.Vendor,
		Quantity:   req.Quantity,
		AcquiredAt: req.AcquiredAt,
		Notes:      req.Notes,
	})
	if err != nil {
		return err
	}
	return JSON(c, http.StatusCreated, seed)
}

// Get returns one seed entry.
func (h *SeedHandler) Get(c echo.Context) error {
	userID, _ := GetUserID(c)
	seedID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	seed, err := h.seeds.FindByID(ctx, seedID)
	if err != nil {
		return err
	}
	if err := h.access.RequireViewer(ctx, seed.GardenID, userID); err != nil {
		return err
	}
	return JSON(c, http.StatusOK, seed)
}

type updateSeedRequest struct {
	Name       *string    `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Species    *string    `json:"species,omitempty" validate:"omitempty,max=100"`
	Vendor     *string    `json:"vendor,omitempty" validate:"omitempty,max=100"`
	Quantity   *int       `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	AcquiredAt *time.Time `json:"acquired_at,omitempty"`
	Notes      *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// Update applies a partial update to a seed entry.
func (h *SeedHandler) Update(c echo.Context) error {
	userID, _ := GetUserID(c)
	seedID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	before, err := h.seeds.FindByID(ctx, seedID)
	if err != nil {
		return err
	}
	if err := h.access.RequireEditor(ctx, before.GardenID, userID); err != nil {
		return err
	}

	var req updateSeedRequest
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
	if req.Vendor != nil {
		updated.Vendor = req.Vendor
	}
	if req.Quantity != nil {
		updated.Quantity = *req.Quantity
	}
	if req.AcquiredAt != nil {
		updated.AcquiredAt = req.AcquiredAt
	}
	if req.Notes != nil {
		updated.Notes = req.Notes
	}

	seed, err := h.seeds.Update(ctx, updated)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, seed)
}

// Delete removes a seed entry.
func (h *SeedHandler) Delete(c echo.Context) error {
	userID, _ := GetUserID(c)
	seedID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	seed, err := h.seeds.FindByID(ctx, seedID)
	if err != nil {
		return err
	}
	if err := h.access.RequireEditor(ctx, seed.GardenID, userID); err != nil {
		return err
	}

	if err := h.seeds.Delete(ctx, seedID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
