package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/verdanthq/verdant/internal/changelog"
	"github.com/verdanthq/verdant/internal/domain"
	"github.com/verdanthq/verdant/internal/repository"
	"github.com/verdanthq/verdant/internal/service"
)

// RoomHandler handles rooms within a garden.
type RoomHandler struct {
	rooms   *repository.RoomRepository
	gardens *repository.GardenRepository
	access  *service.AccessService
	changes *changelog.Tracker
}

// NewRoomHandler creates a new RoomHandler.
func NewRoomHandler(rooms *repository.RoomRepository, gardens *repository.GardenRepository, access *service.AccessService, changes *changelog.Tracker) *RoomHandler {
	return &RoomHandler{rooms: rooms, gardens: gardens, access: access, changes: changes}
}

// List returns a garden's rooms.
func (h *RoomHandler) List(c echo.Context) error {
	userID, _ := GetUserID(c)
	gardenID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.access.RequireViewer(ctx, gardenID, userID); err != nil {
		return err
	}

	rooms, err := h.rooms.ListByGarden(ctx, gardenID)
	if err != nil {
		return err
	}
	return JSONList(c, http.StatusOK, rooms, len(rooms))
}

type createRoomRequest struct {
	Name     string  `json:"name" validate:"required,min=1,max=100"`
	RoomType *string `json:"room_type,omitempty" validate:"omitempty,max=50"`
}

// Create adds a room to a garden.
func (h *RoomHandler) Create(c echo.Context) error {
	userID, _ := GetUserID(c)
	gardenID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.access.RequireEditor(ctx, gardenID, userID); err != nil {
		return err
	}

	var req createRoomRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	room, err := h.rooms.Create(ctx, domain.Room{
		GardenID: gardenID,
		Name:     req.Name,
		RoomType: req.RoomType,
	})
	if err != nil {
		return err
	}
	return JSON(c, http.StatusCreated, room)
}

// Get returns one room.
func (h *RoomHandler) Get(c echo.Context) error {
	userID, _ := GetUserID(c)
	roomID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	room, err := h.rooms.FindByID(ctx, roomID)
	if err != nil {
		return err
	}
	if err := h.access.RequireViewer(ctx, room.GardenID, userID); err != nil {
		return err
	}
	return JSON(c, http.StatusOK, room)
}

type updateRoomRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	RoomType *string `json:"room_type,omitempty" validate:"omitempty,max=50"`
}

// Update applies a partial update to a room.
func (h *RoomHandler) Update(c echo.Context) error {
	userID, _ := GetUserID(c)
	roomID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	before, err := h.rooms.FindByID(ctx, roomID)
	if err != nil {
		return err
	}
	if err := h.access.RequireEditor(ctx, before.GardenID, userID); err != nil {
		return err
	}

	var req updateRoomRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	room, err := h.rooms.Update(ctx, roomID, req.Name, req.RoomType)
	if err != nil {
		return err
	}

	path := room.Name
	if garden, gerr := h.gardens.FindByID(ctx, room.GardenID); gerr == nil {
		path = garden.Name + " / " + room.Name
	}
	h.changes.Record(ctx, "room", room.ID, room.Name, path, userID,
		changelog.DiffRoom(*before, *room))

	return JSON(c, http.StatusOK, room)
}

// Delete removes a room and everything in it.
func (h *RoomHandler) Delete(c echo.Context) error {
	userID, _ := GetUserID(c)
	roomID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	room, err := h.rooms.FindByID(ctx, roomID)
	if err != nil {
		return err
	}
	if err := h.access.RequireEditor(ctx, room.GardenID, userID); err != nil {
		return err
	}

	if err := h.rooms.Delete(ctx, roomID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
