package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/verdanthq/verdant/internal/domain"
	"github.com/verdanthq/verdant/internal/repository"
	"github.com/verdanthq/verdant/internal/service"
)

// EquipmentHandler handles equipment and its maintenance tasks.
type EquipmentHandler struct {
	equipment *repository.EquipmentRepository
	rooms     *repository.RoomRepository
	access    *service.AccessService
	tasks     *service.TaskService
}

// NewEquipmentHandler creates a new EquipmentHandler.
func NewEquipmentHandler(equipment *repository.EquipmentRepository, rooms *repository.RoomRepository, access *service.AccessService, tasks *service.TaskService) *EquipmentHandler {
	return &EquipmentHandler{equipment: equipment, rooms: rooms, access: access, tasks: tasks}
}

// List returns a room's equipment.
func (h *EquipmentHandler) List(c echo.Context) error {
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

	items, err := h.equipment.ListByRoom(ctx, roomID)
	if err != nil {
		return err
	}
	return JSONList(c, http.StatusOK, items, len(items))
}

type createEquipmentRequest struct {
	Name          string  `json:"name" validate:"required,min=1,max=100"`
	EquipmentType *string `json:"equipment_type,omitempty" validate:"omitempty,max=50"`
	Manufacturer  *string `json:"manufacturer,omitempty" validate:"omitempty,max=100"`
	Notes         *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// Create adds equipment to a room.
func (h *EquipmentHandler) Create(c echo.Context) error {
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

	var req createEquipmentRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	eq, err := h.equipment.Create(ctx, domain.Equipment{
		RoomID:        roomID,
		Name:          req.Name,
		EquipmentType: req.EquipmentType,
		Manufacturer:  req.Manufacturer,
		Notes:         req.Notes,
	})
	if err != nil {
		return err
	}
	return JSON(c, http.StatusCreated, eq)
}

// Get returns one piece of equipment.
func (h *EquipmentHandler) Get(c echo.Context) error {
	userID, _ := GetUserID(c)
	equipmentID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.requireEquipmentAccess(c, equipmentID, userID, h.access.RequireViewer); err != nil {
		return err
	}

	eq, err := h.equipment.FindByID(ctx, equipmentID)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, eq)
}

type updateEquipmentRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	EquipmentType *string `json:"equipment_type,omitempty" validate:"omitempty,max=50"`
	Manufacturer  *string `json:"manufacturer,omitempty" validate:"omitempty,max=100"`
	Notes         *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// Update applies a partial update to equipment.
func (h *EquipmentHandler) Update(c echo.Context) error {
	userID, _ := GetUserID(c)
	equipmentID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.requireEquipmentAccess(c, equipmentID, userID, h.access.RequireEditor); err != nil {
		return err
	}

	var req updateEquipmentRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	before, err := h.equipment.FindByID(ctx, equipmentID)
	if err != nil {
		return err
	}
	updated := *before
	if req.Name != nil {
		updated.Name = *req.Name
	}
	if req.EquipmentType != nil {
		updated.EquipmentType = req.EquipmentType
	}
	if req.Manufacturer != nil {
		updated.Manufacturer = req.Manufacturer
	}
	if req.Notes != nil {
		updated.Notes = req.Notes
	}

	eq, err := h.equipment.Update(ctx, updated)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, eq)
}

// Delete removes equipment and its tasks.
func (h *EquipmentHandler) Delete(c echo.Context) error {
	userID, _ := GetUserID(c)
	equipmentID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.requireEquipmentAccess(c, equipmentID, userID, h.access.RequireEditor); err != nil {
		return err
	}

	if err := h.equipment.Delete(c.Request().Context(), equipmentID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListTasks returns the maintenance tasks attached to equipment.
func (h *EquipmentHandler) ListTasks(c echo.Context) error {
	userID, _ := GetUserID(c)
	equipmentID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.requireEquipmentAccess(c, equipmentID, userID, h.access.RequireViewer); err != nil {
		return err
	}

	tasks, err := h.equipment.ListTasksByEquipment(c.Request().Context(), equipmentID)
	if err != nil {
		return err
	}
	return JSONList(c, http.StatusOK, tasks, len(tasks))
}

type createTaskRequest struct {
	Title       string           `json:"title" validate:"required,min=1,max=200"`
	Frequency   domain.Frequency `json:"frequency" validate:"required"`
	NextDueDate *time.Time       `json:"next_due_date,omitempty"`
}

var validFrequencies = map[domain.Frequency]bool{
	domain.FreqDaily:      true,
	domain.FreqWeekly:     true,
	domain.FreqMonthly:    true,
	domain.FreqQuarterly:  true,
	domain.FreqHalfYearly: true,
	domain.FreqAnnually:   true,
}

// CreateTask adds a recurring maintenance task to equipment. Without an
// explicit first due date the schedule starts one interval from now.
func (h *EquipmentHandler) CreateTask(c echo.Context) error {
	userID, _ := GetUserID(c)
	equipmentID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.requireEquipmentAccess(c, equipmentID, userID, h.access.RequireEditor); err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if !validFrequencies[req.Frequency] {
		return &domain.ValidationError{Field: "frequency", Message: "unknown frequency"}
	}

	nextDue := req.Frequency.NextDue(time.Now())
	if req.NextDueDate != nil {
		nextDue = *req.NextDueDate
	}

	task, err := h.equipment.CreateTask(c.Request().Context(), domain.MaintenanceTask{
		EquipmentID: equipmentID,
		Title:       req.Title,
		Frequency:   req.Frequency,
		NextDueDate: nextDue,
	})
	if err != nil {
		return err
	}
	return JSON(c, http.StatusCreated, task)
}

type updateTaskRequest struct {
	Title       *string           `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Frequency   *domain.Frequency `json:"frequency,omitempty"`
	NextDueDate *time.Time        `json:"next_due_date,omitempty"`
	Completed   *bool             `json:"completed,omitempty"`
}

// UpdateTask applies a partial update to a maintenance task.
func (h *EquipmentHandler) UpdateTask(c echo.Context) error {
	userID, _ := GetUserID(c)
	taskID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.requireTaskAccess(c, taskID, userID, h.access.RequireEditor); err != nil {
		return err
	}

	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Frequency != nil && !validFrequencies[*req.Frequency] {
		return &domain.ValidationError{Field: "frequency", Message: "unknown frequency"}
	}

	before, err := h.equipment.FindTaskByID(ctx, taskID)
	if err != nil {
		return err
	}
	updated := *before
	if req.Title != nil {
		updated.Title = *req.Title
	}
	if req.Frequency != nil {
		updated.Frequency = *req.Frequency
	}
	if req.NextDueDate != nil {
		updated.NextDueDate = *req.NextDueDate
	}
	if req.Completed != nil {
		updated.Completed = *req.Completed
	}

	task, err := h.equipment.UpdateTask(ctx, updated)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, task)
}

// DeleteTask removes a maintenance task.
func (h *EquipmentHandler) DeleteTask(c echo.Context) error {
	userID, _ := GetUserID(c)
	taskID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.requireTaskAccess(c, taskID, userID, h.access.RequireEditor); err != nil {
		return err
	}

	if err := h.equipment.DeleteTask(c.Request().Context(), taskID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CompleteTask records a completion and rolls the due date forward.
func (h *EquipmentHandler) CompleteTask(c echo.Context) error {
	userID, _ := GetUserID(c)
	taskID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.requireTaskAccess(c, taskID, userID, h.access.RequireEditor); err != nil {
		return err
	}

	task, err := h.tasks.Complete(c.Request().Context(), taskID)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, task)
}

func (h *EquipmentHandler) requireEquipmentAccess(c echo.Context, equipmentID, userID int64, check func(ctx context.Context, gardenID, userID int64) error) error {
	ctx := c.Request().Context()
	gardenID, err := h.equipment.GardenID(ctx, equipmentID)
	if err != nil {
		return err
	}
	return check(ctx, gardenID, userID)
}

func (h *EquipmentHandler) requireTaskAccess(c echo.Context, taskID, userID int64, check func(ctx context.Context, gardenID, userID int64) error) error {
	ctx := c.Request().Context()
	gardenID, err := h.equipment.GardenIDForTask(ctx, taskID)
	if err != nil {
		return err
	}
	return check(ctx, gardenID, userID)
}
