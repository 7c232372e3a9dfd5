package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/verdanthq/verdant/internal/changelog"
	"github.com/verdanthq/verdant/internal/domain"
	"github.com/verdanthq/verdant/internal/repository"
	"github.com/verdanthq/verdant/internal/service"
)

// GardenHandler handles gardens, memberships, and invites.
type GardenHandler struct {
	gardens *repository.GardenRepository
	users   service.UserStore
	access  *service.AccessService
	changes *changelog.Tracker
}

// NewGardenHandler creates a new GardenHandler.
func NewGardenHandler(gardens *repository.GardenRepository, users service.UserStore, access *service.AccessService, changes *changelog.Tracker) *GardenHandler {
	return &GardenHandler{gardens: gardens, users: users, access: access, changes: changes}
}

// List returns the gardens the user belongs to.
func (h *GardenHandler) List(c echo.Context) error {
	userID, _ := GetUserID(c)

	gardens, err := h.gardens.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return JSONList(c, http.StatusOK, gardens, len(gardens))
}

type createGardenRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	PostalCode  *string `json:"postal_code,omitempty" validate:"omitempty,min=3,max=10"`
}

// Create makes a new garden owned by the caller.
func (h *GardenHandler) Create(c echo.Context) error {
	userID, _ := GetUserID(c)

	var req createGardenRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	garden, err := h.gardens.Create(c.Request().Context(), domain.Garden{
		OwnerID:     userID,
		Name:        req.Name,
		Description: req.Description,
		PostalCode:  req.PostalCode,
	})
	if err != nil {
		return err
	}
	return JSON(c, http.StatusCreated, garden)
}

// Get returns one garden.
func (h *GardenHandler) Get(c echo.Context) error {
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
	return JSON(c, http.StatusOK, garden)
}

type updateGardenRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	PostalCode  *string `json:"postal_code,omitempty" validate:"omitempty,min=3,max=10"`
}

// Update applies a partial update to a garden.
func (h *GardenHandler) Update(c echo.Context) error {
	userID, _ := GetUserID(c)
	gardenID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.access.RequireEditor(ctx, gardenID, userID); err != nil {
		return err
	}

	var req updateGardenRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	before, err := h.gardens.FindByID(ctx, gardenID)
	if err != nil {
		return err
	}

	garden, err := h.gardens.Update(ctx, gardenID, req.Name, req.Description, req.PostalCode)
	if err != nil {
		return err
	}

	h.changes.Record(ctx, "garden", garden.ID, garden.Name, garden.Name, userID,
		changelog.DiffGarden(*before, *garden))

	return JSON(c, http.StatusOK, garden)
}

// Delete removes a garden and everything under it.
func (h *GardenHandler) Delete(c echo.Context) error {
	userID, _ := GetUserID(c)
	gardenID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.access.RequireOwner(ctx, gardenID, userID); err != nil {
		return err
	}

	if err := h.gardens.Delete(ctx, gardenID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListMembers returns a garden's membership roster.
func (h *GardenHandler) ListMembers(c echo.Context) error {
	userID, _ := GetUserID(c)
	gardenID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.access.RequireViewer(ctx, gardenID, userID); err != nil {
		return err
	}

	members, err := h.gardens.ListMembers(ctx, gardenID)
	if err != nil {
		return err
	}
	return JSONList(c, http.StatusOK, members, len(members))
}

// RemoveMember removes a member from a garden. Owners cannot remove
// themselves; they delete the garden or transfer it instead.
func (h *GardenHandler) RemoveMember(c echo.Context) error {
	userID, _ := GetUserID(c)
	gardenID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	memberID, err := parseID(c, "userID")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.access.RequireOwner(ctx, gardenID, userID); err != nil {
		return err
	}
	if memberID == userID {
		return fmt.Errorf("%w: owners cannot remove themselves", domain.ErrInvalidInput)
	}

	if err := h.gardens.RemoveMember(ctx, gardenID, memberID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type createInviteRequest struct {
	Email string            `json:"email" validate:"required,email"`
	Role  domain.MemberRole `json:"role" validate:"required,oneof=editor viewer"`
}

// CreateInvite issues an invitation token for an email address.
func (h *GardenHandler) CreateInvite(c echo.Context) error {
	userID, _ := GetUserID(c)
	gardenID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.access.RequireOwner(ctx, gardenID, userID); err != nil {
		return err
	}

	var req createInviteRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	invite, err := h.gardens.CreateInvite(ctx, domain.GardenInvite{
		GardenID: gardenID,
		Email:    strings.ToLower(req.Email),
		Role:     req.Role,
		Token:    uuid.NewString(),
	})
	if err != nil {
		return err
	}
	return JSON(c, http.StatusCreated, invite)
}

type acceptInviteRequest struct {
	Token string `json:"token" validate:"required"`
}

// AcceptInvite redeems an invite token for the authenticated user. The
// invite must have been issued to the user's email.
func (h *GardenHandler) AcceptInvite(c echo.Context) error {
	userID, _ := GetUserID(c)

	var req acceptInviteRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	invite, err := h.gardens.FindInviteByToken(ctx, req.Token)
	if err != nil {
		return err
	}

	user, err := h.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !strings.EqualFold(user.Email, invite.Email) {
		return domain.ErrForbidden
	}

	if err := h.gardens.AddMember(ctx, invite.GardenID, userID, invite.Role); err != nil {
		return err
	}
	if err := h.gardens.MarkInviteAccepted(ctx, invite.ID); err != nil {
		return err
	}

	garden, err := h.gardens.FindByID(ctx, invite.GardenID)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, garden)
}
