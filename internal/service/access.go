package service

import (
	"context"
	"errors"

	"github.com/verdanthq/verdant/internal/domain"
)

// MembershipStore resolves a user's role within a garden.
type MembershipStore interface {
	MemberRole(ctx context.Context, gardenID, userID int64) (domain.MemberRole, error)
}

// AccessService enforces garden-level authorization: viewers read,
// editors change garden contents, owners manage the garden itself.
type AccessService struct {
	members MembershipStore
}

// NewAccessService creates an AccessService.
func NewAccessService(members MembershipStore) *AccessService {
	return &AccessService{members: members}
}

// Role returns the user's role, or ErrForbidden for non-members.
func (s *AccessService) Role(ctx context.Context, gardenID, userID int64) (domain.MemberRole, error) {
	role, err := s.members.MemberRole(ctx, gardenID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrForbidden
		}
		return "", err
	}
	return role, nil
}

// RequireViewer allows any member.
func (s *AccessService) RequireViewer(ctx context.Context, gardenID, userID int64) error {
	return s.require(ctx, gardenID, userID, domain.MemberRole.CanView)
}

// RequireEditor allows owners and editors.
func (s *AccessService) RequireEditor(ctx context.Context, gardenID, userID int64) error {
	return s.require(ctx, gardenID, userID, domain.MemberRole.CanEdit)
}

// RequireOwner allows only the owner.
func (s *AccessService) RequireOwner(ctx context.Context, gardenID, userID int64) error {
	return s.require(ctx, gardenID, userID, domain.MemberRole.CanManage)
}

func (s *AccessService) require(ctx context.Context, gardenID, userID int64, allowed func(domain.MemberRole) bool) error {
	role, err := s.Role(ctx, gardenID, userID)
	if err != nil {
		return err
	}
	if !allowed(role) {
		return domain.ErrForbidden
	}
	return nil
}
