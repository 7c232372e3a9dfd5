package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verdanthq/verdant/internal/domain"
)

type fakeMembers struct {
	roles map[int64]domain.MemberRole // keyed by userID, single garden
}

func (f *fakeMembers) MemberRole(_ context.Context, _ int64, userID int64) (domain.MemberRole, error) {
	role, ok := f.roles[userID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return role, nil
}

func TestAccessService(t *testing.T) {
	access := NewAccessService(&fakeMembers{roles: map[int64]domain.MemberRole{
		1: domain.RoleOwner,
		2: domain.RoleEditor,
		3: domain.RoleViewer,
	}})
	ctx := context.Background()

	cases := []struct {
		name   string
		userID int64
		check  func(context.Context, int64, int64) error
		wantOK bool
	}{
		{"owner can view", 1, access.RequireViewer, true},
		{"owner can edit", 1, access.RequireEditor, true},
		{"owner can manage", 1, access.RequireOwner, true},
		{"editor can view", 2, access.RequireViewer, true},
		{"editor can edit", 2, access.RequireEditor, true},
		{"editor cannot manage", 2, access.RequireOwner, false},
		{"viewer can view", 3, access.RequireViewer, true},
		{"viewer cannot edit", 3, access.RequireEditor, false},
		{"viewer cannot manage", 3, access.RequireOwner, false},
		{"non-member cannot view", 4, access.RequireViewer, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.check(ctx, 10, tc.userID)
			if tc.wantOK {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrForbidden)
			}
		})
	}
}

func TestRole_NonMemberIsForbidden(t *testing.T) {
	access := NewAccessService(&fakeMembers{roles: map[int64]domain.MemberRole{}})
	_, err := access.Role(context.Background(), 10, 4)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
