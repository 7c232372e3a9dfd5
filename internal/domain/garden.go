package domain

import "time"

// MemberRole is a user's permission level within a garden.
type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleEditor MemberRole = "editor"
	RoleViewer MemberRole = "viewer"
)

// CanView reports whether the role grants read access.
func (r MemberRole) CanView() bool {
	return r == RoleOwner || r == RoleEditor || r == RoleViewer
}

// CanEdit reports whether the role grants write access to garden contents.
func (r MemberRole) CanEdit() bool {
	return r == RoleOwner || r == RoleEditor
}

// CanManage reports whether the role grants control over the garden itself
// (delete, membership, invites).
func (r MemberRole) CanManage() bool {
	return r == RoleOwner
}

// Garden is the top level of the containment hierarchy.
type Garden struct {
	ID          int64     `json:"id" db:"id"`
	OwnerID     int64     `json:"owner_id" db:"owner_id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	PostalCode  *string   `json:"postal_code,omitempty" db:"postal_code"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// GardenMember links a user to a garden with a role.
// (garden_id, user_id) is unique at the database level.
type GardenMember struct {
	GardenID  int64      `json:"garden_id" db:"garden_id"`
	UserID    int64      `json:"user_id" db:"user_id"`
	Role      MemberRole `json:"role" db:"role"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// GardenInvite is a pending invitation to join a garden, redeemed by token.
type GardenInvite struct {
	ID        int64      `json:"id" db:"id"`
	GardenID  int64      `json:"garden_id" db:"garden_id"`
	Email     string     `json:"email" db:"email"`
	Role      MemberRole `json:"role" db:"role"`
	Token     string     `json:"token" db:"token"`
	Accepted  bool       `json:"accepted" db:"accepted"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
