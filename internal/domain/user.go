package domain

import "time"

// AuthProvider identifies how a user account was created.
type AuthProvider string

const (
	AuthProviderLocal  AuthProvider = "local"
	AuthProviderGoogle AuthProvider = "google"
)

// User represents an authenticated user.
type User struct {
	ID           int64        `json:"id" db:"id"`
	Provider     AuthProvider `json:"provider" db:"provider"`
	ProviderID   *string      `json:"provider_id,omitempty" db:"provider_id"`
	Email        string       `json:"email" db:"email"`
	PasswordHash *string      `json:"-" db:"password_hash"`
	DisplayName  string       `json:"display_name" db:"display_name"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}
