package domain

import "time"

// Seed is an inventory entry for seed stock held at the garden level.
type Seed struct {
	ID         int64      `json:"id" db:"id"`
	GardenID   int64      `json:"garden_id" db:"garden_id"`
	Name       string     `json:"name" db:"name"`
	Species    *string    `json:"species,omitempty" db:"species"`
	Vendor     *string    `json:"vendor,omitempty" db:"vendor"`
	Quantity   int        `json:"quantity" db:"quantity"`
	AcquiredAt *time.Time `json:"acquired_at,omitempty" db:"acquired_at"`
	Notes      *string    `json:"notes,omitempty" db:"notes"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}
