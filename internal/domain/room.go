package domain

import "time"

// Room is a physical space within a garden.
type Room struct {
	ID        int64     `json:"id" db:"id"`
	GardenID  int64     `json:"garden_id" db:"garden_id"`
	Name      string    `json:"name" db:"name"`
	RoomType  *string   `json:"room_type,omitempty" db:"room_type"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
