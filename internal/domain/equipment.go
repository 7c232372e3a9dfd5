package domain

import "time"

// Equipment is a piece of hardware installed in a room.
type Equipment struct {
	ID            int64     `json:"id" db:"id"`
	RoomID        int64     `json:"room_id" db:"room_id"`
	Name          string    `json:"name" db:"name"`
	EquipmentType *string   `json:"equipment_type,omitempty" db:"equipment_type"`
	Manufacturer  *string   `json:"manufacturer,omitempty" db:"manufacturer"`
	Notes         *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Frequency is a maintenance recurrence label.
type Frequency string

const (
	FreqDaily      Frequency = "Daily"
	FreqWeekly     Frequency = "Weekly"
	FreqMonthly    Frequency = "Monthly"
	FreqQuarterly  Frequency = "Every 3 Months"
	FreqHalfYearly Frequency = "Every 6 Months"
	FreqAnnually   Frequency = "Annually"
)

// NextDue returns the next due date after completing a task at the given
// time. Unrecognized frequencies default to one month out.
func (f Frequency) NextDue(from time.Time) time.Time {
	switch f {
	case FreqDaily:
		return from.AddDate(0, 0, 1)
	case FreqWeekly:
		return from.AddDate(0, 0, 7)
	case FreqMonthly:
		return from.AddDate(0, 1, 0)
	case FreqQuarterly:
		return from.AddDate(0, 3, 0)
	case FreqHalfYearly:
		return from.AddDate(0, 6, 0)
	case FreqAnnually:
		return from.AddDate(1, 0, 0)
	default:
		return from.AddDate(0, 1, 0)
	}
}

// MaintenanceTask is a recurring chore attached to equipment.
type MaintenanceTask struct {
	ID              int64      `json:"id" db:"id"`
	EquipmentID     int64      `json:"equipment_id" db:"equipment_id"`
	Title           string     `json:"title" db:"title"`
	Frequency       Frequency  `json:"frequency" db:"frequency"`
	NextDueDate     time.Time  `json:"next_due_date" db:"next_due_date"`
	LastCompletedAt *time.Time `json:"last_completed_at,omitempty" db:"last_completed_at"`
	Completed       bool       `json:"completed" db:"completed"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}
