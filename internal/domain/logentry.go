package domain

import "time"

// Activity is the kind of work recorded in a log entry.
type Activity string

const (
	ActivityWatering    Activity = "watering"
	ActivityFeeding     Activity = "feeding"
	ActivityPruning     Activity = "pruning"
	ActivityTransplant  Activity = "transplant"
	ActivityHarvest     Activity = "harvest"
	ActivityObservation Activity = "observation"
)

// LogEntry records an activity against a plant or a zone.
// At least one of PlantID/ZoneID is set.
type LogEntry struct {
	ID       int64     `json:"id" db:"id"`
	PlantID  *int64    `json:"plant_id,omitempty" db:"plant_id"`
	ZoneID   *int64    `json:"zone_id,omitempty" db:"zone_id"`
	UserID   int64     `json:"user_id" db:"user_id"`
	Activity Activity  `json:"activity" db:"activity"`
	Note     *string   `json:"note,omitempty" db:"note"`
	LoggedAt time.Time `json:"logged_at" db:"logged_at"`
}
