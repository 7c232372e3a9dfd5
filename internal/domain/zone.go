package domain

import "time"

// GrowthStage describes the development phase of a zone or plant.
type GrowthStage string

const (
	StageSeedling   GrowthStage = "seedling"
	StageVegetative GrowthStage = "vegetative"
	StageFlowering  GrowthStage = "flowering"
)

// Zone is a growing area within a room. Threshold bounds are nullable;
// a nil bound means "no limit" for that dimension.
type Zone struct {
	ID          int64       `json:"id" db:"id"`
	RoomID      int64       `json:"room_id" db:"room_id"`
	Name        string      `json:"name" db:"name"`
	ZoneType    *string     `json:"zone_type,omitempty" db:"zone_type"`
	GrowthStage GrowthStage `json:"growth_stage,omitempty" db:"growth_stage"`
	TempMin     *float64    `json:"temp_min,omitempty" db:"temp_min"`
	TempMax     *float64    `json:"temp_max,omitempty" db:"temp_max"`
	HumidityMin *float64    `json:"humidity_min,omitempty" db:"humidity_min"`
	HumidityMax *float64    `json:"humidity_max,omitempty" db:"humidity_max"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// HasThresholds reports whether any sensor threshold is configured.
func (z Zone) HasThresholds() bool {
	return z.TempMin != nil || z.TempMax != nil || z.HumidityMin != nil || z.HumidityMax != nil
}
