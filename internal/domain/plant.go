package domain

import "time"

// Plant lives in a zone. Sensitivity flags opt the plant into
// weather-hazard alerting for the matching category.
type Plant struct {
	ID             int64       `json:"id" db:"id"`
	ZoneID         int64       `json:"zone_id" db:"zone_id"`
	Name           string      `json:"name" db:"name"`
	Species        *string     `json:"species,omitempty" db:"species"`
	GrowthStage    GrowthStage `json:"growth_stage,omitempty" db:"growth_stage"`
	PlantedAt      *time.Time  `json:"planted_at,omitempty" db:"planted_at"`
	HeatSensitive  bool        `json:"heat_sensitive" db:"heat_sensitive"`
	FrostSensitive bool        `json:"frost_sensitive" db:"frost_sensitive"`
	WindSensitive  bool        `json:"wind_sensitive" db:"wind_sensitive"`
	FloodSensitive bool        `json:"flood_sensitive" db:"flood_sensitive"`
	Notes          *string     `json:"notes,omitempty" db:"notes"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}

// WeatherSensitive reports whether any hazard flag is set.
func (p Plant) WeatherSensitive() bool {
	return p.HeatSensitive || p.FrostSensitive || p.WindSensitive || p.FloodSensitive
}
