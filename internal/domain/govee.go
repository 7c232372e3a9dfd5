package domain

import "time"

// GoveeDevice is a registered vendor sensor bound to a zone.
// Threshold bounds are nullable; nil means "no limit".
type GoveeDevice struct {
	ID          int64     `json:"id" db:"id"`
	ZoneID      int64     `json:"zone_id" db:"zone_id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	Device      string    `json:"device" db:"device"`
	Model       string    `json:"model" db:"model"`
	Name        string    `json:"name" db:"name"`
	TempMin     *float64  `json:"temp_min,omitempty" db:"temp_min"`
	TempMax     *float64  `json:"temp_max,omitempty" db:"temp_max"`
	HumidityMin *float64  `json:"humidity_min,omitempty" db:"humidity_min"`
	HumidityMax *float64  `json:"humidity_max,omitempty" db:"humidity_max"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// GoveeReading is an immutable time-series point polled from the vendor.
// Temperature is stored in Celsius.
type GoveeReading struct {
	ID           int64     `json:"id" db:"id"`
	DeviceID     int64     `json:"device_id" db:"device_id"`
	RecordedAt   time.Time `json:"recorded_at" db:"recorded_at"`
	TemperatureC *float64  `json:"temperature_c,omitempty" db:"temperature_c"`
	HumidityPct  *float64  `json:"humidity_pct,omitempty" db:"humidity_pct"`
	BatteryPct   *float64  `json:"battery_pct,omitempty" db:"battery_pct"`
}

// GoveeCredential holds a user's encrypted vendor API key.
type GoveeCredential struct {
	UserID    int64     `json:"user_id" db:"user_id"`
	APIKeyEnc string    `json:"-" db:"api_key_enc"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
