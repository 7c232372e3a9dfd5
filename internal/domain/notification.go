package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// NotificationType represents the kind of notification.
type NotificationType string

const (
	NotificationWeatherAlert         NotificationType = "WEATHER_ALERT"
	NotificationWeatherForecastAlert NotificationType = "WEATHER_FORECAST_ALERT"
	NotificationMaintenanceDue       NotificationType = "MAINTENANCE_DUE"
	NotificationSensorAlert          NotificationType = "SENSOR_ALERT"
)

// AlertCategory classifies a weather or sensor hazard.
type AlertCategory string

const (
	AlertHeat      AlertCategory = "heat"
	AlertFrost     AlertCategory = "frost"
	AlertWind      AlertCategory = "wind"
	AlertFlood     AlertCategory = "flood"
	AlertDrought   AlertCategory = "drought"
	AlertHeavyRain AlertCategory = "heavy_rain"
)

// Notification is an in-app alert for a user. Rows are created by batch
// jobs and only ever mutated to toggle Read.
type Notification struct {
	ID        int64            `json:"id" db:"id"`
	UserID    int64            `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	Meta      json.RawMessage  `json:"meta,omitempty" db:"meta"`
	Read      bool             `json:"read" db:"read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// WeatherAlertMeta is the payload for WEATHER_ALERT and
// WEATHER_FORECAST_ALERT notifications. AlertTypes is never empty.
type WeatherAlertMeta struct {
	AlertTypes []AlertCategory `json:"alert_types"`
	PlantID    int64           `json:"plant_id"`
	PlantName  string          `json:"plant_name"`
	ZoneID     int64           `json:"zone_id"`
	ZoneName   string          `json:"zone_name"`
	GardenID   int64           `json:"garden_id"`
	GardenName string          `json:"garden_name"`
}

// SensorAlertMeta is the payload for SENSOR_ALERT notifications.
type SensorAlertMeta struct {
	AlertTypes  []AlertCategory `json:"alert_types"`
	DeviceID    int64           `json:"device_id"`
	DeviceName  string          `json:"device_name"`
	ZoneID      int64           `json:"zone_id"`
	ZoneName    string          `json:"zone_name"`
	Temperature *float64        `json:"temperature,omitempty"`
	Humidity    *float64        `json:"humidity,omitempty"`
}

// MaintenanceMeta is the payload for MAINTENANCE_DUE notifications.
type MaintenanceMeta struct {
	TaskID        int64     `json:"task_id"`
	TaskTitle     string    `json:"task_title"`
	EquipmentID   int64     `json:"equipment_id"`
	EquipmentName string    `json:"equipment_name"`
	DueDate       time.Time `json:"due_date"`
}

// EncodeMeta serializes a typed meta payload into the notification.
func (n *Notification) EncodeMeta(meta any) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode notification meta: %w", err)
	}
	n.Meta = raw
	return nil
}

// WeatherMeta decodes the meta payload of a weather notification.
func (n *Notification) WeatherMeta() (*WeatherAlertMeta, error) {
	if n.Type != NotificationWeatherAlert && n.Type != NotificationWeatherForecastAlert {
		return nil, fmt.Errorf("notification %d is %s, not a weather alert", n.ID, n.Type)
	}
	var meta WeatherAlertMeta
	if err := json.Unmarshal(n.Meta, &meta); err != nil {
		return nil, fmt.Errorf("decode weather meta: %w", err)
	}
	return &meta, nil
}

// SensorMeta decodes the meta payload of a sensor notification.
func (n *Notification) SensorMeta() (*SensorAlertMeta, error) {
	if n.Type != NotificationSensorAlert {
		return nil, fmt.Errorf("notification %d is %s, not a sensor alert", n.ID, n.Type)
	}
	var meta SensorAlertMeta
	if err := json.Unmarshal(n.Meta, &meta); err != nil {
		return nil, fmt.Errorf("decode sensor meta: %w", err)
	}
	return &meta, nil
}

// MaintenanceTaskMeta decodes the meta payload of a maintenance notification.
func (n *Notification) MaintenanceTaskMeta() (*MaintenanceMeta, error) {
	if n.Type != NotificationMaintenanceDue {
		return nil, fmt.Errorf("notification %d is %s, not a maintenance reminder", n.ID, n.Type)
	}
	var meta MaintenanceMeta
	if err := json.Unmarshal(n.Meta, &meta); err != nil {
		return nil, fmt.Errorf("decode maintenance meta: %w", err)
	}
	return &meta, nil
}
