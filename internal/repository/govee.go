package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/verdanthq/verdant/internal/domain"
)

// GoveeRepository handles sensor credential, device, and reading data access.
type GoveeRepository struct {
	db *sqlx.DB
}

// NewGoveeRepository creates a new GoveeRepository.
func NewGoveeRepository(db *sqlx.DB) *GoveeRepository {
	return &GoveeRepository{db: db}
}

const goveeDeviceColumns = `id, zone_id, user_id, device, model, name,
	temp_min, temp_max, humidity_min, humidity_max, created_at, updated_at`

// UpsertCredential stores or replaces a user's encrypted API key.
func (r *GoveeRepository) UpsertCredential(ctx context.Context, userID int64, apiKeyEnc string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO govee_credentials (user_id, api_key_enc)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET api_key_enc = EXCLUDED.api_key_enc, updated_at = NOW()`,
		userID, apiKeyEnc)
	if err != nil {
		return fmt.Errorf("upsert credential: %w", err)
	}
	return nil
}

// Credential retrieves a user's encrypted API key.
func (r *GoveeRepository) Credential(ctx context.Context, userID int64) (*domain.GoveeCredential, error) {
	var cred domain.GoveeCredential
	err := r.db.GetContext(ctx, &cred,
		`SELECT user_id, api_key_enc, updated_at FROM govee_credentials WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find credential for user %d: %w", userID, err)
	}
	return &cred, nil
}

// FindDeviceByID retrieves a registered device by ID.
func (r *GoveeRepository) FindDeviceByID(ctx context.Context, id int64) (*domain.GoveeDevice, error) {
	var device domain.GoveeDevice
	err := r.db.GetContext(ctx, &device,
		`SELECT `+goveeDeviceColumns+` FROM govee_devices WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find device %d: %w", id, err)
	}
	return &device, nil
}

// ListDevices returns every registered device, for the sensor cron job.
func (r *GoveeRepository) ListDevices(ctx context.Context) ([]domain.GoveeDevice, error) {
	devices := []domain.GoveeDevice{}
	err := r.db.SelectContext(ctx, &devices,
		`SELECT `+goveeDeviceColumns+` FROM govee_devices ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	return devices, nil
}

// ListDevicesByZone returns devices bound to a zone.
func (r *GoveeRepository) ListDevicesByZone(ctx context.Context, zoneID int64) ([]domain.GoveeDevice, error) {
	devices := []domain.GoveeDevice{}
	err := r.db.SelectContext(ctx, &devices,
		`SELECT `+goveeDeviceColumns+` FROM govee_devices WHERE zone_id = $1 ORDER BY id`, zoneID)
	if err != nil {
		return nil, fmt.Errorf("list devices for zone %d: %w", zoneID, err)
	}
	return devices, nil
}

// CreateDevice registers a device. (user, vendor device id) is unique.
func (r *GoveeRepository) CreateDevice(ctx context.Context, device domain.GoveeDevice) (*domain.GoveeDevice, error) {
	var created domain.GoveeDevice
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO govee_devices (zone_id, user_id, device, model, name,
		                            temp_min, temp_max, humidity_min, humidity_max)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+goveeDeviceColumns,
		device.ZoneID, device.UserID, device.Device, device.Model, device.Name,
		device.TempMin, device.TempMax, device.HumidityMin, device.HumidityMax,
	).StructScan(&created)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("create device: %w", err)
	}
	return &created, nil
}

// UpdateDevice writes the mutable device fields and returns the row.
func (r *GoveeRepository) UpdateDevice(ctx context.Context, device domain.GoveeDevice) (*domain.GoveeDevice, error) {
	var updated domain.GoveeDevice
	err := r.db.QueryRowxContext(ctx,
		`UPDATE govee_devices
		 SET name = $1, zone_id = $2, temp_min = $3, temp_max = $4,
		     humidity_min = $5, humidity_max = $6, updated_at = NOW()
		 WHERE id = $7
		 RETURNING `+goveeDeviceColumns,
		device.Name, device.ZoneID, device.TempMin, device.TempMax,
		device.HumidityMin, device.HumidityMax, device.ID,
	).StructScan(&updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update device %d: %w", device.ID, err)
	}
	return &updated, nil
}

// DeleteDevice removes a registered device and its readings.
func (r *GoveeRepository) DeleteDevice(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM govee_devices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete device %d: %w", id, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateReading appends an immutable time-series point.
func (r *GoveeRepository) CreateReading(ctx context.Context, reading domain.GoveeReading) (*domain.GoveeReading, error) {
	var created domain.GoveeReading
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO govee_readings (device_id, temperature_c, humidity_pct, battery_pct)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, device_id, recorded_at, temperature_c, humidity_pct, battery_pct`,
		reading.DeviceID, reading.TemperatureC, reading.HumidityPct, reading.BatteryPct,
	).StructScan(&created)
	if err != nil {
		return nil, fmt.Errorf("create reading: %w", err)
	}
	return &created, nil
}

// ListReadings returns the most recent readings for a device.
func (r *GoveeRepository) ListReadings(ctx context.Context, deviceID int64, limit int) ([]domain.GoveeReading, error) {
	if limit <= 0 {
		limit = 100
	}
	readings := []domain.GoveeReading{}
	err := r.db.SelectContext(ctx, &readings,
		`SELECT id, device_id, recorded_at, temperature_c, humidity_pct, battery_pct
		 FROM govee_readings WHERE device_id = $1
		 ORDER BY recorded_at DESC LIMIT $2`, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("list readings for device %d: %w", deviceID, err)
	}
	return readings, nil
}

// LatestReading returns the newest reading for a device, or ErrNotFound.
func (r *GoveeRepository) LatestReading(ctx context.Context, deviceID int64) (*domain.GoveeReading, error) {
	var reading domain.GoveeReading
	err := r.db.GetContext(ctx, &reading,
		`SELECT id, device_id, recorded_at, temperature_c, humidity_pct, battery_pct
		 FROM govee_readings WHERE device_id = $1
		 ORDER BY recorded_at DESC LIMIT 1`, deviceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("latest reading for device %d: %w", deviceID, err)
	}
	return &reading, nil
}
