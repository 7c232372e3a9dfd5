package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/verdanthq/verdant/internal/domain"
)

// ZoneRepository handles zone data access operations.
type ZoneRepository struct {
	db *sqlx.DB
}

// NewZoneRepository creates a new ZoneRepository.
func NewZoneRepository(db *sqlx.DB) *ZoneRepository {
	return &ZoneRepository{db: db}
}

const zoneColumns = `id, room_id, name, zone_type, growth_stage, temp_min, temp_max, humidity_min, humidity_max, created_at, updated_at`

// ZoneContext resolves a zone to its containing hierarchy, used for
// permission checks and change-log paths.
type ZoneContext struct {
	ZoneID     int64  `db:"zone_id"`
	ZoneName   string `db:"zone_name"`
	RoomID     int64  `db:"room_id"`
	RoomName   string `db:"room_name"`
	GardenID   int64  `db:"garden_id"`
	GardenName string `db:"garden_name"`
}

// Path renders the hierarchy as "Garden / Room / Zone".
func (c ZoneContext) Path() string {
	return c.GardenName + " / " + c.RoomName + " / " + c.ZoneName
}

// FindByID retrieves a zone by ID.
func (r *ZoneRepository) FindByID(ctx context.Context, id int64) (*domain.Zone, error) {
	var zone domain.Zone
	err := r.db.GetContext(ctx, &zone,
		`SELECT `+zoneColumns+` FROM zones WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find zone %d: %w", id, err)
	}
	return &zone, nil
}

// ListByRoom returns the zones in a room.
func (r *ZoneRepository) ListByRoom(ctx context.Context, roomID int64) ([]domain.Zone, error) {
	zones := []domain.Zone{}
	err := r.db.SelectContext(ctx, &zones,
		`SELECT `+zoneColumns+` FROM zones WHERE room_id = $1 ORDER BY created_at`, roomID)
	if err != nil {
		return nil, fmt.Errorf("list zones for room %d: %w", roomID, err)
	}
	return zones, nil
}

// Create inserts a zone.
func (r *ZoneRepository) Create(ctx context.Context, zone domain.Zone) (*domain.Zone, error) {
	var created domain.Zone
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO zones (room_id, name, zone_type, growth_stage, temp_min, temp_max, humidity_min, humidity_max)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+zoneColumns,
		zone.RoomID, zone.Name, zone.ZoneType, zone.GrowthStage,
		zone.TempMin, zone.TempMax, zone.HumidityMin, zone.HumidityMax,
	).StructScan(&created)
	if err != nil {
		return nil, fmt.Errorf("create zone: %w", err)
	}
	return &created, nil
}

// Update writes the full zone row and returns it. Callers load the
// existing row first, so the diff is available for change logging.
func (r *ZoneRepository) Update(ctx context.Context, zone domain.Zone) (*domain.Zone, error) {
	var updated domain.Zone
	err := r.db.QueryRowxContext(ctx,
		`UPDATE zones
		 SET name = $1, zone_type = $2, growth_stage = $3,
		     temp_min = $4, temp_max = $5, humidity_min = $6, humidity_max = $7,
		     updated_at = NOW()
		 WHERE id = $8
		 RETURNING `+zoneColumns,
		zone.Name, zone.ZoneType, zone.GrowthStage,
		zone.TempMin, zone.TempMax, zone.HumidityMin, zone.HumidityMax,
		zone.ID,
	).StructScan(&updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update zone %d: %w", zone.ID, err)
	}
	return &updated, nil
}

// Delete removes a zone.
func (r *ZoneRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM zones WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete zone %d: %w", id, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Context resolves the containing hierarchy for a zone.
func (r *ZoneRepository) Context(ctx context.Context, zoneID int64) (*ZoneContext, error) {
	var zc ZoneContext
	err := r.db.GetContext(ctx, &zc,
		`SELECT z.id AS zone_id, z.name AS zone_name,
		        rm.id AS room_id, rm.name AS room_name,
		        g.id AS garden_id, g.name AS garden_name
		 FROM zones z
		 JOIN rooms rm ON rm.id = z.room_id
		 JOIN gardens g ON g.id = rm.garden_id
		 WHERE z.id = $1`, zoneID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("resolve zone context %d: %w", zoneID, err)
	}
	return &zc, nil
}
