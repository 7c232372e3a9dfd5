package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/verdanthq/verdant/internal/domain"
)

// PlantRepository handles plant data access operations.
type PlantRepository struct {
	db *sqlx.DB
}

// NewPlantRepository creates a new PlantRepository.
func NewPlantRepository(db *sqlx.DB) *PlantRepository {
	return &PlantRepository{db: db}
}

const plantColumns = `id, zone_id, name, species, growth_stage, planted_at,
	heat_sensitive, frost_sensitive, wind_sensitive, flood_sensitive,
	notes, created_at, updated_at`

// SensitivePlant is a plant joined to its hierarchy and the garden
// owner, as consumed by the weather alerting job.
type SensitivePlant struct {
	domain.Plant
	ZoneName   string `db:"zone_name"`
	GardenID   int64  `db:"garden_id"`
	GardenName string `db:"garden_name"`
	OwnerID    int64  `db:"owner_id"`
}

// FindByID retrieves a plant by ID.
func (r *PlantRepository) FindByID(ctx context.Context, id int64) (*domain.Plant, error) {
	var plant domain.Plant
	err := r.db.GetContext(ctx, &plant,
		`SELECT `+plantColumns+` FROM plants WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find plant %d: %w", id, err)
	}
	return &plant, nil
}

// ListByZone returns the plants in a zone.
func (r *PlantRepository) ListByZone(ctx context.Context, zoneID int64) ([]domain.Plant, error) {
	plants := []domain.Plant{}
	err := r.db.SelectContext(ctx, &plants,
		`SELECT `+plantColumns+` FROM plants WHERE zone_id = $1 ORDER BY created_at`, zoneID)
	if err != nil {
		return nil, fmt.Errorf("list plants for zone %d: %w", zoneID, err)
	}
	return plants, nil
}

// ListWeatherSensitiveByGarden returns plants in a garden with at least
// one hazard flag set, joined to their hierarchy.
func (r *PlantRepository) ListWeatherSensitiveByGarden(ctx context.Context, gardenID int64) ([]SensitivePlant, error) {
	plants := []SensitivePlant{}
	err := r.db.SelectContext(ctx, &plants,
		`SELECT p.id, p.zone_id, p.name, p.species, p.growth_stage, p.planted_at,
		        p.heat_sensitive, p.frost_sensitive, p.wind_sensitive, p.flood_sensitive,
		        p.notes, p.created_at, p.updated_at,
		        z.name AS zone_name, g.id AS garden_id, g.name AS garden_name, g.owner_id AS owner_id
		 FROM plants p
		 JOIN zones z ON z.id = p.zone_id
		 JOIN rooms rm ON rm.id = z.room_id
		 JOIN gardens g ON g.id = rm.garden_id
		 WHERE g.id = $1
		   AND (p.heat_sensitive OR p.frost_sensitive OR p.wind_sensitive OR p.flood_sensitive)
		 ORDER BY p.id`, gardenID)
	if err != nil {
		return nil, fmt.Errorf("list sensitive plants for garden %d: %w", gardenID, err)
	}
	return plants, nil
}

// Create inserts a plant.
func (r *PlantRepository) Create(ctx context.Context, plant domain.Plant) (*domain.Plant, error) {
	var created domain.Plant
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO plants (zone_id, name, species, growth_stage, planted_at,
		                     heat_sensitive, frost_sensitive, wind_sensitive, flood_sensitive, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+plantColumns,
		plant.ZoneID, plant.Name, plant.Species, plant.GrowthStage, plant.PlantedAt,
		plant.HeatSensitive, plant.FrostSensitive, plant.WindSensitive, plant.FloodSensitive,
		plant.Notes,
	).StructScan(&created)
	if err != nil {
		return nil, fmt.Errorf("create plant: %w", err)
	}
	return &created, nil
}

// Update writes the full plant row and returns it.
func (r *PlantRepository) Update(ctx context.Context, plant domain.Plant) (*domain.Plant, error) {
	var updated domain.Plant
	err := r.db.QueryRowxContext(ctx,
		`UPDATE plants
		 SET name = $1, species = $2, growth_stage = $3, planted_at = $4,
		     heat_sensitive = $5, frost_sensitive = $6, wind_sensitive = $7,
		     flood_sensitive = $8, notes = $9, updated_at = NOW()
		 WHERE id = $10
		 RETURNING `+plantColumns,
		plant.Name, plant.Species, plant.GrowthStage, plant.PlantedAt,
		plant.HeatSensitive, plant.FrostSensitive, plant.WindSensitive,
		plant.FloodSensitive, plant.Notes, plant.ID,
	).StructScan(&updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update plant %d: %w", plant.ID, err)
	}
	return &updated, nil
}

// Delete removes a plant.
func (r *PlantRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete plant %d: %w", id, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
