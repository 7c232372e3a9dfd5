package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/verdanthq/verdant/internal/domain"
)

// SeedRepository handles seed inventory data access.
type SeedRepository struct {
	db *sqlx.DB
}

// NewSeedRepository creates a new SeedRepository.
func NewSeedRepository(db *sqlx.DB) *SeedRepository {
	return &SeedRepository{db: db}
}

const seedColumns = `id, garden_id, name, species, vendor, quantity, acquired_at, notes, created_at, updated_at`

// FindByID retrieves a seed entry by ID.
func (r *SeedRepository) FindByID(ctx context.Context, id int64) (*domain.Seed, error) {
	var seed domain.Seed
	err := r.db.GetContext(ctx, &seed,
		`SELECT `+seedColumns+` FROM seeds WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find seed %d: %w", id, err)
	}
	return &seed, nil
}

// ListByGarden returns the seed inventory of a garden.
func (r *SeedRepository) ListByGarden(ctx context.Context, gardenID int64) ([]domain.Seed, error) {
	seeds := []domain.Seed{}
	err := r.db.SelectContext(ctx, &seeds,
		`SELECT `+seedColumns+` FROM seeds WHERE garden_id = $1 ORDER BY name`, gardenID)
	if err != nil {
		return nil, fmt.Errorf("list seeds for garden %d: %w", gardenID, err)
	}
	return seeds, nil
}

// Create inserts a seed entry.
func (r *SeedRepository) Create(ctx context.Context, seed domain.Seed) (*domain.Seed, error) {
	var created domain.Seed
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO seeds (garden_id, name, species, vendor, quantity, acquired_at, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+seedColumns,
		seed.GardenID, seed.Name, seed.Species, seed.Vendor, seed.Quantity,
		seed.AcquiredAt, seed.Notes,
	).StructScan(&created)
	if err != nil {
		return nil, fmt.Errorf("create seed: %w", err)
	}
	return &created, nil
}

// Update writes the full seed row and returns it.
func (r *SeedRepository) Update(ctx context.Context, seed domain.Seed) (*domain.Seed, error) {
	var updated domain.Seed
	err := r.db.QueryRowxContext(ctx,
		`UPDATE seeds
		 SET name = $1, species = $2, vendor = $3, quantity = $4,
		     acquired_at = $5, notes = $6, updated_at = NOW()
		 WHERE id = $7
		 RETURNING `+seedColumns,
		seed.Name, seed.Species, seed.Vendor, seed.Quantity,
		seed.AcquiredAt, seed.Notes, seed.ID,
	).StructScan(&updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update seed %d: %w", seed.ID, err)
	}
	return &updated, nil
}

// Delete removes a seed entry.
func (r *SeedRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM seeds WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete seed %d: %w", id, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
