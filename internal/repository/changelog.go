package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/verdanthq/verdant/internal/domain"
)

// ChangeLogRepository handles audit entry data access.
type ChangeLogRepository struct {
	db *sqlx.DB
}

// NewChangeLogRepository creates a new ChangeLogRepository.
func NewChangeLogRepository(db *sqlx.DB) *ChangeLogRepository {
	return &ChangeLogRepository{db: db}
}

// Create inserts an audit entry.
func (r *ChangeLogRepository) Create(ctx context.Context, entry domain.ChangeLog) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO change_logs (entity_type, entity_id, entity_name, changes, path, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.EntityType, entry.EntityID, entry.EntityName, entry.Changes, entry.Path, entry.UserID)
	if err != nil {
		return fmt.Errorf("create change log: %w", err)
	}
	return nil
}

// ListByEntity returns the audit trail for one entity, newest first.
func (r *ChangeLogRepository) ListByEntity(ctx context.Context, entityType string, entityID int64) ([]domain.ChangeLog, error) {
	entries := []domain.ChangeLog{}
	err := r.db.SelectContext(ctx, &entries,
		`SELECT id, entity_type, entity_id, entity_name, changes, path, user_id, created_at
		 FROM change_logs WHERE entity_type = $1 AND entity_id = $2
		 ORDER BY created_at DESC`, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("list change logs for %s %d: %w", entityType, entityID, err)
	}
	return entries, nil
}

// ListByGarden returns the audit trail whose path falls under a garden,
// newest first, capped.
func (r *ChangeLogRepository) ListByGarden(ctx context.Context, gardenName string, limit int) ([]domain.ChangeLog, error) {
	if limit <= 0 {
		limit = 100
	}
	entries := []domain.ChangeLog{}
	err := r.db.SelectContext(ctx, &entries,
		`SELECT id, entity_type, entity_id, entity_name, changes, path, user_id, created_at
		 FROM change_logs WHERE path LIKE $1 || '%'
		 ORDER BY created_at DESC LIMIT $2`, gardenName, limit)
	if err != nil {
		return nil, fmt.Errorf("list change logs for garden %q: %w", gardenName, err)
	}
	return entries, nil
}
