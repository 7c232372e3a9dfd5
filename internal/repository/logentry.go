package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/verdanthq/verdant/internal/domain"
)

// LogRepository handles activity log data access.
type LogRepository struct {
	db *sqlx.DB
}

// NewLogRepository creates a new LogRepository.
func NewLogRepository(db *sqlx.DB) *LogRepository {
	return &LogRepository{db: db}
}

const logColumns = `id, plant_id, zone_id, user_id, activity, note, logged_at`

// LogFilter narrows a log listing.
type LogFilter struct {
	PlantID *int64
	ZoneID  *int64
	Limit   int
}

// FindByID retrieves a log entry by ID.
func (r *LogRepository) FindByID(ctx context.Context, id int64) (*domain.LogEntry, error) {
	var entry domain.LogEntry
	err := r.db.GetContext(ctx, &entry,
		`SELECT `+logColumns+` FROM log_entries WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find log entry %d: %w", id, err)
	}
	return &entry, nil
}

// List returns a user's log entries, optionally filtered by plant or zone.
func (r *LogRepository) List(ctx context.Context, userID int64, filter LogFilter) ([]domain.LogEntry, error) {
	query := `SELECT ` + logColumns + ` FROM log_entries WHERE user_id = $1`
	args := []any{userID}
	n := 2
	if filter.PlantID != nil {
		query += fmt.Sprintf(" AND plant_id = $%d", n)
		args = append(args, *filter.PlantID)
		n++
	}
	if filter.ZoneID != nil {
		query += fmt.Sprintf(" AND zone_id = $%d", n)
		args = append(args, *filter.ZoneID)
		n++
	}
	query += " ORDER BY logged_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", n)
		args = append(args, filter.Limit)
	}

	entries := []domain.LogEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list log entries: %w", err)
	}
	return entries, nil
}

// Create inserts a log entry.
func (r *LogRepository) Create(ctx context.Context, entry domain.LogEntry) (*domain.LogEntry, error) {
	var created domain.LogEntry
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO log_entries (plant_id, zone_id, user_id, activity, note, logged_at)
		 VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))
		 RETURNING `+logColumns,
		entry.PlantID, entry.ZoneID, entry.UserID, entry.Activity, entry.Note,
		nullableTime(entry.LoggedAt),
	).StructScan(&created)
	if err != nil {
		return nil, fmt.Errorf("create log entry: %w", err)
	}
	return &created, nil
}

// Delete removes a log entry owned by the user.
func (r *LogRepository) Delete(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM log_entries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete log entry %d: %w", id, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
