package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/verdanthq/verdant/internal/domain"
)

// RoomRepository handles room data access operations.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository creates a new RoomRepository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

const roomColumns = `id, garden_id, name, room_type, created_at, updated_at`

// FindByID retrieves a room by ID.
func (r *RoomRepository) FindByID(ctx context.Context, id int64) (*domain.Room, error) {
	var room domain.Room
	err := r.db.GetContext(ctx, &room,
		`SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find room %d: %w", id, err)
	}
	return &room, nil
}

// ListByGarden returns the rooms in a garden.
func (r *RoomRepository) ListByGarden(ctx context.Context, gardenID int64) ([]domain.Room, error) {
	rooms := []domain.Room{}
	err := r.db.SelectContext(ctx, &rooms,
		`SELECT `+roomColumns+` FROM rooms WHERE garden_id = $1 ORDER BY created_at`, gardenID)
	if err != nil {
		return nil, fmt.Errorf("list rooms for garden %d: %w", gardenID, err)
	}
	return rooms, nil
}

// Create inserts a room.
func (r *RoomRepository) Create(ctx context.Context, room domain.Room) (*domain.Room, error) {
	var created domain.Room
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO rooms (garden_id, name, room_type)
		 VALUES ($1, $2, $3)
		 RETURNING `+roomColumns,
		room.GardenID, room.Name, room.RoomType,
	).StructScan(&created)
	if err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	return &created, nil
}

// Update applies a partial update and returns the new row.
func (r *RoomRepository) Update(ctx context.Context, id int64, name, roomType *string) (*domain.Room, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	if name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", n))
		args = append(args, *name)
		n++
	}
	if roomType != nil {
		sets = append(sets, fmt.Sprintf("room_type = $%d", n))
		args = append(args, *roomType)
		n++
	}
	args = append(args, id)

	var room domain.Room
	query := fmt.Sprintf(
		`UPDATE rooms SET %s WHERE id = $%d RETURNING `+roomColumns,
		strings.Join(sets, ", "), n)
	err := r.db.QueryRowxContext(ctx, query, args...).StructScan(&room)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update room %d: %w", id, err)
	}
	return &room, nil
}

// Delete removes a room.
func (r *RoomRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete room %d: %w", id, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
