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

// EquipmentRepository handles equipment and maintenance task data access.
type EquipmentRepository struct {
	db *sqlx.DB
}

// NewEquipmentRepository creates a new EquipmentRepository.
func NewEquipmentRepository(db *sqlx.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

const equipmentColumns = `id, room_id, name, equipment_type, manufacturer, notes, created_at, updated_at`

const taskColumns = `id, equipment_id, title, frequency, next_due_date, last_completed_at, completed, created_at, updated_at`

// DueTask is a maintenance task joined to its equipment and garden
// owner, as consumed by the maintenance reminder job.
type DueTask struct {
	domain.MaintenanceTask
	EquipmentName string `db:"equipment_name"`
	OwnerID       int64  `db:"owner_id"`
}

// FindByID retrieves equipment by ID.
func (r *EquipmentRepository) FindByID(ctx context.Context, id int64) (*domain.Equipment, error) {
	var eq domain.Equipment
	err := r.db.GetContext(ctx, &eq,
		`SELECT `+equipmentColumns+` FROM equipment WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find equipment %d: %w", id, err)
	}
	return &eq, nil
}

// ListByRoom returns the equipment installed in a room.
func (r *EquipmentRepository) ListByRoom(ctx context.Context, roomID int64) ([]domain.Equipment, error) {
	items := []domain.Equipment{}
	err := r.db.SelectContext(ctx, &items,
		`SELECT `+equipmentColumns+` FROM equipment WHERE room_id = $1 ORDER BY created_at`, roomID)
	if err != nil {
		return nil, fmt.Errorf("list equipment for room %d: %w", roomID, err)
	}
	return items, nil
}

// Create inserts an equipment row.
func (r *EquipmentRepository) Create(ctx context.Context, eq domain.Equipment) (*domain.Equipment, error) {
	var created domain.Equipment
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO equipment (room_id, name, equipment_type, manufacturer, notes)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+equipmentColumns,
		eq.RoomID, eq.Name, eq.EquipmentType, eq.Manufacturer, eq.Notes,
	).StructScan(&created)
	if err != nil {
		return nil, fmt.Errorf("create equipment: %w", err)
	}
	return &created, nil
}

// Update writes the full equipment row and returns it.
func (r *EquipmentRepository) Update(ctx context.Context, eq domain.Equipment) (*domain.Equipment, error) {
	var updated domain.Equipment
	err := r.db.QueryRowxContext(ctx,
		`UPDATE equipment
		 SET name = $1, equipment_type = $2, manufacturer = $3, notes = $4, updated_at = NOW()
		 WHERE id = $5
		 RETURNING `+equipmentColumns,
		eq.Name, eq.EquipmentType, eq.Manufacturer, eq.Notes, eq.ID,
	).StructScan(&updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update equipment %d: %w", eq.ID, err)
	}
	return &updated, nil
}

// Delete removes an equipment row.
func (r *EquipmentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM equipment WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete equipment %d: %w", id, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GardenID resolves the garden containing an equipment row.
func (r *EquipmentRepository) GardenID(ctx context.Context, equipmentID int64) (int64, error) {
	var gardenID int64
	err := r.db.GetContext(ctx, &gardenID,
		`SELECT rm.garden_id FROM equipment e
		 JOIN rooms rm ON rm.id = e.room_id
		 WHERE e.id = $1`, equipmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("resolve garden for equipment %d: %w", equipmentID, err)
	}
	return gardenID, nil
}

// GardenIDForTask resolves the garden containing a maintenance task.
func (r *EquipmentRepository) GardenIDForTask(ctx context.Context, taskID int64) (int64, error) {
	var gardenID int64
	err := r.db.GetContext(ctx, &gardenID,
		`SELECT rm.garden_id FROM maintenance_tasks t
		 JOIN equipment e ON e.id = t.equipment_id
		 JOIN rooms rm ON rm.id = e.room_id
		 WHERE t.id = $1`, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("resolve garden for task %d: %w", taskID, err)
	}
	return gardenID, nil
}

// FindTaskByID retrieves a maintenance task by ID.
func (r *EquipmentRepository) FindTaskByID(ctx context.Context, id int64) (*domain.MaintenanceTask, error) {
	var task domain.MaintenanceTask
	err := r.db.GetContext(ctx, &task,
		`SELECT `+taskColumns+` FROM maintenance_tasks WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find task %d: %w", id, err)
	}
	return &task, nil
}

// ListTasksByEquipment returns the maintenance tasks for an equipment row.
func (r *EquipmentRepository) ListTasksByEquipment(ctx context.Context, equipmentID int64) ([]domain.MaintenanceTask, error) {
	tasks := []domain.MaintenanceTask{}
	err := r.db.SelectContext(ctx, &tasks,
		`SELECT `+taskColumns+` FROM maintenance_tasks
		 WHERE equipment_id = $1 ORDER BY next_due_date`, equipmentID)
	if err != nil {
		return nil, fmt.Errorf("list tasks for equipment %d: %w", equipmentID, err)
	}
	return tasks, nil
}

// ListDueTasks returns incomplete tasks due at or before the cutoff,
// joined to equipment and garden owner for notification routing.
func (r *EquipmentRepository) ListDueTasks(ctx context.Context, cutoff time.Time) ([]DueTask, error) {
	tasks := []DueTask{}
	err := r.db.SelectContext(ctx, &tasks,
		`SELECT t.id, t.equipment_id, t.title, t.frequency, t.next_due_date,
		        t.last_completed_at, t.completed, t.created_at, t.updated_at,
		        e.name AS equipment_name, g.owner_id AS owner_id
		 FROM maintenance_tasks t
		 JOIN equipment e ON e.id = t.equipment_id
		 JOIN rooms rm ON rm.id = e.room_id
		 JOIN gardens g ON g.id = rm.garden_id
		 WHERE NOT t.completed AND t.next_due_date <= $1
		 ORDER BY t.next_due_date`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list due tasks: %w", err)
	}
	return tasks, nil
}

// CreateTask inserts a maintenance task.
func (r *EquipmentRepository) CreateTask(ctx context.Context, task domain.MaintenanceTask) (*domain.MaintenanceTask, error) {
	var created domain.MaintenanceTask
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO maintenance_tasks (equipment_id, title, frequency, next_due_date)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+taskColumns,
		task.EquipmentID, task.Title, task.Frequency, task.NextDueDate,
	).StructScan(&created)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &created, nil
}

// UpdateTask writes the full task row and returns it.
func (r *EquipmentRepository) UpdateTask(ctx context.Context, task domain.MaintenanceTask) (*domain.MaintenanceTask, error) {
	var updated domain.MaintenanceTask
	err := r.db.QueryRowxContext(ctx,
		`UPDATE maintenance_tasks
		 SET title = $1, frequency = $2, next_due_date = $3,
		     last_completed_at = $4, completed = $5, updated_at = NOW()
		 WHERE id = $6
		 RETURNING `+taskColumns,
		task.Title, task.Frequency, task.NextDueDate,
		task.LastCompletedAt, task.Completed, task.ID,
	).StructScan(&updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update task %d: %w", task.ID, err)
	}
	return &updated, nil
}

// DeleteTask removes a maintenance task.
func (r *EquipmentRepository) DeleteTask(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM maintenance_tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
