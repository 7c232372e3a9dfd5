package service

import (
	"context"
	"time"

	"github.com/verdanthq/verdant/internal/domain"
)

// TaskStore is the persistence surface for maintenance tasks.
type TaskStore interface {
	FindTaskByID(ctx context.Context, id int64) (*domain.MaintenanceTask, error)
	UpdateTask(ctx context.Context, task domain.MaintenanceTask) (*domain.MaintenanceTask, error)
}

// TaskService implements maintenance-task recurrence.
type TaskService struct {
	tasks TaskStore
	now   func() time.Time
}

// NewTaskService creates a TaskService.
func NewTaskService(tasks TaskStore) *TaskService {
	return &TaskService{tasks: tasks, now: time.Now}
}

// Complete records a completion: the task rolls forward to its next
// due date and stays open for the next cycle.
func (s *TaskService) Complete(ctx context.Context, taskID int64) (*domain.MaintenanceTask, error) {
	task, err := s.tasks.FindTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	task.LastCompletedAt = &now
	task.NextDueDate = task.Frequency.NextDue(now)
	task.Completed = false

	return s.tasks.UpdateTask(ctx, *task)
}
