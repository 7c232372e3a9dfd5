package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdanthq/verdant/internal/domain"
)

type fakeTaskStore struct {
	tasks map[int64]*domain.MaintenanceTask
}

func (f *fakeTaskStore) FindTaskByID(_ context.Context, id int64) (*domain.MaintenanceTask, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskStore) UpdateTask(_ context.Context, task domain.MaintenanceTask) (*domain.MaintenanceTask, error) {
	if _, ok := f.tasks[task.ID]; !ok {
		return nil, domain.ErrNotFound
	}
	f.tasks[task.ID] = &task
	return &task, nil
}

func TestComplete_RollsDueDateForward(t *testing.T) {
	store := &fakeTaskStore{tasks: map[int64]*domain.MaintenanceTask{
		1: {ID: 1, Title: "Change filter", Frequency: domain.FreqWeekly, NextDueDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Completed: true},
	}}
	svc := NewTaskService(store)
	completedAt := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return completedAt }

	task, err := svc.Complete(context.Background(), 1)
	require.NoError(t, err)

	require.NotNil(t, task.LastCompletedAt)
	assert.Equal(t, completedAt, *task.LastCompletedAt)
	assert.Equal(t, time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC), task.NextDueDate)
	assert.False(t, task.Completed, "a recurring task re-opens for the next cycle")
}

func TestComplete_UnknownFrequencyDefaultsToMonth(t *testing.T) {
	store := &fakeTaskStore{tasks: map[int64]*domain.MaintenanceTask{
		1: {ID: 1, Title: "Inspect seals", Frequency: "Fortnightly", NextDueDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}}
	svc := NewTaskService(store)
	completedAt := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return completedAt }

	task, err := svc.Complete(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), task.NextDueDate)
}

func TestComplete_NotFound(t *testing.T) {
	svc := NewTaskService(&fakeTaskStore{tasks: map[int64]*domain.MaintenanceTask{}})
	_, err := svc.Complete(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
