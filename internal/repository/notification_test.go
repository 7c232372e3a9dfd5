package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdanthq/verdant/internal/domain"
)

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "pgx"), mock
}

func TestNotificationExistsSince_Found(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewNotificationRepository(db)

	since := time.Now().Add(-4 * time.Hour)
	mock.ExpectQuery(`SELECT EXISTS .+ WHERE user_id = \$1 AND type = \$2 AND NOT read`).
		WithArgs(int64(1), string(domain.NotificationWeatherAlert), since, `{"plant_id":5}`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsSince(context.Background(), 1,
		domain.NotificationWeatherAlert, map[string]any{"plant_id": 5}, since)

	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationExistsSince_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewNotificationRepository(db)

	since := time.Now().Add(-4 * time.Hour)
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(2), string(domain.NotificationSensorAlert), since, `{"device_id":9}`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.ExistsSince(context.Background(), 2,
		domain.NotificationSensorAlert, map[string]any{"device_id": 9}, since)

	require.NoError(t, err)
	assert.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationMarkRead_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewNotificationRepository(db)

	mock.ExpectQuery(`UPDATE notifications`).
		WithArgs(true, int64(42), int64(1)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.MarkRead(context.Background(), 42, 1, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationCreate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewNotificationRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "type", "title", "message", "meta", "read", "created_at",
	}).AddRow(int64(10), int64(1), "MAINTENANCE_DUE", "Filter change due", "msg", []byte(`{}`), false, now)

	mock.ExpectQuery(`INSERT INTO notifications`).
		WillReturnRows(rows)

	created, err := repo.Create(context.Background(), domain.Notification{
		UserID:  1,
		Type:    domain.NotificationMaintenanceDue,
		Title:   "Filter change due",
		Message: "msg",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(10), created.ID)
	assert.Equal(t, domain.NotificationMaintenanceDue, created.Type)
	assert.False(t, created.Read)
	require.NoError(t, mock.ExpectationsWereMet())
}
