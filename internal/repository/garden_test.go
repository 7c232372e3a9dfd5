package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdanthq/verdant/internal/domain"
)

func TestGardenMemberRole(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGardenRepository(db)

	mock.ExpectQuery(`SELECT role FROM garden_members`).
		WithArgs(int64(3), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("editor"))

	role, err := repo.MemberRole(context.Background(), 3, 7)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEditor, role)
	assert.True(t, role.CanEdit())
	assert.False(t, role.CanManage())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGardenMemberRole_NotAMember(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGardenRepository(db)

	mock.ExpectQuery(`SELECT role FROM garden_members`).
		WithArgs(int64(3), int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.MemberRole(context.Background(), 3, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGardenFindByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGardenRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "owner_id", "name", "description", "postal_code", "created_at", "updated_at",
	}).AddRow(int64(3), int64(7), "Backyard", nil, "97201", now, now)

	mock.ExpectQuery(`SELECT .+ FROM gardens WHERE id`).
		WithArgs(int64(3)).
		WillReturnRows(rows)

	garden, err := repo.FindByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Backyard", garden.Name)
	require.NotNil(t, garden.PostalCode)
	assert.Equal(t, "97201", *garden.PostalCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGardenDelete_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGardenRepository(db)

	mock.ExpectExec(`DELETE FROM gardens`).
		WithArgs(int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
