package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdanthq/verdant/internal/repository"
)

func setupNotificationHandler(t *testing.T) (*NotificationHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := repository.NewNotificationRepository(sqlx.NewDb(db, "pgx"))
	return NewNotificationHandler(repo), mock
}

func notificationContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewAppValidator()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(contextKeyUserID, int64(7))
	return c, rec
}

func notificationRows(times ...time.Time) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "user_id", "type", "title", "message", "meta", "read", "created_at"})
	for i, ts := range times {
		rows.AddRow(int64(i+1), int64(7), "WEATHER_ALERT", "Heat warning", "Tomato may be affected", []byte(`{}`), false, ts)
	}
	return rows
}

func TestNotificationList_GroupedByDay(t *testing.T) {
	h, mock := setupNotificationHandler(t)

	day1 := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .+ FROM notifications WHERE user_id = \$1 ORDER BY created_at DESC LIMIT \$2`).
		WithArgs(int64(7), 50).
		WillReturnRows(notificationRows(day1, day1.Add(-time.Hour), day2))

	c, rec := notificationContext(http.MethodGet, "/notifications?grouped=true")
	require.NoError(t, h.List(c))
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []struct {
			Date          string            `json:"date"`
			Notifications []json.RawMessage `json:"notifications"`
		} `json:"data"`
		Meta struct {
			Count int `json:"count"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	require.Len(t, body.Data, 2)
	assert.Equal(t, "2026-05-02", body.Data[0].Date)
	assert.Len(t, body.Data[0].Notifications, 2)
	assert.Equal(t, "2026-05-01", body.Data[1].Date)
	assert.Len(t, body.Data[1].Notifications, 1)
	assert.Equal(t, 3, body.Meta.Count)
}

func TestNotificationList_GroupsByUTCDay(t *testing.T) {
	h, mock := setupNotificationHandler(t)

	// 20:00 on May 1st in UTC-8 is already May 2nd in UTC; grouping
	// must not depend on the server's local zone.
	pacific := time.FixedZone("UTC-8", -8*60*60)
	late := time.Date(2026, 5, 1, 20, 0, 0, 0, pacific)
	early := time.Date(2026, 5, 1, 10, 0, 0, 0, pacific)
	mock.ExpectQuery(`SELECT .+ FROM notifications WHERE user_id = \$1 ORDER BY created_at DESC LIMIT \$2`).
		WithArgs(int64(7), 50).
		WillReturnRows(notificationRows(late, early))

	c, rec := notificationContext(http.MethodGet, "/notifications?grouped=true")
	require.NoError(t, h.List(c))
	require.NoError(t, mock.ExpectationsWereMet())

	var body struct {
		Data []struct {
			Date string `json:"date"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	require.Len(t, body.Data, 2)
	assert.Equal(t, "2026-05-02", body.Data[0].Date)
	assert.Equal(t, "2026-05-01", body.Data[1].Date)
}

func TestNotificationList_UnreadOnly(t *testing.T) {
	h, mock := setupNotificationHandler(t)

	mock.ExpectQuery(`SELECT .+ FROM notifications WHERE user_id = \$1 AND NOT read ORDER BY created_at DESC LIMIT \$2`).
		WithArgs(int64(7), 50).
		WillReturnRows(notificationRows())

	c, rec := notificationContext(http.MethodGet, "/notifications?unread_only=true")
	require.NoError(t, h.List(c))
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"meta":{"count":0}}`, rec.Body.String())
}

func TestNotificationMarkAllRead(t *testing.T) {
	h, mock := setupNotificationHandler(t)

	mock.ExpectExec(`UPDATE notifications SET read = TRUE WHERE user_id = \$1 AND NOT read`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 4))

	c, rec := notificationContext(http.MethodPost, "/notifications/read-all")
	require.NoError(t, h.MarkAllRead(c))
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"updated":4}}`, rec.Body.String())
}
