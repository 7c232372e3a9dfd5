package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdanthq/verdant/internal/config"
	"github.com/verdanthq/verdant/internal/domain"
	"github.com/verdanthq/verdant/internal/service"
)

type memUserStore struct {
	users map[int64]*domain.User
}

func (s *memUserStore) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (s *memUserStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memUserStore) CreateLocal(_ context.Context, email, passwordHash, displayName string) (*domain.User, error) {
	u := &domain.User{
		ID:           int64(len(s.users) + 1),
		Provider:     domain.AuthProviderLocal,
		Email:        email,
		PasswordHash: &passwordHash,
		DisplayName:  displayName,
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *memUserStore) UpsertOAuth(context.Context, domain.AuthProvider, string, string, string) (*domain.User, error) {
	return nil, domain.ErrConflict
}

func newTestAuthService(t *testing.T) (*service.AuthService, service.TokenPair) {
	t.Helper()
	users := &memUserStore{users: make(map[int64]*domain.User)}
	auth := service.NewAuthService(users, config.Config{JWTSecret: "test-secret"})

	_, pair, err := auth.Register(context.Background(), "alice@example.com", "hunter22", "Alice")
	require.NoError(t, err)
	return auth, pair
}

func echoHandlerOK(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}
	return JSON(c, http.StatusOK, map[string]int64{"user_id": userID})
}

func TestJWTAuth(t *testing.T) {
	auth, pair := newTestAuthService(t)
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler
	e.GET("/protected", echoHandlerOK, JWTAuth(auth))

	t.Run("valid bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"user_id":1`)
	})

	t.Run("query token fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected?token="+pair.AccessToken, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", pair.AccessToken)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCronAuth(t *testing.T) {
	handlerOK := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	t.Run("enforced when configured", func(t *testing.T) {
		e := echo.New()
		e.HTTPErrorHandler = HTTPErrorHandler
		e.POST("/cron/weather", handlerOK, CronAuth("s3cret"))

		req := httptest.NewRequest(http.MethodPost, "/cron/weather", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "missing secret is rejected")

		req = httptest.NewRequest(http.MethodPost, "/cron/weather?secret=wrong", nil)
		rec = httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "wrong secret is rejected")

		req = httptest.NewRequest(http.MethodPost, "/cron/weather?secret=s3cret", nil)
		rec = httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "query secret accepted")

		req = httptest.NewRequest(http.MethodPost, "/cron/weather", nil)
		req.Header.Set("X-Cron-Secret", "s3cret")
		rec = httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "header secret accepted")
	})

	t.Run("open when unset", func(t *testing.T) {
		e := echo.New()
		e.HTTPErrorHandler = HTTPErrorHandler
		e.POST("/cron/weather", handlerOK, CronAuth(""))

		req := httptest.NewRequest(http.MethodPost, "/cron/weather", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
