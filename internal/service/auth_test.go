package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/verdanthq/verdant/internal/config"
	"github.com/verdanthq/verdant/internal/domain"
)

type fakeUsers struct {
	byID    map[int64]*domain.User
	byEmail map[string]*domain.User
	nextID  int64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		byID:    make(map[int64]*domain.User),
		byEmail: make(map[string]*domain.User),
		nextID:  1,
	}
}

func (f *fakeUsers) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) CreateLocal(_ context.Context, email, passwordHash, displayName string) (*domain.User, error) {
	if _, exists := f.byEmail[email]; exists {
		return nil, domain.ErrConflict
	}
	u := &domain.User{
		ID:           f.nextID,
		Provider:     domain.AuthProviderLocal,
		Email:        email,
		PasswordHash: &passwordHash,
		DisplayName:  displayName,
	}
	f.nextID++
	f.byID[u.ID] = u
	f.byEmail[email] = u
	return u, nil
}

func (f *fakeUsers) UpsertOAuth(_ context.Context, provider domain.AuthProvider, providerID, email, displayName string) (*domain.User, error) {
	if u, exists := f.byEmail[email]; exists {
		return u, nil
	}
	u := &domain.User{
		ID:          f.nextID,
		Provider:    provider,
		ProviderID:  &providerID,
		Email:       email,
		DisplayName: displayName,
	}
	f.nextID++
	f.byID[u.ID] = u
	f.byEmail[email] = u
	return u, nil
}

func newTestAuth(users *fakeUsers) *AuthService {
	return NewAuthService(users, config.Config{JWTSecret: "test-secret"})
}

func TestRegisterThenLogin(t *testing.T) {
	users := newFakeUsers()
	auth := newTestAuth(users)

	user, pair, err := auth.Register(context.Background(), "alice@example.com", "hunter22", "Alice")
	require.NoError(t, err)
	assert.Equal(t, domain.AuthProviderLocal, user.Provider)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	loggedIn, _, err := auth.Login(context.Background(), "alice@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
}

func TestLogin_Failures(t *testing.T) {
	users := newFakeUsers()
	auth := newTestAuth(users)
	_, _, err := auth.Register(context.Background(), "alice@example.com", "hunter22", "Alice")
	require.NoError(t, err)

	// OAuth-only account has no password hash.
	oauthUser, err := users.UpsertOAuth(context.Background(), domain.AuthProviderGoogle, "g-123", "bob@example.com", "Bob")
	require.NoError(t, err)
	require.Nil(t, oauthUser.PasswordHash)

	for name, attempt := range map[string][2]string{
		"unknown email":      {"nobody@example.com", "hunter22"},
		"wrong password":     {"alice@example.com", "wrong"},
		"oauth-only account": {"bob@example.com", "anything"},
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := auth.Login(context.Background(), attempt[0], attempt[1])
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := newFakeUsers()
	auth := newTestAuth(users)

	_, _, err := auth.Register(context.Background(), "alice@example.com", "hunter22", "Alice")
	require.NoError(t, err)

	_, _, err = auth.Register(context.Background(), "alice@example.com", "other", "Alice Again")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	users := newFakeUsers()
	auth := newTestAuth(users)

	user, pair, err := auth.Register(context.Background(), "alice@example.com", "hunter22", "Alice")
	require.NoError(t, err)

	userID, err := auth.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	// A refresh token is not valid where an access token is expected.
	_, err = auth.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = auth.ValidateAccessToken("not-a-token")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	users := newFakeUsers()
	auth := newTestAuth(users)

	issued := time.Now()
	auth.now = func() time.Time { return issued }
	_, pair, err := auth.Register(context.Background(), "alice@example.com", "hunter22", "Alice")
	require.NoError(t, err)

	auth.now = func() time.Time { return issued.Add(accessTokenTTL + time.Minute) }
	_, err = auth.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRefresh(t *testing.T) {
	users := newFakeUsers()
	auth := newTestAuth(users)

	user, pair, err := auth.Register(context.Background(), "alice@example.com", "hunter22", "Alice")
	require.NoError(t, err)

	fresh, err := auth.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	userID, err := auth.ValidateAccessToken(fresh.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	// Access tokens cannot be used to refresh.
	_, err = auth.Refresh(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// A deleted account cannot refresh.
	delete(users.byID, user.ID)
	_, err = auth.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRegister_StoresBcryptHash(t *testing.T) {
	users := newFakeUsers()
	auth := newTestAuth(users)

	user, _, err := auth.Register(context.Background(), "alice@example.com", "hunter22", "Alice")
	require.NoError(t, err)
	require.NotNil(t, user.PasswordHash)
	assert.NotEqual(t, "hunter22", *user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte("hunter22")))
}

func TestGoogleAuthURL_NotConfigured(t *testing.T) {
	auth := newTestAuth(newFakeUsers())
	_, err := auth.GoogleAuthURL("state")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
