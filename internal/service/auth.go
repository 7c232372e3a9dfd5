package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/verdanthq/verdant/internal/config"
	"github.com/verdanthq/verdant/internal/domain"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour

	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// UserStore is the persistence surface the auth service needs.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateLocal(ctx context.Context, email, passwordHash, displayName string) (*domain.User, error)
	UpsertOAuth(ctx context.Context, provider domain.AuthProvider, providerID, email, displayName string) (*domain.User, error)
}

// TokenPair is an access/refresh token set issued on login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type tokenClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// AuthService handles registration, login, Google OAuth, and JWT
// issuance/validation.
type AuthService struct {
	users     UserStore
	jwtSecret []byte
	google    *oauth2.Config
	now       func() time.Time
}

// NewAuthService creates an AuthService from configuration. Google
// login is available only when client credentials are configured.
func NewAuthService(users UserStore, cfg config.Config) *AuthService {
	var googleCfg *oauth2.Config
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		googleCfg = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.FrontendURL + "/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
	return &AuthService{
		users:     users,
		jwtSecret: []byte(cfg.JWTSecret),
		google:    googleCfg,
		now:       time.Now,
	}
}

// Register creates a local account and returns the user with a fresh
// token pair. A duplicate email surfaces as ErrConflict.
func (s *AuthService) Register(ctx context.Context, email, password, displayName string) (*domain.User, TokenPair, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateLocal(ctx, email, string(hash), displayName)
	if err != nil {
		return nil, TokenPair{}, err
	}

	pair, err := s.issueTokens(user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return user, pair, nil
}

// Login verifies credentials for a local account. Unknown emails,
// OAuth-only accounts, and wrong passwords all return ErrUnauthorized
// so the response never reveals which one failed.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, TokenPair{}, domain.ErrUnauthorized
		}
		return nil, TokenPair{}, err
	}
	if user.PasswordHash == nil {
		return nil, TokenPair{}, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, TokenPair{}, domain.ErrUnauthorized
	}

	pair, err := s.issueTokens(user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return user, pair, nil
}

// GoogleAuthURL returns the consent-screen URL for the given CSRF state.
func (s *AuthService) GoogleAuthURL(state string) (string, error) {
	if s.google == nil {
		return "", fmt.Errorf("google login not configured: %w", domain.ErrInvalidInput)
	}
	return s.google.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

type googleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// GoogleExchange redeems an OAuth code, fetches the Google profile, and
// upserts the matching account.
func (s *AuthService) GoogleExchange(ctx context.Context, code string) (*domain.User, TokenPair, error) {
	if s.google == nil {
		return nil, TokenPair{}, fmt.Errorf("google login not configured: %w", domain.ErrInvalidInput)
	}

	token, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("exchange code: %w", domain.ErrUnauthorized)
	}

	resp, err := s.google.Client(ctx, token).Get(googleUserInfoURL)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("fetch google profile: %w", err)
	}
	defer resp.Body.Close()

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, TokenPair{}, fmt.Errorf("decode google profile: %w", err)
	}
	if info.ID == "" || info.Email == "" {
		return nil, TokenPair{}, domain.ErrUnauthorized
	}
	if info.Name == "" {
		info.Name = info.Email
	}

	user, err := s.users.UpsertOAuth(ctx, domain.AuthProviderGoogle, info.ID, info.Email, info.Name)
	if err != nil {
		return nil, TokenPair{}, err
	}

	pair, err := s.issueTokens(user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a fresh pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	userID, err := s.parseToken(refreshToken, "refresh")
	if err != nil {
		return TokenPair{}, err
	}
	// The account may have been deleted since issuance.
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return TokenPair{}, domain.ErrUnauthorized
		}
		return TokenPair{}, err
	}
	return s.issueTokens(userID)
}

// ValidateAccessToken checks an access token and returns the user ID.
func (s *AuthService) ValidateAccessToken(tokenString string) (int64, error) {
	return s.parseToken(tokenString, "access")
}

func (s *AuthService) issueTokens(userID int64) (TokenPair, error) {
	access, err := s.signToken(userID, "access", accessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.signToken(userID, "refresh", refreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) signToken(userID int64, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := tokenClaims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

func (s *AuthService) parseToken(tokenString, wantType string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return 0, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || claims.Type != wantType {
		return 0, domain.ErrUnauthorized
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, domain.ErrUnauthorized
	}
	return userID, nil
}
