package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/mughouse/mughouse-server/internal/auth"
	"github.com/mughouse/mughouse-server/internal/domain"
	"github.com/mughouse/mughouse-server/internal/errors"
	"github.com/mughouse/mughouse-server/internal/id"
	"github.com/mughouse/mughouse-server/internal/store"
	"github.com/mughouse/mughouse-server/internal/validation"
)

// AuthService handles admin authentication: first-run bootstrap, login,
// refresh token rotation, and access token verification.
type AuthService struct {
	store     store.Store
	tokens    *auth.TokenService
	logger    *slog.Logger
	validator *validation.Validator
}

// NewAuthService creates a new auth service.
func NewAuthService(st store.Store, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:     st,
		tokens:    tokens,
		logger:    logger,
		validator: validation.New(),
	}
}

// TokenPair is an issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// SetupRequest contains fields for bootstrapping the first administrator.
type SetupRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=100"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
}

// SetupRequired reports whether no admin account exists yet.
func (s *AuthService) SetupRequired(ctx context.Context) (bool, error) {
	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// Setup creates the first administrator account and logs them in. Once any
// user exists the endpoint is closed for good.
func (s *AuthService) Setup(ctx context.Context, req SetupRequest) (*domain.User, *TokenPair, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, nil, err
	}

	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, nil, err
	}
	if count > 0 {
		return nil, nil, errors.Forbidden("setup has already been completed")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, nil, err
	}

	u := &domain.User{
		Auditable:    domain.Auditable{ID: userID},
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	u.InitTimestamps()

	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, nil, err
	}

	pair, err := s.createSession(ctx, u)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("first administrator created", "id", userID, "email", req.Email)
	return u, pair, nil
}

// LoginRequest contains login credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials and issues a token pair. Unknown emails and
// wrong passwords produce the same error so accounts cannot be enumerated.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*domain.User, *TokenPair, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, nil, err
	}

	u, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, errors.InvalidCredentials("invalid email or password")
		}
		return nil, nil, err
	}

	ok, err := auth.VerifyPassword(u.PasswordHash, req.Password)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, errors.InvalidCredentials("invalid email or password")
	}

	pair, err := s.createSession(ctx, u)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user logged in", "id", u.ID, "email", u.Email)
	return u, pair, nil
}

// Refresh rotates a refresh token: the presented token is retired and a new
// pair is issued on the same session. Expired sessions are deleted on sight.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.User, *TokenPair, error) {
	if refreshToken == "" {
		return nil, nil, errors.Unauthorized("refresh token required")
	}

	sess, err := s.store.GetSessionByRefreshToken(ctx, auth.HashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, errors.Unauthorized("invalid refresh token")
		}
		return nil, nil, err
	}

	if sess.IsExpired() {
		if err := s.store.DeleteSession(ctx, sess.ID); err != nil {
			s.logger.Warn("failed to delete expired session", "id", sess.ID, "error", err)
		}
		return nil, nil, errors.TokenExpired("session expired, log in again")
	}

	u, err := s.store.GetUser(ctx, sess.UserID)
	if err != nil {
		return nil, nil, notFound(err, "user "+sess.UserID+" not found")
	}

	accessToken, err := s.tokens.GenerateAccessToken(u)
	if err != nil {
		return nil, nil, err
	}
	newRefresh, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	sess.RefreshTokenHash = auth.HashRefreshToken(newRefresh)
	sess.LastUsedAt = now
	sess.ExpiresAt = now.Add(s.tokens.RefreshTokenDuration())
	if err := s.store.UpdateSession(ctx, sess); err != nil {
		return nil, nil, err
	}

	return u, &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		ExpiresAt:    now.Add(s.tokens.AccessTokenDuration()),
	}, nil
}

// Logout retires the session behind a refresh token. Unknown tokens succeed
// silently; logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	sess, err := s.store.GetSessionByRefreshToken(ctx, auth.HashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.store.DeleteSession(ctx, sess.ID)
}

// LogoutAll retires every session of a user.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	return s.store.DeleteAllUserSessions(ctx, userID)
}

// VerifyAccessToken verifies a bearer token and returns its claims.
func (s *AuthService) VerifyAccessToken(tokenString string) (*auth.AccessClaims, error) {
	claims, err := s.tokens.VerifyAccessToken(tokenString)
	if err != nil {
		return nil, errors.Unauthorized("invalid or expired access token")
	}
	return claims, nil
}

// CleanupExpiredSessions removes sessions past their expiry. Intended for a
// periodic background sweep.
func (s *AuthService) CleanupExpiredSessions(ctx context.Context) (int, error) {
	n, err := s.store.DeleteExpiredSessions(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("expired sessions removed", "count", n)
	}
	return n, nil
}

// createSession opens a new refresh session and issues a token pair.
func (s *AuthService) createSession(ctx context.Context, u *domain.User) (*TokenPair, error) {
	accessToken, err := s.tokens.GenerateAccessToken(u)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	sessionID, err := id.Generate("sess")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &domain.Session{
		ID:               sessionID,
		UserID:           u.ID,
		RefreshTokenHash: auth.HashRefreshToken(refreshToken),
		CreatedAt:        now,
		LastUsedAt:       now,
		ExpiresAt:        now.Add(s.tokens.RefreshTokenDuration()),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(s.tokens.AccessTokenDuration()),
	}, nil
}
