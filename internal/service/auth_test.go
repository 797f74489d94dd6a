package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mughouse/mughouse-server/internal/auth"
	"github.com/mughouse/mughouse-server/internal/domain"
	"github.com/mughouse/mughouse-server/internal/errors"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newAuthService(t *testing.T, refreshDuration time.Duration) *AuthService {
	t.Helper()
	tokens, err := auth.NewTokenService(testKeyHex, 15*time.Minute, refreshDuration)
	require.NoError(t, err)
	return NewAuthService(newTestStore(t), tokens, testLogger())
}

func mustSetup(t *testing.T, s *AuthService) (*domain.User, *TokenPair) {
	t.Helper()
	u, pair, err := s.Setup(context.Background(), SetupRequest{
		Email:       "lan@mughouse.vn",
		DisplayName: "Lan Pham",
		Password:    "banh-mi-ca-phe",
	})
	require.NoError(t, err)
	return u, pair
}

func TestSetupFirstAdmin(t *testing.T) {
	s := newAuthService(t, 24*time.Hour)
	ctx := context.Background()

	required, err := s.SetupRequired(ctx)
	require.NoError(t, err)
	assert.True(t, required)

	u, pair := mustSetup(t, s)
	assert.Equal(t, domain.RoleAdmin, u.Role)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	required, err = s.SetupRequired(ctx)
	require.NoError(t, err)
	assert.False(t, required)

	// The setup door closes after the first account.
	_, _, err = s.Setup(ctx, SetupRequest{
		Email:       "minh@mughouse.vn",
		DisplayName: "Minh Tran",
		Password:    "tra-da-vier-he",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrForbidden))
}

func TestLogin(t *testing.T) {
	s := newAuthService(t, 24*time.Hour)
	ctx := context.Background()
	mustSetup(t, s)

	u, pair, err := s.Login(ctx, LoginRequest{Email: "lan@mughouse.vn", Password: "banh-mi-ca-phe"})
	require.NoError(t, err)
	assert.Equal(t, "lan@mughouse.vn", u.Email)

	claims, err := s.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.True(t, claims.IsAdmin())
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newAuthService(t, 24*time.Hour)
	ctx := context.Background()
	mustSetup(t, s)

	// Wrong password and unknown email produce the same error shape.
	_, _, err := s.Login(ctx, LoginRequest{Email: "lan@mughouse.vn", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidCredentials))

	_, _, err = s.Login(ctx, LoginRequest{Email: "nobody@mughouse.vn", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidCredentials))
}

func TestRefreshRotatesToken(t *testing.T) {
	s := newAuthService(t, 24*time.Hour)
	ctx := context.Background()
	_, pair := mustSetup(t, s)

	u, rotated, err := s.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "lan@mughouse.vn", u.Email)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The presented token is retired by rotation.
	_, _, err = s.Refresh(ctx, pair.RefreshToken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))

	// The rotated token works.
	_, _, err = s.Refresh(ctx, rotated.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshExpiredSession(t *testing.T) {
	s := newAuthService(t, -time.Minute)
	ctx := context.Background()
	_, pair := mustSetup(t, s)

	_, _, err := s.Refresh(ctx, pair.RefreshToken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTokenExpired))

	// The expired session is gone; a second attempt is a plain unknown token.
	_, _, err = s.Refresh(ctx, pair.RefreshToken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}

func TestLogout(t *testing.T) {
	s := newAuthService(t, 24*time.Hour)
	ctx := context.Background()
	_, pair := mustSetup(t, s)

	require.NoError(t, s.Logout(ctx, pair.RefreshToken))

	_, _, err := s.Refresh(ctx, pair.RefreshToken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))

	// Logout is idempotent.
	require.NoError(t, s.Logout(ctx, pair.RefreshToken))
	require.NoError(t, s.Logout(ctx, ""))
}

func TestLogoutAll(t *testing.T) {
	s := newAuthService(t, 24*time.Hour)
	ctx := context.Background()
	u, first := mustSetup(t, s)

	_, second, err := s.Login(ctx, LoginRequest{Email: "lan@mughouse.vn", Password: "banh-mi-ca-phe"})
	require.NoError(t, err)

	require.NoError(t, s.LogoutAll(ctx, u.ID))

	for _, token := range []string{first.RefreshToken, second.RefreshToken} {
		_, _, err := s.Refresh(ctx, token)
		require.Error(t, err)
	}
}

func TestVerifyAccessTokenRejectsGarbage(t *testing.T) {
	s := newAuthService(t, 24*time.Hour)

	_, err := s.VerifyAccessToken("v4.local." + strings.Repeat("A", 64))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}

func TestSetupValidation(t *testing.T) {
	s := newAuthService(t, 24*time.Hour)

	_, _, err := s.Setup(context.Background(), SetupRequest{
		Email:       "not-an-email",
		DisplayName: "Lan",
		Password:    "short",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}
