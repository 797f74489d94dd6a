package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupFlow(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.api.Get("/api/v1/auth/setup")
	require.Equal(t, http.StatusOK, resp.Code)
	status := decodeData[SetupStatusResponse](t, resp.Body.Bytes())
	assert.True(t, status.SetupRequired)

	header := ts.setupAdmin(t)

	resp = ts.api.Get("/api/v1/auth/setup")
	status = decodeData[SetupStatusResponse](t, resp.Body.Bytes())
	assert.False(t, status.SetupRequired)

	// The setup door closes after the first account.
	resp = ts.api.Post("/api/v1/auth/setup", map[string]any{
		"email":        "minh@mughouse.vn",
		"display_name": "Minh Tran",
		"password":     "tra-da-vier-he",
	})
	require.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "FORBIDDEN", decodeError(t, resp.Body.Bytes()).Code)

	resp = ts.api.Get("/api/v1/users/me", header)
	require.Equal(t, http.StatusOK, resp.Code)
	me := decodeData[UserResponse](t, resp.Body.Bytes())
	assert.Equal(t, "lan@mughouse.vn", me.Email)
	assert.Equal(t, "admin", me.Role)
}

func TestLoginAndRefresh(t *testing.T) {
	ts := newTestServer(t)
	ts.setupAdmin(t)

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "lan@mughouse.vn",
		"password": "banh-mi-ca-phe",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	pair := decodeData[AuthResponse](t, resp.Body.Bytes())
	assert.Equal(t, "Bearer", pair.TokenType)
	require.NotEmpty(t, pair.RefreshToken)

	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": pair.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.Code)
	rotated := decodeData[AuthResponse](t, resp.Body.Bytes())
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// Rotation retires the presented token.
	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": pair.RefreshToken,
	})
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.setupAdmin(t)

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "lan@mughouse.vn",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeError(t, resp.Body.Bytes()).Code)
}

func TestLogoutRevokesSession(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.api.Post("/api/v1/auth/setup", map[string]any{
		"email":        "lan@mughouse.vn",
		"display_name": "Lan Pham",
		"password":     "banh-mi-ca-phe",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	refresh := envelope.Data.RefreshToken

	resp = ts.api.Post("/api/v1/auth/logout", map[string]any{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{"refresh_token": refresh})
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogoutAllRequiresAuth(t *testing.T) {
	ts := newTestServer(t)
	header := ts.setupAdmin(t)

	resp := ts.api.Post("/api/v1/auth/logout-all")
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Post("/api/v1/auth/logout-all", header)
	require.Equal(t, http.StatusOK, resp.Code)
}
