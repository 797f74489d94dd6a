package api

import (
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mughouse/mughouse-server/internal/auth"
	"github.com/mughouse/mughouse-server/internal/blob"
	"github.com/mughouse/mughouse-server/internal/search"
	"github.com/mughouse/mughouse-server/internal/service"
	"github.com/mughouse/mughouse-server/internal/sse"
	"github.com/mughouse/mughouse-server/internal/store/sqlite"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

// testErrorEnvelope mirrors the structured error envelope.
type testErrorEnvelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type testServer struct {
	*Server
	api    humatest.TestAPI
	store  *sqlite.Store
	tokens *auth.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	index, err := search.NewSearchIndex(search.Options{DataPath: t.TempDir(), Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	tokens, err := auth.NewTokenService(testKeyHex, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	blobs := blob.NewMemory()
	sseManager := sse.NewManager(logger)

	services := &Services{
		Auth:     service.NewAuthService(st, tokens, logger),
		Category: service.NewCategoryService(st, service.NoopIndexer{}, service.NoopEmitter{}, logger),
		Product:  service.NewProductService(st, blobs, service.NoopIndexer{}, service.NoopEmitter{}, logger),
		Customer: service.NewCustomerService(st, service.NoopEmitter{}, logger),
		Order:    service.NewOrderService(st, service.NoopEmitter{}, logger),
		Search:   service.NewSearchService(index, st, service.NoopEmitter{}, service.NoopReindexState{}, logger),
	}

	srv := NewServer(st, services, sse.NewHandler(sseManager, logger), logger)

	return &testServer{
		Server: srv,
		api:    humatest.Wrap(t, srv.api),
		store:  st,
		tokens: tokens,
	}
}

// setupAdmin runs initial setup and returns a Bearer header value.
func (ts *testServer) setupAdmin(t *testing.T) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/setup", map[string]any{
		"email":        "lan@mughouse.vn",
		"display_name": "Lan Pham",
		"password":     "banh-mi-ca-phe",
	})
	require.Equal(t, http.StatusOK, resp.Code, "setup failed: %s", resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.AccessToken)

	return "Authorization: Bearer " + envelope.Data.AccessToken
}

func decodeData[T any](t *testing.T, body []byte) T {
	t.Helper()
	var envelope testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope.Data
}

func decodeError(t *testing.T, body []byte) testErrorEnvelope {
	t.Helper()
	var envelope testErrorEnvelope
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	data := decodeData[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, "healthy", data.Status)
}

func TestEnvelopeVersionOnEveryResponse(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.api.Get("/health")
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, float64(EnvelopeVersion), envelope["v"])
	assert.Equal(t, true, envelope["success"])
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.api.Get("/api/v1/categories")
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Get("/api/v1/products", "Authorization: Bearer not-a-token")
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Get("/api/v1/orders", "Authorization: Basic abc")
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}
