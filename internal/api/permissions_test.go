package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mughouse/mughouse-server/internal/domain"
)

// staffHeader creates a staff user directly in the store and returns a
// Bearer header for it.
func (ts *testServer) staffHeader(t *testing.T) string {
	t.Helper()

	now := time.Now()
	staff := &domain.User{
		Auditable: domain.Auditable{
			ID:        "user_staff_test",
			CreatedAt: now,
			UpdatedAt: now,
		},
		Email:        "minh@mughouse.vn",
		DisplayName:  "Minh Tran",
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$dGVzdA$dGVzdA",
		Role:         domain.RoleStaff,
	}
	require.NoError(t, ts.store.CreateUser(context.Background(), staff))

	token, err := ts.tokens.GenerateAccessToken(staff)
	require.NoError(t, err)
	return "Authorization: Bearer " + token
}

func TestStaffCannotPurgeProducts(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.setupAdmin(t)
	staff := ts.staffHeader(t)

	mugs := createCategory(t, ts, admin, "Mugs", "")
	p := createProduct(t, ts, admin, "Ly A Ceramic Mug", mugs.ID)

	resp := ts.api.Delete("/api/v1/products/"+p.ID, staff)
	require.Equal(t, http.StatusOK, resp.Code, "staff soft delete should work: %s", resp.Body.String())

	resp = ts.api.Delete("/api/v1/products/"+p.ID+"/purge", staff)
	require.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "FORBIDDEN", decodeError(t, resp.Body.Bytes()).Code)

	// Admins may purge once the product is tombstoned and unordered.
	resp = ts.api.Delete("/api/v1/products/"+p.ID+"/purge", admin)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestStaffCannotRebuildSearchIndex(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.setupAdmin(t)
	staff := ts.staffHeader(t)

	resp := ts.api.Post("/api/v1/search/rebuild", staff)
	require.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Post("/api/v1/search/rebuild", admin)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestStaffCanRunDailyOperations(t *testing.T) {
	ts := newTestServer(t)
	ts.setupAdmin(t)
	staff := ts.staffHeader(t)

	mugs := createCategory(t, ts, staff, "Mugs", "")
	p := createProduct(t, ts, staff, "Ly A Ceramic Mug", mugs.ID)
	c := createCustomer(t, ts, staff, "Lan Pham", "+84912345678")
	o := createOrder(t, ts, staff, c.ID, map[string]any{"product_id": p.ID, "quantity": 1})

	resp := ts.api.Post("/api/v1/orders/"+o.ID+"/status", staff, map[string]any{
		"status": "confirmed",
	})
	require.Equal(t, http.StatusOK, resp.Code)
}
