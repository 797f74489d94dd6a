package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createOrder(t *testing.T, ts *testServer, header, customerID string, items ...map[string]any) OrderResponse {
	t.Helper()
	resp := ts.api.Post("/api/v1/orders", header, map[string]any{
		"customer_id": customerID,
		"items":       items,
	})
	require.Equal(t, http.StatusOK, resp.Code, "create order failed: %s", resp.Body.String())
	return decodeData[OrderResponse](t, resp.Body.Bytes())
}

func TestOrderCreateSnapshotsProducts(t *testing.T) {
	ts := newTestServer(t)
	header := ts.setupAdmin(t)

	mugs := createCategory(t, ts, header, "Mugs", "")
	p := createProduct(t, ts, header, "Ly A Ceramic Mug", mugs.ID)
	c := createCustomer(t, ts, header, "Lan Pham", "+84912345678")

	o := createOrder(t, ts, header, c.ID, map[string]any{"product_id": p.ID, "quantity": 2})
	assert.Equal(t, "pending", o.Status)
	require.Len(t, o.Items, 1)
	assert.Equal(t, int64(25000), o.Total)

	snap := o.Items[0].Snapshot
	assert.Equal(t, "Ly A Ceramic Mug", snap.Name)
	assert.Equal(t, "ceramic", snap.Material)
	assert.Equal(t, int64(12500), snap.UnitPrice)

	// Later price edits never touch the captured snapshot.
	resp := ts.api.Patch("/api/v1/products/"+p.ID, header, map[string]any{
		"unit_price": int64(99000),
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/orders/"+o.ID, header)
	require.Equal(t, http.StatusOK, resp.Code)
	reread := decodeData[OrderResponse](t, resp.Body.Bytes())
	assert.Equal(t, int64(12500), reread.Items[0].Snapshot.UnitPrice)
	assert.Equal(t, int64(25000), reread.Total)
}

func TestOrderRejectsTombstonedProduct(t *testing.T) {
	ts := newTestServer(t)
	header := ts.setupAdmin(t)

	mugs := createCategory(t, ts, header, "Mugs", "")
	p := createProduct(t, ts, header, "Ly A Ceramic Mug", mugs.ID)
	c := createCustomer(t, ts, header, "Lan Pham", "+84912345678")

	resp := ts.api.Delete("/api/v1/products/"+p.ID, header)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/orders", header, map[string]any{
		"customer_id": c.ID,
		"items":       []map[string]any{{"product_id": p.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "CONFLICT", decodeError(t, resp.Body.Bytes()).Code)
}

func TestOrderStatusTransitions(t *testing.T) {
	ts := newTestServer(t)
	header := ts.setupAdmin(t)

	mugs := createCategory(t, ts, header, "Mugs", "")
	p := createProduct(t, ts, header, "Ly A Ceramic Mug", mugs.ID)
	c := createCustomer(t, ts, header, "Lan Pham", "+84912345678")
	o := createOrder(t, ts, header, c.ID, map[string]any{"product_id": p.ID, "quantity": 1})

	for _, status := range []string{"confirmed", "shipped", "delivered"} {
		resp := ts.api.Post("/api/v1/orders/"+o.ID+"/status", header, map[string]any{
			"status": status,
		})
		require.Equal(t, http.StatusOK, resp.Code, "transition to %s failed: %s", status, resp.Body.String())
		assert.Equal(t, status, decodeData[OrderResponse](t, resp.Body.Bytes()).Status)
	}

	// Delivered is terminal.
	resp := ts.api.Post("/api/v1/orders/"+o.ID+"/status", header, map[string]any{
		"status": "cancelled",
	})
	require.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "INVALID_LIFECYCLE_STATE", decodeError(t, resp.Body.Bytes()).Code)
}

func TestOrderStatusRejectsSkippedStep(t *testing.T) {
	ts := newTestServer(t)
	header := ts.setupAdmin(t)

	mugs := createCategory(t, ts, header, "Mugs", "")
	p := createProduct(t, ts, header, "Ly A Ceramic Mug", mugs.ID)
	c := createCustomer(t, ts, header, "Lan Pham", "+84912345678")
	o := createOrder(t, ts, header, c.ID, map[string]any{"product_id": p.ID, "quantity": 1})

	resp := ts.api.Post("/api/v1/orders/"+o.ID+"/status", header, map[string]any{
		"status": "delivered",
	})
	require.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "INVALID_LIFECYCLE_STATE", decodeError(t, resp.Body.Bytes()).Code)
}

func TestOrderListFilters(t *testing.T) {
	ts := newTestServer(t)
	header := ts.setupAdmin(t)

	mugs := createCategory(t, ts, header, "Mugs", "")
	p := createProduct(t, ts, header, "Ly A Ceramic Mug", mugs.ID)
	lan := createCustomer(t, ts, header, "Lan Pham", "+84912345678")
	minh := createCustomer(t, ts, header, "Minh Tran", "+84911111111")

	createOrder(t, ts, header, lan.ID, map[string]any{"product_id": p.ID, "quantity": 1})
	o := createOrder(t, ts, header, minh.ID, map[string]any{"product_id": p.ID, "quantity": 3})

	resp := ts.api.Post("/api/v1/orders/"+o.ID+"/status", header, map[string]any{
		"status": "confirmed",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/orders?customer_id="+lan.ID, header)
	require.Equal(t, http.StatusOK, resp.Code)
	list := decodeData[ListOrdersResponse](t, resp.Body.Bytes())
	require.Len(t, list.Orders, 1)
	assert.Equal(t, lan.ID, list.Orders[0].CustomerID)

	resp = ts.api.Get("/api/v1/orders?status=confirmed", header)
	require.Equal(t, http.StatusOK, resp.Code)
	list = decodeData[ListOrdersResponse](t, resp.Body.Bytes())
	require.Len(t, list.Orders, 1)
	assert.Equal(t, o.ID, list.Orders[0].ID)
}
