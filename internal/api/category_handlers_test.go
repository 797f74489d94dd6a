package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createCategory(t *testing.T, ts *testServer, header, name, parentID string) CategoryResponse {
	t.Helper()
	resp := ts.api.Post("/api/v1/categories", header, map[string]any{
		"name":      name,
		"parent_id": parentID,
	})
	require.Equal(t, http.StatusOK, resp.Code, "create category failed: %s", resp.Body.String())
	return decodeData[CategoryResponse](t, resp.Body.Bytes())
}

func TestCategoryCRUD(t *testing.T) {
	ts := newTestServer(t)
	header := ts.setupAdmin(t)

	drinkware := createCategory(t, ts, header, "Drinkware", "")
	assert.Equal(t, "drinkware", drinkware.Slug)
	assert.True(t, drinkware.IsActive)

	mugs := createCategory(t, ts, header, "Mugs", drinkware.ID)
	assert.Equal(t, drinkware.ID, mugs.ParentID)

	resp := ts.api.Get("/api/v1/categories", header)
	require.Equal(t, http.StatusOK, resp.Code)
	list := decodeData[ListCategoriesResponse](t, resp.Body.Bytes())
	assert.Len(t, list.Categories, 2)

	resp = ts.api.Get("/api/v1/categories/"+drinkware.ID+"/children", header)
	require.Equal(t, http.StatusOK, resp.Code)
	children := decodeData[ListCategoriesResponse](t, resp.Body.Bytes())
	require.Len(t, children.Categories, 1)
	assert.Equal(t, mugs.ID, children.Categories[0].ID)

	resp = ts.api.Patch("/api/v1/categories/"+mugs.ID, header, map[string]any{
		"name": "Ly Sứ Trắng",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	renamed := decodeData[CategoryResponse](t, resp.Body.Bytes())
	assert.Equal(t, "ly-su-trang", renamed.Slug)

	resp = ts.api.Get("/api/v1/categories/does-not-exist", header)
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCategoryDepthLimitOverAPI(t *testing.T) {
	ts := newTestServer(t)
	header := ts.setupAdmin(t)

	root := createCategory(t, ts, header, "Drinkware", "")
	mid := createCategory(t, ts, header, "Mugs", root.ID)
	leaf := createCategory(t, ts, header, "Travel Mugs", mid.ID)

	resp := ts.api.Post("/api/v1/categories", header, map[string]any{
		"name":      "Too Deep",
		"parent_id": leaf.ID,
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "MAX_DEPTH_EXCEEDED", decodeError(t, resp.Body.Bytes()).Code)
}

func TestCategoryMoveRejectsCycle(t *testing.T) {
	ts := newTestServer(t)
	header := ts.setupAdmin(t)

	root := createCategory(t, ts, header, "Drinkware", "")
	child := createCategory(t, ts, header, "Mugs", root.ID)

	resp := ts.api.Post("/api/v1/categories/"+root.ID+"/move", header, map[string]any{
		"new_parent_id": child.ID,
	})
	require.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "CYCLE_DETECTED", decodeError(t, resp.Body.Bytes()).Code)
}

func TestCategoryDeleteRefusedWhileInUse(t *testing.T) {
	ts := newTestServer(t)
	header := ts.setupAdmin(t)

	root := createCategory(t, ts, header, "Drinkware", "")
	createCategory(t, ts, header, "Mugs", root.ID)

	resp := ts.api.Delete("/api/v1/categories/"+root.ID, header)
	require.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "ENTITY_IN_USE", decodeError(t, resp.Body.Bytes()).Code)
}

func TestCategoryDeleteEmpty(t *testing.T) {
	ts := newTestServer(t)
	header := ts.setupAdmin(t)

	c := createCategory(t, ts, header, "Seasonal", "")

	resp := ts.api.Delete("/api/v1/categories/"+c.ID, header)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/categories/"+c.ID, header)
	require.Equal(t, http.StatusNotFound, resp.Code)
}
