package search

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mughouse/mughouse-server/internal/domain"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) (*SearchIndex, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "search-test-*")
	require.NoError(t, err)

	index, err := NewSearchIndex(Options{
		DataPath: tmpDir,
		Logger:   nil,
	})
	require.NoError(t, err)

	cleanup := func() {
		_ = index.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return index, cleanup
}

func catalogDocs() []*SearchDocument {
	return []*SearchDocument{
		{
			ID: "product-1", Type: DocTypeProduct, Name: "Ly A Ceramic Mug",
			Slug: "ly-a-ceramic-mug", CategoryName: "Travel Mugs", CategorySlug: "travel-mugs",
			Material: "ceramic", Color: "Matte Black", UnitPrice: 12500, CapacityML: 350,
			IsActive: true,
		},
		{
			ID: "product-2", Type: DocTypeProduct, Name: "Ly B Stainless Tumbler",
			Slug: "ly-b-stainless-tumbler", CategoryName: "Travel Mugs", CategorySlug: "travel-mugs",
			Material: "stainless", Color: "Silver", UnitPrice: 28000, CapacityML: 473,
			IsActive: true,
		},
		{
			ID: "product-3", Type: DocTypeProduct, Name: "Glass Teacup",
			Slug: "glass-teacup", CategoryName: "Teacups", CategorySlug: "teacups",
			Material: "glass", Color: "Clear", UnitPrice: 9000, CapacityML: 180,
			IsActive: false,
		},
		{
			ID: "category-1", Type: DocTypeCategory, Name: "Travel Mugs",
			Slug: "travel-mugs", IsActive: true,
		},
	}
}

func TestNewSearchIndex(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_IndexDocument(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	doc := &SearchDocument{
		ID:       "product-123",
		Type:     DocTypeProduct,
		Name:     "Ly A Ceramic Mug",
		Slug:     "ly-a-ceramic-mug",
		Material: "ceramic",
	}

	err := index.IndexDocument(doc)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestSearchIndex_IndexDocuments_Batch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexDocuments(catalogDocs())
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)
}

func TestSearchIndex_DeleteDocument(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	doc := &SearchDocument{
		ID:   "product-123",
		Type: DocTypeProduct,
		Name: "Test Mug",
	}

	err := index.IndexDocument(doc)
	require.NoError(t, err)

	err = index.DeleteDocument("product-123")
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_Search_Basic(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexDocuments(catalogDocs())
	require.NoError(t, err)

	ctx := context.Background()

	params := DefaultSearchParams()
	params.Query = "tumbler"
	result, err := index.Search(ctx, params)
	require.NoError(t, err)

	require.GreaterOrEqual(t, result.Total, uint64(1))
	assert.Equal(t, "product-2", result.Hits[0].ID)
	assert.Equal(t, "ly-b-stainless-tumbler", result.Hits[0].Slug)
	assert.Equal(t, int64(28000), result.Hits[0].UnitPrice)
	assert.Equal(t, 473, result.Hits[0].CapacityML)
}

func TestSearchIndex_Search_CategoryNameMatchesProducts(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexDocuments(catalogDocs())
	require.NoError(t, err)

	// "travel" should surface products in Travel Mugs via the denormalized
	// category name, plus the category document itself.
	params := DefaultSearchParams()
	params.Query = "travel"
	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	ids := make(map[string]bool)
	for _, hit := range result.Hits {
		ids[hit.ID] = true
	}
	assert.True(t, ids["product-1"])
	assert.True(t, ids["product-2"])
	assert.True(t, ids["category-1"])
}

func TestSearchIndex_Search_TypeFilter(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexDocuments(catalogDocs())
	require.NoError(t, err)

	params := DefaultSearchParams()
	params.Query = "travel"
	params.Types = []string{string(DocTypeCategory)}
	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, DocTypeCategory, result.Hits[0].Type)
}

func TestSearchIndex_Search_MaterialFilter(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexDocuments(catalogDocs())
	require.NoError(t, err)

	params := DefaultSearchParams()
	params.Materials = []string{"stainless"}
	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "product-2", result.Hits[0].ID)
}

func TestSearchIndex_Search_PriceRange(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexDocuments(catalogDocs())
	require.NoError(t, err)

	params := DefaultSearchParams()
	params.Types = []string{string(DocTypeProduct)}
	params.MinPrice = 10000
	params.MaxPrice = 20000
	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "product-1", result.Hits[0].ID)
}

func TestSearchIndex_Search_CapacityRange(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexDocuments(catalogDocs())
	require.NoError(t, err)

	params := DefaultSearchParams()
	params.Types = []string{string(DocTypeProduct)}
	params.MinCapacity = 400
	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "product-2", result.Hits[0].ID)
}

func TestSearchIndex_Search_ActiveOnly(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexDocuments(catalogDocs())
	require.NoError(t, err)

	params := DefaultSearchParams()
	params.Types = []string{string(DocTypeProduct)}
	params.ActiveOnly = true
	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, uint64(2), result.Total)
	for _, hit := range result.Hits {
		assert.NotEqual(t, "product-3", hit.ID)
	}
}

func TestSearchIndex_Search_CategorySlugFilter(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexDocuments(catalogDocs())
	require.NoError(t, err)

	params := DefaultSearchParams()
	params.CategorySlugs = []string{"teacups"}
	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "product-3", result.Hits[0].ID)
}

func TestSearchIndex_Search_FuzzyMatch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexDocuments(catalogDocs())
	require.NoError(t, err)

	// One character off from "tumbler"
	params := DefaultSearchParams()
	params.Query = "tumblar"
	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	require.GreaterOrEqual(t, result.Total, uint64(1))
	assert.Equal(t, "product-2", result.Hits[0].ID)
}

func TestSearchIndex_Search_SortByPrice(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexDocuments(catalogDocs())
	require.NoError(t, err)

	params := DefaultSearchParams()
	params.Types = []string{string(DocTypeProduct)}
	params.SortBy = "price"
	params.SortOrder = "asc"
	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	require.Equal(t, uint64(3), result.Total)
	assert.Equal(t, "product-3", result.Hits[0].ID)
	assert.Equal(t, "product-1", result.Hits[1].ID)
	assert.Equal(t, "product-2", result.Hits[2].ID)
}

func TestSearchIndex_Search_Facets(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexDocuments(catalogDocs())
	require.NoError(t, err)

	params := DefaultSearchParams()
	params.Types = []string{string(DocTypeProduct)}
	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	materials := make(map[string]int)
	for _, f := range result.Facets.Materials {
		materials[f.Value] = f.Count
	}
	assert.Equal(t, 1, materials["ceramic"])
	assert.Equal(t, 1, materials["stainless"])
	assert.Equal(t, 1, materials["glass"])

	categories := make(map[string]int)
	for _, f := range result.Facets.Categories {
		categories[f.Value] = f.Count
	}
	assert.Equal(t, 2, categories["travel-mugs"])
	assert.Equal(t, 1, categories["teacups"])
}

func TestSearchIndex_Search_Highlights(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexDocuments(catalogDocs())
	require.NoError(t, err)

	params := DefaultSearchParams()
	params.Query = "teacup"
	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	require.GreaterOrEqual(t, result.Total, uint64(1))
	assert.NotEmpty(t, result.Hits[0].Highlights["name"])
}

func TestSearchIndex_Rebuild(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexDocuments(catalogDocs())
	require.NoError(t, err)

	err = index.Rebuild()
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	// Index is usable after a rebuild
	err = index.IndexDocument(&SearchDocument{ID: "product-9", Type: DocTypeProduct, Name: "New Mug"})
	require.NoError(t, err)
}

func TestProductToSearchDocument(t *testing.T) {
	now := time.Now()
	p := &domain.Product{
		Name:        "Ly A Ceramic Mug",
		Slug:        "ly-a-ceramic-mug",
		Description: "Everyday ceramic mug",
		CategoryID:  "category-1",
		Material:    "ceramic",
		Color:       "Matte Black",
		UnitPrice:   12500,
		CapacityML:  350,
		IsActive:    true,
	}
	p.ID = "product-1"
	p.CreatedAt = now
	p.UpdatedAt = now

	doc := ProductToSearchDocument(p, "Travel Mugs", "travel-mugs")

	assert.Equal(t, "product-1", doc.ID)
	assert.Equal(t, DocTypeProduct, doc.Type)
	assert.Equal(t, "Ly A Ceramic Mug", doc.Name)
	assert.Equal(t, "Travel Mugs", doc.CategoryName)
	assert.Equal(t, "travel-mugs", doc.CategorySlug)
	assert.Equal(t, now.UnixMilli(), doc.CreatedAt)

	m := doc.ToMap()
	assert.Equal(t, "product", m["type"])
	assert.Equal(t, int64(12500), m["unit_price"])
	assert.Equal(t, 350, m["capacity_ml"])
	_, hasImage := m["image_path"]
	assert.False(t, hasImage)
}

func TestCategoryToSearchDocument(t *testing.T) {
	c := &domain.Category{
		Name:     "Travel Mugs",
		Slug:     "travel-mugs",
		IsActive: true,
	}
	c.ID = "category-1"

	doc := CategoryToSearchDocument(c)

	assert.Equal(t, DocTypeCategory, doc.Type)
	assert.Equal(t, "travel-mugs", doc.Slug)

	m := doc.ToMap()
	_, hasCategoryName := m["category_name"]
	assert.False(t, hasCategoryName)
	_, hasPrice := m["unit_price"]
	assert.False(t, hasPrice)
}
