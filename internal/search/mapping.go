package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for search documents.
//
// The mapping is designed with these priorities:
//  1. Fast full-text search on names with English stemming
//  2. Exact keyword matching for type, slug, material and color filters
//  3. Numeric range queries for price and capacity
//  4. Term vectors enabled on key fields for highlighting
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	// Use English analyzer as default for text fields
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	// Name field - primary search target, boosted at query time
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = en.AnalyzerName
	nameFieldMapping.Store = true
	nameFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	// Description - searchable but not stored (too large)
	descFieldMapping := bleve.NewTextFieldMapping()
	descFieldMapping.Analyzer = en.AnalyzerName
	descFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("description", descFieldMapping)

	// Category name - searchable, denormalized onto products
	categoryNameFieldMapping := bleve.NewTextFieldMapping()
	categoryNameFieldMapping.Analyzer = en.AnalyzerName
	categoryNameFieldMapping.Store = true
	categoryNameFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("category_name", categoryNameFieldMapping)

	// --- Keyword fields (exact match, facetable) ---

	// Type - for filtering by document type
	typeFieldMapping := bleve.NewTextFieldMapping()
	typeFieldMapping.Analyzer = keyword.Name
	typeFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("type", typeFieldMapping)

	// ID - stored but not analyzed
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// Slug - exact lookup, keyword analyzer keeps hyphenated slugs intact
	slugFieldMapping := bleve.NewTextFieldMapping()
	slugFieldMapping.Analyzer = keyword.Name
	slugFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("slug", slugFieldMapping)

	// Category ID and slug - for exact category filtering
	categoryIDFieldMapping := bleve.NewTextFieldMapping()
	categoryIDFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("category_id", categoryIDFieldMapping)

	categorySlugFieldMapping := bleve.NewTextFieldMapping()
	categorySlugFieldMapping.Analyzer = keyword.Name
	categorySlugFieldMapping.Store = true // Store for retrieval in search results
	docMapping.AddFieldMappingsAt("category_slug", categorySlugFieldMapping)

	// Material - facetable attribute (ceramic, stainless, glass)
	materialFieldMapping := bleve.NewTextFieldMapping()
	materialFieldMapping.Analyzer = keyword.Name
	materialFieldMapping.Store = true
	materialFieldMapping.IncludeTermVectors = true // For faceting
	docMapping.AddFieldMappingsAt("material", materialFieldMapping)

	// Color - facetable, simple analyzer lowercases multi-word colors
	colorFieldMapping := bleve.NewTextFieldMapping()
	colorFieldMapping.Analyzer = simple.Name
	colorFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("color", colorFieldMapping)

	// --- Boolean fields ---

	// Visibility - for hiding inactive entities from storefront queries
	activeFieldMapping := bleve.NewBooleanFieldMapping()
	activeFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("is_active", activeFieldMapping)

	// --- Numeric fields (range queries, sorting) ---

	// Unit price - for range filtering
	priceFieldMapping := bleve.NewNumericFieldMapping()
	priceFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("unit_price", priceFieldMapping)

	// Capacity - for range filtering
	capacityFieldMapping := bleve.NewNumericFieldMapping()
	capacityFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("capacity_ml", capacityFieldMapping)

	// Timestamps - for sorting by recency
	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	updatedAtFieldMapping := bleve.NewNumericFieldMapping()
	updatedAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("updated_at", updatedAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
