package search

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query string   // User's search query
	Types []string // Document types to include (empty = all)

	// Filters
	CategorySlugs []string // Filter by exact category slugs (products only)
	Materials     []string // Filter by exact material values
	Colors        []string // Filter by color
	MinPrice      int64    // Minimum unit price in minor units (products only)
	MaxPrice      int64    // Maximum unit price in minor units (products only)
	MinCapacity   int      // Minimum capacity in ml (products only)
	MaxCapacity   int      // Maximum capacity in ml (products only)
	ActiveOnly    bool     // Exclude hidden entities

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "relevance", "name", "price", "recent", "capacity"
	SortOrder string // "asc", "desc"

	// Options
	IncludeFacets bool     // Include facet counts in results
	FacetFields   []string // Which fields to facet on
	Highlight     bool     // Include match highlighting
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:         20,
		Offset:        0,
		SortBy:        "relevance",
		SortOrder:     "desc",
		IncludeFacets: true,
		FacetFields:   []string{"type", "material", "category_slug"},
		Highlight:     true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []SearchHit  `json:"hits"`
	Facets SearchFacets `json:"facets,omitempty"`
}

// SearchHit represents a single search result.
type SearchHit struct {
	ID           string            `json:"id"`
	Type         DocType           `json:"type"`
	Score        float64           `json:"score"`
	Name         string            `json:"name"`
	Slug         string            `json:"slug"`
	CategoryName string            `json:"category_name,omitempty"`
	CategorySlug string            `json:"category_slug,omitempty"`
	Material     string            `json:"material,omitempty"`
	Color        string            `json:"color,omitempty"`
	UnitPrice    int64             `json:"unit_price,omitempty"`
	CapacityML   int               `json:"capacity_ml,omitempty"`
	Highlights   map[string]string `json:"highlights,omitempty"`
}

// SearchFacets contains facet counts.
type SearchFacets struct {
	Types      []FacetCount `json:"types,omitempty"`
	Materials  []FacetCount `json:"materials,omitempty"`
	Categories []FacetCount `json:"categories,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	addSorting(searchRequest, params)

	if params.IncludeFacets {
		addFacets(searchRequest, params)
	}

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("name")
		searchRequest.Highlight.AddField("category_name")
	}

	// Request stored fields
	searchRequest.Fields = []string{
		"id", "type", "name", "slug", "category_name", "category_slug",
		"material", "color", "unit_price", "capacity_ml",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := SearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		// Extract stored fields
		if t, ok := hit.Fields["type"].(string); ok {
			searchHit.Type = DocType(t)
		}
		if n, ok := hit.Fields["name"].(string); ok {
			searchHit.Name = n
		}
		if sl, ok := hit.Fields["slug"].(string); ok {
			searchHit.Slug = sl
		}
		if cn, ok := hit.Fields["category_name"].(string); ok {
			searchHit.CategoryName = cn
		}
		if cs, ok := hit.Fields["category_slug"].(string); ok {
			searchHit.CategorySlug = cs
		}
		if mat, ok := hit.Fields["material"].(string); ok {
			searchHit.Material = mat
		}
		if c, ok := hit.Fields["color"].(string); ok {
			searchHit.Color = c
		}
		if p, ok := hit.Fields["unit_price"].(float64); ok {
			searchHit.UnitPrice = int64(p)
		}
		if cm, ok := hit.Fields["capacity_ml"].(float64); ok {
			searchHit.CapacityML = int(cm)
		}

		// Extract highlights
		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	if params.IncludeFacets {
		result.Facets = extractFacets(searchResult)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	// Main text query
	// Search strategy:
	// - Products: match on name and the denormalized category name
	// - Categories: match on name
	// A fuzzy query on name gives typo tolerance and a prefix query gives
	// autocomplete behavior for short inputs.
	if params.Query != "" {
		textQueries := []query.Query{}

		// Name match with highest boost
		nameMatch := bleve.NewMatchQuery(params.Query)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)
		textQueries = append(textQueries, nameMatch)

		// Category name match (products carry their category name)
		categoryMatch := bleve.NewMatchQuery(params.Query)
		categoryMatch.SetField("category_name")
		categoryMatch.SetBoost(1.5)
		textQueries = append(textQueries, categoryMatch)

		// Description match, lowest boost
		descMatch := bleve.NewMatchQuery(params.Query)
		descMatch.SetField("description")
		descMatch.SetBoost(0.5)
		textQueries = append(textQueries, descMatch)

		// Add fuzzy matching for typo tolerance on name
		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("name")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for autocomplete (minimum 2 chars)
		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("name")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		// Combine with OR (match any field)
		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Type filter
	if len(params.Types) > 0 {
		typeQueries := make([]query.Query, len(params.Types))
		for i, t := range params.Types {
			tq := bleve.NewTermQuery(t)
			tq.SetField("type")
			typeQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(typeQueries...))
	}

	// Category slug filter (exact match, OR across slugs)
	if len(params.CategorySlugs) > 0 {
		categoryQueries := make([]query.Query, len(params.CategorySlugs))
		for i, slug := range params.CategorySlugs {
			cq := bleve.NewTermQuery(slug)
			cq.SetField("category_slug")
			categoryQueries[i] = cq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(categoryQueries...))
	}

	// Material filter
	if len(params.Materials) > 0 {
		materialQueries := make([]query.Query, len(params.Materials))
		for i, mat := range params.Materials {
			mq := bleve.NewTermQuery(mat)
			mq.SetField("material")
			materialQueries[i] = mq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(materialQueries...))
	}

	// Color filter (simple analyzer lowercases indexed terms)
	if len(params.Colors) > 0 {
		colorQueries := make([]query.Query, len(params.Colors))
		for i, c := range params.Colors {
			cq := bleve.NewTermQuery(strings.ToLower(c))
			cq.SetField("color")
			colorQueries[i] = cq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(colorQueries...))
	}

	// Price range filter
	if params.MinPrice > 0 || params.MaxPrice > 0 {
		min := float64(params.MinPrice)
		max := float64(params.MaxPrice)
		if params.MaxPrice == 0 {
			max = math.MaxFloat64
		}
		rangeQuery := bleve.NewNumericRangeQuery(&min, &max)
		rangeQuery.SetField("unit_price")
		queries = append(queries, rangeQuery)
	}

	// Capacity range filter
	if params.MinCapacity > 0 || params.MaxCapacity > 0 {
		min := float64(params.MinCapacity)
		max := float64(params.MaxCapacity)
		if params.MaxCapacity == 0 {
			max = math.MaxFloat64
		}
		rangeQuery := bleve.NewNumericRangeQuery(&min, &max)
		rangeQuery.SetField("capacity_ml")
		queries = append(queries, rangeQuery)
	}

	// Visibility filter
	if params.ActiveOnly {
		activeQuery := bleve.NewBoolFieldQuery(true)
		activeQuery.SetField("is_active")
		queries = append(queries, activeQuery)
	}

	// Combine all queries with AND
	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params SearchParams) {
	switch params.SortBy {
	case "name":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-name"})
		} else {
			req.SortBy([]string{"name"})
		}
	case "price":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-unit_price", "name"})
		} else {
			req.SortBy([]string{"unit_price", "name"})
		}
	case "capacity":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-capacity_ml", "name"})
		} else {
			req.SortBy([]string{"capacity_ml", "name"})
		}
	case "recent":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"created_at"})
		} else {
			req.SortBy([]string{"-created_at"})
		}
	default:
		// Relevance (score) is default - Bleve handles this
		req.SortBy([]string{"-_score"})
	}
}

// addFacets configures facet requests.
func addFacets(req *bleve.SearchRequest, params SearchParams) {
	for _, field := range params.FacetFields {
		facetReq := bleve.NewFacetRequest(field, 20) // Top 20 values
		req.AddFacet(field, facetReq)
	}
}

// extractFacets converts Bleve facets to our format.
func extractFacets(result *bleve.SearchResult) SearchFacets {
	facets := SearchFacets{}

	if typeFacet, ok := result.Facets["type"]; ok {
		for _, term := range typeFacet.Terms.Terms() {
			facets.Types = append(facets.Types, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	if materialFacet, ok := result.Facets["material"]; ok {
		for _, term := range materialFacet.Terms.Terms() {
			facets.Materials = append(facets.Materials, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	if categoryFacet, ok := result.Facets["category_slug"]; ok {
		for _, term := range categoryFacet.Terms.Terms() {
			facets.Categories = append(facets.Categories, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	return facets
}
