package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mughouse/mughouse-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search the catalog",
		Description: "Full-text search over products and categories with filters and facets",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "rebuildSearchIndex",
		Method:      http.MethodPost,
		Path:        "/api/v1/search/rebuild",
		Summary:     "Rebuild search index",
		Description: "Drops and rebuilds the search index from the store. Admin only.",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRebuildSearchIndex)
}

// === DTOs ===

type SearchInput struct {
	Authorization string   `header:"Authorization"`
	Query         string   `query:"q" doc:"Search query"`
	Types         []string `query:"type" doc:"Document types to include (product, category)"`
	Categories    []string `query:"category" doc:"Filter by category slugs"`
	Materials     []string `query:"material" doc:"Filter by materials"`
	Colors        []string `query:"color" doc:"Filter by colors"`
	MinPrice      int64    `query:"min_price" doc:"Minimum unit price in minor units"`
	MaxPrice      int64    `query:"max_price" doc:"Maximum unit price in minor units"`
	MinCapacity   int      `query:"min_capacity" doc:"Minimum capacity in ml"`
	MaxCapacity   int      `query:"max_capacity" doc:"Maximum capacity in ml"`
	ActiveOnly    bool     `query:"active_only" doc:"Exclude hidden entities"`
	Facets        bool     `query:"facets" doc:"Include facet counts"`
	Highlight     bool     `query:"highlight" doc:"Include match highlighting"`
	SortBy        string   `query:"sort" doc:"Sort key (relevance, name, price, recent, capacity)"`
	SortOrder     string   `query:"order" doc:"Sort direction (asc, desc)"`
	Limit         int      `query:"limit" doc:"Items per page"`
	Offset        int      `query:"offset" doc:"Rows to skip"`
}

type SearchOutput struct {
	Body search.SearchResult
}

type RebuildSearchInput struct {
	Authorization string `header:"Authorization"`
}

type RebuildSearchResponse struct {
	Indexed int `json:"indexed" doc:"Number of documents indexed"`
}

type RebuildSearchOutput struct {
	Body RebuildSearchResponse
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	result, err := s.services.Search.Search(ctx, search.SearchParams{
		Query:         input.Query,
		Types:         input.Types,
		CategorySlugs: input.Categories,
		Materials:     input.Materials,
		Colors:        input.Colors,
		MinPrice:      input.MinPrice,
		MaxPrice:      input.MaxPrice,
		MinCapacity:   input.MinCapacity,
		MaxCapacity:   input.MaxCapacity,
		ActiveOnly:    input.ActiveOnly,
		IncludeFacets: input.Facets,
		Highlight:     input.Highlight,
		SortBy:        input.SortBy,
		SortOrder:     input.SortOrder,
		Limit:         input.Limit,
		Offset:        input.Offset,
	})
	if err != nil {
		return nil, err
	}

	return &SearchOutput{Body: *result}, nil
}

func (s *Server) handleRebuildSearchIndex(ctx context.Context, input *RebuildSearchInput) (*RebuildSearchOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(input.Authorization); err != nil {
		return nil, err
	}

	indexed, err := s.services.Search.RebuildIndex(ctx)
	if err != nil {
		return nil, err
	}

	return &RebuildSearchOutput{Body: RebuildSearchResponse{Indexed: indexed}}, nil
}
