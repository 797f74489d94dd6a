package service

import (
	"context"
	"log/slog"

	"github.com/mughouse/mughouse-server/internal/search"
	"github.com/mughouse/mughouse-server/internal/sse"
	"github.com/mughouse/mughouse-server/internal/store"
)

// ReindexState is notified when a full rebuild starts and finishes, so
// connected clients can show progress. The SSE manager implements it.
type ReindexState interface {
	SetReindexing(reindexing bool)
	IsReindexing() bool
}

// NoopReindexState ignores reindex transitions.
type NoopReindexState struct{}

// SetReindexing ignores the transition.
func (NoopReindexState) SetReindexing(bool) {}

// IsReindexing always reports false.
func (NoopReindexState) IsReindexing() bool { return false }

// SearchService queries and rebuilds the catalog search index.
type SearchService struct {
	index   *search.SearchIndex
	store   store.Store
	events  EventEmitter
	reindex ReindexState
	logger  *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, st store.Store, events EventEmitter, reindex ReindexState, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:   index,
		store:   st,
		events:  events,
		reindex: reindex,
		logger:  logger,
	}
}

// Search runs a catalog query against the index.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 20
	}
	if params.Offset < 0 {
		params.Offset = 0
	}
	return s.index.Search(ctx, params)
}

// RebuildIndex drops the index and reindexes every category and visible or
// inactive product from the store. Tombstoned products stay out; their data
// lives on only in order snapshots.
func (s *SearchService) RebuildIndex(ctx context.Context) (int, error) {
	if s.reindex.IsReindexing() {
		s.logger.Warn("reindex already in progress, skipping")
		return 0, nil
	}

	s.reindex.SetReindexing(true)
	defer s.reindex.SetReindexing(false)
	s.events.Emit(sse.NewReindexStartedEvent())

	if err := s.index.Rebuild(); err != nil {
		return 0, err
	}

	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return 0, err
	}
	categoryByID := make(map[string]*search.SearchDocument, len(categories))

	docs := make([]*search.SearchDocument, 0, len(categories))
	for _, c := range categories {
		doc := search.CategoryToSearchDocument(c)
		categoryByID[c.ID] = doc
		docs = append(docs, doc)
	}

	products, err := s.store.ListAllProducts(ctx)
	if err != nil {
		return 0, err
	}
	for _, p := range products {
		if p.IsDeleted {
			continue
		}
		var categoryName, categorySlug string
		if cat, ok := categoryByID[p.CategoryID]; ok {
			categoryName = cat.Name
			categorySlug = cat.Slug
		}
		docs = append(docs, search.ProductToSearchDocument(p, categoryName, categorySlug))
	}

	if err := s.index.IndexDocuments(docs); err != nil {
		return 0, err
	}

	s.events.Emit(sse.NewReindexCompleteEvent(len(docs)))
	s.logger.Info("search index rebuilt", "documents", len(docs))
	return len(docs), nil
}
