package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/mughouse/mughouse-server/internal/config"
	"github.com/mughouse/mughouse-server/internal/logger"
	"github.com/mughouse/mughouse-server/internal/search"
	"github.com/mughouse/mughouse-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.Storage.DataPath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(indexHandle.SearchIndex, storeHandle.Store, sseHandle.Manager, sseHandle.Manager, log.Logger), nil
}

// TriggerSearchReindexIfNeeded rebuilds an empty index when the catalog
// already has products, e.g. after the index directory was wiped.
// Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	searchService := do.MustInvoke[*service.SearchService](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := indexHandle.DocumentCount()
	if docCount > 0 {
		return
	}

	ctx := context.Background()
	productCount, err := storeHandle.CountProducts(ctx)
	if err != nil || productCount == 0 {
		return
	}

	log.Info("Search index is empty but products exist, triggering initial reindex",
		"product_count", productCount,
	)

	go func() {
		indexed, err := searchService.RebuildIndex(context.Background())
		if err != nil {
			log.Error("Initial search reindex failed", "error", err)
			return
		}
		log.Info("Initial search reindex completed", "documents", indexed)
	}()
}
