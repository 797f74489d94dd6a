// Package di provides dependency injection configuration for the Mughouse server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/mughouse/mughouse-server/internal/auth"
	"github.com/mughouse/mughouse-server/internal/blob"
	"github.com/mughouse/mughouse-server/internal/config"
	"github.com/mughouse/mughouse-server/internal/di/providers"
	"github.com/mughouse/mughouse-server/internal/logger"
	"github.com/mughouse/mughouse-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)

	// Storage layer
	do.Provide(injector, providers.ProvideBlobStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideCategoryService)
	do.Provide(injector, providers.ProvideProductService)
	do.Provide(injector, providers.ProvideCustomerService)
	do.Provide(injector, providers.ProvideOrderService)

	// Workers
	do.Provide(injector, providers.ProvideSessionCleanupJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[blob.Store](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.CategoryService](injector)
	_ = do.MustInvoke[*service.ProductService](injector)
	_ = do.MustInvoke[*service.CustomerService](injector)
	_ = do.MustInvoke[*service.OrderService](injector)

	// Workers
	_ = do.MustInvoke[*providers.SessionCleanupJob](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Rebuild the search index if it is empty but the catalog is not
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
