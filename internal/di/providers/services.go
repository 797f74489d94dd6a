package providers

import (
	"github.com/samber/do/v2"

	"github.com/mughouse/mughouse-server/internal/auth"
	"github.com/mughouse/mughouse-server/internal/blob"
	"github.com/mughouse/mughouse-server/internal/logger"
	"github.com/mughouse/mughouse-server/internal/service"
)

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokens, log.Logger), nil
}

// ProvideCategoryService provides the category taxonomy service.
func ProvideCategoryService(i do.Injector) (*service.CategoryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCategoryService(storeHandle.Store, indexHandle.SearchIndex, sseHandle.Manager, log.Logger), nil
}

// ProvideProductService provides the product catalog service.
func ProvideProductService(i do.Injector) (*service.ProductService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	blobs := do.MustInvoke[blob.Store](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProductService(storeHandle.Store, blobs, indexHandle.SearchIndex, sseHandle.Manager, log.Logger), nil
}

// ProvideCustomerService provides the customer service.
func ProvideCustomerService(i do.Injector) (*service.CustomerService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCustomerService(storeHandle.Store, sseHandle.Manager, log.Logger), nil
}

// ProvideOrderService provides the order service.
func ProvideOrderService(i do.Injector) (*service.OrderService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewOrderService(storeHandle.Store, sseHandle.Manager, log.Logger), nil
}
