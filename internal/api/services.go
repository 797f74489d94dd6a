package api

import (
	"github.com/mughouse/mughouse-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth     *service.AuthService
	Category *service.CategoryService
	Product  *service.ProductService
	Customer *service.CustomerService
	Order    *service.OrderService
	Search   *service.SearchService
}
