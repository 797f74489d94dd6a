// Package store defines the persistence interface for the Mughouse server.
package store

import (
	"context"

	"github.com/mughouse/mughouse-server/internal/domain"
	"github.com/mughouse/mughouse-server/internal/primary"
)

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryID     string
	ActiveOnly     bool
	IncludeDeleted bool
	Material       string
	Color          string
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	CustomerID string
	Status     domain.OrderStatus
}

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error

	// Categories
	CreateCategory(ctx context.Context, c *domain.Category) error
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, c *domain.Category) error
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategoryChildren(ctx context.Context, parentID string) ([]*domain.Category, error)
	CategorySlugExists(ctx context.Context, slug string) (bool, error)
	CategoryParentID(ctx context.Context, id string) (string, error)
	CountProductsInCategory(ctx context.Context, categoryID string) (int, error)

	// Products
	CreateProduct(ctx context.Context, p *domain.Product) error
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	GetProductAny(ctx context.Context, id string) (*domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, p *domain.Product) error
	UpdateProductLifecycle(ctx context.Context, p *domain.Product) error
	RemoveProductRow(ctx context.Context, id string) error
	ListProducts(ctx context.Context, filter ProductFilter, params PaginationParams) (*PaginatedResult[*domain.Product], error)
	ListAllProducts(ctx context.Context) ([]*domain.Product, error)
	CountProducts(ctx context.Context) (int, error)
	ProductSlugExists(ctx context.Context, slug string) (bool, error)
	CountOrderItemsForProduct(ctx context.Context, productID string) (int, error)

	// Customers
	CreateCustomer(ctx context.Context, c *domain.Customer) error
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, c *domain.Customer) error
	DeleteCustomer(ctx context.Context, id string) error
	ListCustomers(ctx context.Context, params PaginationParams) (*PaginatedResult[*domain.Customer], error)
	SearchCustomersByName(ctx context.Context, query string, limit int) ([]*domain.Customer, error)

	// Phones runs inside the coordinator's transaction seam. Read helpers
	// outside a transaction live here.
	Phones() primary.Runner
	ListPhones(ctx context.Context, customerID string) ([]primary.Item, error)
	GetPhone(ctx context.Context, phoneID string) (*primary.Item, error)

	// Orders
	CreateOrder(ctx context.Context, o *domain.Order) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error
	ListOrders(ctx context.Context, filter OrderFilter, params PaginationParams) (*PaginatedResult[*domain.Order], error)
	CountOrdersForCustomer(ctx context.Context, customerID string) (int, error)

	// Users
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, u *domain.User) error
	ListUsers(ctx context.Context) ([]*domain.User, error)
	CountUsers(ctx context.Context) (int, error)

	// Auth Sessions
	CreateSession(ctx context.Context, s *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, s *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	DeleteAllUserSessions(ctx context.Context, userID string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)
	ListUserSessions(ctx context.Context, userID string) ([]*domain.Session, error)
}
