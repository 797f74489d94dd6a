package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mughouse/mughouse-server/internal/blob"
	"github.com/mughouse/mughouse-server/internal/domain"
	"github.com/mughouse/mughouse-server/internal/store/sqlite"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// fixture bundles the services most tests need, all sharing one store.
type fixture struct {
	store      *sqlite.Store
	blobs      *blob.Memory
	categories *CategoryService
	products   *ProductService
	customers  *CustomerService
	orders     *OrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := newTestStore(t)
	logger := testLogger()
	blobs := blob.NewMemory()
	return &fixture{
		store:      st,
		blobs:      blobs,
		categories: NewCategoryService(st, NoopIndexer{}, NoopEmitter{}, logger),
		products:   NewProductService(st, blobs, NoopIndexer{}, NoopEmitter{}, logger),
		customers:  NewCustomerService(st, NoopEmitter{}, logger),
		orders:     NewOrderService(st, NoopEmitter{}, logger),
	}
}

func (f *fixture) mustCategory(t *testing.T, name, parentID string) *domain.Category {
	t.Helper()
	c, err := f.categories.CreateCategory(context.Background(), CreateCategoryRequest{
		Name:     name,
		ParentID: parentID,
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) mustProduct(t *testing.T, name, categoryID string) *domain.Product {
	t.Helper()
	p, err := f.products.CreateProduct(context.Background(), CreateProductRequest{
		Name:       name,
		CategoryID: categoryID,
		Material:   "ceramic",
		CapacityML: 350,
		UnitPrice:  12500,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) mustCustomer(t *testing.T, name string, phones ...PhoneInput) *domain.Customer {
	t.Helper()
	c, err := f.customers.CreateCustomer(context.Background(), CreateCustomerRequest{
		FullName: name,
		Phones:   phones,
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) mustOrder(t *testing.T, customerID string, items ...OrderItemInput) *domain.Order {
	t.Helper()
	o, err := f.orders.CreateOrder(context.Background(), CreateOrderRequest{
		CustomerID: customerID,
		Items:      items,
	})
	require.NoError(t, err)
	return o
}
