package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/mughouse/mughouse-server/internal/domain"
	"github.com/mughouse/mughouse-server/internal/store"
)

func makeOrder(id, customerID string, items ...*domain.OrderItem) *domain.Order {
	o := &domain.Order{
		CustomerID: customerID,
		Status:     domain.OrderPending,
		Items:      items,
	}
	o.ID = id
	o.InitTimestamps()
	return o
}

func makeOrderItem(id, productID string, qty int, price int64, name string) *domain.OrderItem {
	return &domain.OrderItem{
		ID:        id,
		ProductID: productID,
		Quantity:  qty,
		UnitPrice: price,
		Snapshot: domain.ProductSnapshot{
			SchemaVersion: domain.SnapshotSchemaVersion,
			ProductID:     productID,
			Name:          name,
			UnitPrice:     price,
			CapturedAt:    time.Now().UTC(),
		},
		CreatedAt: time.Now().UTC(),
	}
}

func seedOrderFixtures(t *testing.T, s *Store, ctx context.Context) {
	t.Helper()
	if err := s.CreateCustomer(ctx, makeCustomer("cust-1", "Lan Nguyen")); err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if err := s.CreateProduct(ctx, makeStoreProduct("prod-1", "Ly A", "ly-a")); err != nil {
		t.Fatalf("create product: %v", err)
	}
}

func TestOrderCreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedOrderFixtures(t, s, ctx)

	o := makeOrder("ord-1", "cust-1",
		makeOrderItem("oi-1", "prod-1", 2, 12500, "Ly A"))
	if err := s.CreateOrder(ctx, o); err != nil {
		t.Fatalf("create order: %v", err)
	}

	got, err := s.GetOrder(ctx, "ord-1")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.Status != domain.OrderPending || got.CustomerID != "cust-1" {
		t.Errorf("order mismatch: %+v", got)
	}
	if len(got.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(got.Items))
	}
	item := got.Items[0]
	if item.Snapshot.Name != "Ly A" || item.Snapshot.SchemaVersion != domain.SnapshotSchemaVersion {
		t.Errorf("snapshot mismatch: %+v", item.Snapshot)
	}
	if got.Total() != 25000 {
		t.Errorf("total = %d, want 25000", got.Total())
	}

	refs, err := s.CountOrderItemsForProduct(ctx, "prod-1")
	if err != nil || refs != 1 {
		t.Errorf("CountOrderItemsForProduct = (%d, %v), want (1, nil)", refs, err)
	}
}

// The snapshot stored on an order line must not change when the product is
// later renamed or tombstoned.
func TestOrderSnapshotImmutable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedOrderFixtures(t, s, ctx)

	o := makeOrder("ord-1", "cust-1",
		makeOrderItem("oi-1", "prod-1", 1, 12500, "Ly A"))
	if err := s.CreateOrder(ctx, o); err != nil {
		t.Fatalf("create order: %v", err)
	}

	p, err := s.GetProduct(ctx, "prod-1")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	p.Name = "Ly B"
	p.UnitPrice = 99999
	p.Touch()
	if err := s.UpdateProduct(ctx, p); err != nil {
		t.Fatalf("rename product: %v", err)
	}
	p.MarkDeleted("user-1")
	if err := s.UpdateProductLifecycle(ctx, p); err != nil {
		t.Fatalf("tombstone product: %v", err)
	}

	got, err := s.GetOrder(ctx, "ord-1")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	snap := got.Items[0].Snapshot
	if snap.Name != "Ly A" || snap.UnitPrice != 12500 {
		t.Errorf("snapshot drifted after product mutation: %+v", snap)
	}
	if got.Total() != 12500 {
		t.Errorf("historical total drifted: %d", got.Total())
	}
}

func TestOrderStatusAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedOrderFixtures(t, s, ctx)
	if err := s.CreateCustomer(ctx, makeCustomer("cust-2", "Minh Tran")); err != nil {
		t.Fatalf("create customer: %v", err)
	}

	if err := s.CreateOrder(ctx, makeOrder("ord-1", "cust-1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.CreateOrder(ctx, makeOrder("ord-2", "cust-2")); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.UpdateOrderStatus(ctx, "ord-1", domain.OrderConfirmed); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if err := s.UpdateOrderStatus(ctx, "ord-missing", domain.OrderConfirmed); err != store.ErrNotFound {
		t.Errorf("missing order: got %v, want ErrNotFound", err)
	}

	res, err := s.ListOrders(ctx, store.OrderFilter{Status: domain.OrderConfirmed}, store.PaginationParams{})
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if res.Total != 1 || res.Items[0].ID != "ord-1" {
		t.Errorf("status filter: %+v", res.Items)
	}

	res, err = s.ListOrders(ctx, store.OrderFilter{CustomerID: "cust-2"}, store.PaginationParams{})
	if err != nil {
		t.Fatalf("list by customer: %v", err)
	}
	if res.Total != 1 || res.Items[0].ID != "ord-2" {
		t.Errorf("customer filter: %+v", res.Items)
	}

	n, err := s.CountOrdersForCustomer(ctx, "cust-1")
	if err != nil || n != 1 {
		t.Errorf("CountOrdersForCustomer = (%d, %v), want (1, nil)", n, err)
	}
}
