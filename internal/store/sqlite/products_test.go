package sqlite

import (
	"context"
	"testing"

	"github.com/mughouse/mughouse-server/internal/domain"
	"github.com/mughouse/mughouse-server/internal/store"
)

func makeStoreProduct(id, name, slug string) *domain.Product {
	p := &domain.Product{
		Name:       name,
		Slug:       slug,
		CapacityML: 350,
		Material:   "ceramic",
		UnitPrice:  12500,
		IsActive:   true,
	}
	p.ID = id
	p.InitTimestamps()
	return p
}

func TestProductCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := makeStoreProduct("prod-1", "White Ceramic Mug", "white-ceramic-mug")
	p.Color = "white"
	if err := s.CreateProduct(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.GetProduct(ctx, "prod-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != p.Name || got.Color != "white" || got.UnitPrice != 12500 || got.CapacityML != 350 {
		t.Errorf("round trip mismatch: %+v", got)
	}

	got.UnitPrice = 13900
	got.Touch()
	if err := s.UpdateProduct(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got2, err := s.GetProductBySlug(ctx, "white-ceramic-mug")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if got2.UnitPrice != 13900 {
		t.Errorf("price update not persisted: %d", got2.UnitPrice)
	}

	if err := s.RemoveProductRow(ctx, "prod-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := s.GetProductAny(ctx, "prod-1"); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound after remove, got %v", err)
	}
}

func TestProductTombstoneVisibility(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := makeStoreProduct("prod-1", "Glass Tumbler", "glass-tumbler")
	if err := s.CreateProduct(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	p.MarkDeleted("user-1")
	if err := s.UpdateProductLifecycle(ctx, p); err != nil {
		t.Fatalf("lifecycle update: %v", err)
	}

	// Default read excludes tombstones; GetProductAny still sees them.
	if _, err := s.GetProduct(ctx, "prod-1"); err != store.ErrNotFound {
		t.Errorf("GetProduct on tombstone: got %v, want ErrNotFound", err)
	}
	got, err := s.GetProductAny(ctx, "prod-1")
	if err != nil {
		t.Fatalf("GetProductAny: %v", err)
	}
	if !got.IsDeleted || got.IsActive || got.DeletedAt == nil || got.DeletedBy != "user-1" {
		t.Errorf("tombstone fields not persisted: %+v", got)
	}

	// Tombstoned slugs still count as taken.
	exists, err := s.ProductSlugExists(ctx, "glass-tumbler")
	if err != nil || !exists {
		t.Errorf("ProductSlugExists = (%v, %v), want (true, nil)", exists, err)
	}
}

func TestListProductsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateCategory(ctx, makeCategory("cat-1", "Mugs", "mugs", "")); err != nil {
		t.Fatalf("create category: %v", err)
	}

	a := makeStoreProduct("prod-a", "Mug A", "mug-a")
	a.CategoryID = "cat-1"
	b := makeStoreProduct("prod-b", "Mug B", "mug-b")
	b.CategoryID = "cat-1"
	b.IsActive = false
	c := makeStoreProduct("prod-c", "Tumbler C", "tumbler-c")
	c.Material = "stainless"
	for _, p := range []*domain.Product{a, b, c} {
		if err := s.CreateProduct(ctx, p); err != nil {
			t.Fatalf("create %s: %v", p.ID, err)
		}
	}
	c.MarkDeleted("user-1")
	if err := s.UpdateProductLifecycle(ctx, c); err != nil {
		t.Fatalf("tombstone: %v", err)
	}

	res, err := s.ListProducts(ctx, store.ProductFilter{}, store.PaginationParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Total != 2 {
		t.Errorf("default list total = %d, want 2 (tombstones excluded)", res.Total)
	}

	res, err = s.ListProducts(ctx, store.ProductFilter{CategoryID: "cat-1", ActiveOnly: true}, store.PaginationParams{})
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if res.Total != 1 || res.Items[0].ID != "prod-a" {
		t.Errorf("category+active filter: %+v", res.Items)
	}

	res, err = s.ListProducts(ctx, store.ProductFilter{IncludeDeleted: true}, store.PaginationParams{})
	if err != nil {
		t.Fatalf("include deleted: %v", err)
	}
	if res.Total != 3 {
		t.Errorf("IncludeDeleted total = %d, want 3", res.Total)
	}
}

func TestListProductsPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	names := []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo"}
	for _, name := range names {
		p := makeStoreProduct("prod-"+name, name, "slug-"+name)
		if err := s.CreateProduct(ctx, p); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	res, err := s.ListProducts(ctx, store.ProductFilter{}, store.PaginationParams{Limit: 2})
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(res.Items) != 2 || res.Total != 5 || !res.HasMore {
		t.Errorf("page 1: len=%d total=%d hasMore=%v", len(res.Items), res.Total, res.HasMore)
	}

	res, err = s.ListProducts(ctx, store.ProductFilter{}, store.PaginationParams{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("last page: %v", err)
	}
	if len(res.Items) != 1 || res.HasMore {
		t.Errorf("last page: len=%d hasMore=%v", len(res.Items), res.HasMore)
	}
}
