package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mughouse/mughouse-server/internal/blob"
	"github.com/mughouse/mughouse-server/internal/domain"
	"github.com/mughouse/mughouse-server/internal/errors"
	"github.com/mughouse/mughouse-server/internal/id"
	"github.com/mughouse/mughouse-server/internal/lifecycle"
	"github.com/mughouse/mughouse-server/internal/search"
	"github.com/mughouse/mughouse-server/internal/sse"
	"github.com/mughouse/mughouse-server/internal/store"
	"github.com/mughouse/mughouse-server/internal/taxonomy"
	"github.com/mughouse/mughouse-server/internal/util"
	"github.com/mughouse/mughouse-server/internal/validation"
)

// guardCatalog adapts the store to the lifecycle guard's catalog surface,
// translating store misses into domain not-found errors.
type guardCatalog struct {
	store store.Store
}

func (c guardCatalog) GetProductAny(ctx context.Context, productID string) (*domain.Product, error) {
	p, err := c.store.GetProductAny(ctx, productID)
	if err != nil {
		return nil, notFound(err, "product "+productID+" not found")
	}
	return p, nil
}

func (c guardCatalog) GetCategory(ctx context.Context, categoryID string) (*domain.Category, error) {
	cat, err := c.store.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, notFound(err, "category "+categoryID+" not found")
	}
	return cat, nil
}

func (c guardCatalog) CountOrderItemsForProduct(ctx context.Context, productID string) (int, error) {
	return c.store.CountOrderItemsForProduct(ctx, productID)
}

func (c guardCatalog) UpdateProductLifecycle(ctx context.Context, p *domain.Product) error {
	return c.store.UpdateProductLifecycle(ctx, p)
}

func (c guardCatalog) RemoveProductRow(ctx context.Context, productID string) error {
	return c.store.RemoveProductRow(ctx, productID)
}

// ProductService orchestrates catalog product operations.
type ProductService struct {
	store     store.Store
	guard     *lifecycle.Guard
	indexer   Indexer
	events    EventEmitter
	blobs     blob.Store
	logger    *slog.Logger
	validator *validation.Validator
}

// NewProductService creates a new product service.
func NewProductService(st store.Store, blobs blob.Store, indexer Indexer, events EventEmitter, logger *slog.Logger) *ProductService {
	return &ProductService{
		store:     st,
		guard:     lifecycle.NewGuard(guardCatalog{store: st}, logger),
		indexer:   indexer,
		events:    events,
		blobs:     blobs,
		logger:    logger,
		validator: validation.New(),
	}
}

// Guard exposes the lifecycle guard for collaborating services.
func (s *ProductService) Guard() *lifecycle.Guard {
	return s.guard
}

// ListProducts returns a filtered, paginated product listing.
func (s *ProductService) ListProducts(ctx context.Context, filter store.ProductFilter, params store.PaginationParams) (*store.PaginatedResult[*domain.Product], error) {
	params.Validate()
	return s.store.ListProducts(ctx, filter, params)
}

// GetProduct returns a single non-tombstoned product.
func (s *ProductService) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	p, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, notFound(err, "product "+productID+" not found")
	}
	return p, nil
}

// GetProductAny returns a product regardless of its tombstone state.
// Admin detail views use this to inspect soft-deleted rows.
func (s *ProductService) GetProductAny(ctx context.Context, productID string) (*domain.Product, error) {
	p, err := s.store.GetProductAny(ctx, productID)
	if err != nil {
		return nil, notFound(err, "product "+productID+" not found")
	}
	return p, nil
}

// GetProductBySlug returns a single product by its slug.
func (s *ProductService) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	p, err := s.store.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, "product "+slug+" not found")
	}
	return p, nil
}

// CreateProductRequest contains fields for creating a product.
type CreateProductRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	CategoryID  string `json:"category_id" validate:"required"`
	Description string `json:"description" validate:"max=5000"`
	Color       string `json:"color" validate:"max=50"`
	CapacityML  int    `json:"capacity_ml" validate:"gte=0,lte=5000"`
	Material    string `json:"material" validate:"omitempty,oneof=ceramic stainless glass plastic bamboo"`
	UnitPrice   int64  `json:"unit_price" validate:"gt=0"`
}

// CreateProduct creates a new product in a category. The slug is derived from
// the name against the product slug namespace.
func (s *ProductService) CreateProduct(ctx context.Context, req CreateProductRequest) (*domain.Product, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.store.GetCategory(ctx, req.CategoryID); err != nil {
		return nil, notFound(err, "category "+req.CategoryID+" not found")
	}

	slug, err := taxonomy.UniqueSlug(ctx, req.Name, s.store.ProductSlugExists)
	if err != nil {
		return nil, err
	}

	productID, err := id.Generate("prod")
	if err != nil {
		return nil, err
	}

	p := &domain.Product{
		Auditable:   domain.Auditable{ID: productID},
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Color:       req.Color,
		CapacityML:  req.CapacityML,
		Material:    req.Material,
		UnitPrice:   req.UnitPrice,
		IsActive:    true,
	}
	p.InitTimestamps()

	if err := s.store.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	s.index(ctx, p)
	s.events.Emit(sse.NewProductCreatedEvent(p))
	s.logger.Info("product created", "id", productID, "slug", slug, "category", req.CategoryID)
	return p, nil
}

// UpdateProductRequest contains fields for updating a product.
// Nil fields are left untouched.
type UpdateProductRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=120"`
	CategoryID  *string `json:"category_id"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Color       *string `json:"color" validate:"omitempty,max=50"`
	CapacityML  *int    `json:"capacity_ml" validate:"omitempty,gte=0,lte=5000"`
	Material    *string `json:"material" validate:"omitempty,oneof=ceramic stainless glass plastic bamboo"`
	UnitPrice   *int64  `json:"unit_price" validate:"omitempty,gt=0"`
}

// UpdateProduct applies partial changes to a non-tombstoned product.
// Renaming re-derives the slug; order snapshots taken earlier are unaffected.
func (s *ProductService) UpdateProduct(ctx context.Context, productID string, req UpdateProductRequest) (*domain.Product, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != p.Name {
		p.Name = *req.Name
		if base := util.Slugify(*req.Name); base != "" && base != p.Slug {
			slug, err := taxonomy.UniqueSlug(ctx, *req.Name, s.store.ProductSlugExists)
			if err != nil {
				return nil, err
			}
			p.Slug = slug
		}
	}
	if req.CategoryID != nil && *req.CategoryID != p.CategoryID {
		if _, err := s.store.GetCategory(ctx, *req.CategoryID); err != nil {
			return nil, notFound(err, "category "+*req.CategoryID+" not found")
		}
		p.CategoryID = *req.CategoryID
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Color != nil {
		p.Color = *req.Color
	}
	if req.CapacityML != nil {
		p.CapacityML = *req.CapacityML
	}
	if req.Material != nil {
		p.Material = *req.Material
	}
	if req.UnitPrice != nil {
		p.UnitPrice = *req.UnitPrice
	}

	p.Touch()
	if err := s.store.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}

	s.index(ctx, p)
	s.events.Emit(sse.NewProductUpdatedEvent(p))
	return p, nil
}

// SetProductActive toggles storefront visibility. Deactivating a product that
// order history references is allowed; visibility is an editorial decision,
// only physical removal is guarded.
func (s *ProductService) SetProductActive(ctx context.Context, productID string, active bool) (*domain.Product, error) {
	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.IsActive == active {
		return p, nil
	}

	p.IsActive = active
	p.Touch()
	if err := s.store.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}

	s.index(ctx, p)
	s.events.Emit(sse.NewProductUpdatedEvent(p))
	s.logger.Info("product visibility changed", "id", productID, "active", active)
	return p, nil
}

// DeleteProduct soft-deletes a product: the row is tombstoned and hidden,
// order history stays intact, and the product leaves the search index.
func (s *ProductService) DeleteProduct(ctx context.Context, productID, actorID string) error {
	if err := s.guard.SoftDelete(ctx, productID, actorID); err != nil {
		return err
	}

	p, err := s.GetProductAny(ctx, productID)
	if err != nil {
		return err
	}
	deletedAt := time.Now()
	if p.DeletedAt != nil {
		deletedAt = *p.DeletedAt
	}

	if err := s.indexer.DeleteDocument(productID); err != nil {
		s.logger.Warn("failed to remove product from search index", "id", productID, "error", err)
	}
	s.events.Emit(sse.NewProductDeletedEvent(productID, p.DeletedBy, deletedAt))
	return nil
}

// RestoreProduct clears a product's tombstone. The product comes back
// inactive and must be activated explicitly.
func (s *ProductService) RestoreProduct(ctx context.Context, productID string) (*domain.Product, error) {
	if err := s.guard.Reactivate(ctx, productID); err != nil {
		return nil, err
	}

	p, err := s.GetProductAny(ctx, productID)
	if err != nil {
		return nil, err
	}

	s.index(ctx, p)
	s.events.Emit(sse.NewProductRestoredEvent(p))
	return p, nil
}

// PurgeProduct physically removes a product row and its stored images.
// Refused while any order line references the product.
func (s *ProductService) PurgeProduct(ctx context.Context, productID string) error {
	if err := s.guard.HardDelete(ctx, productID); err != nil {
		return err
	}

	// Images are unreferenced once the row is gone; best-effort cleanup.
	prefix := fmt.Sprintf("products/%s/", productID)
	if infos, err := s.blobs.List(ctx, prefix); err == nil {
		for _, info := range infos {
			if _, err := s.blobs.Delete(ctx, info.Key); err != nil {
				s.logger.Warn("failed to delete product image", "key", info.Key, "error", err)
			}
		}
	}

	if err := s.indexer.DeleteDocument(productID); err != nil {
		s.logger.Warn("failed to remove product from search index", "id", productID, "error", err)
	}
	s.events.Emit(sse.NewProductPurgedEvent(productID))
	return nil
}

// allowedImageTypes maps accepted upload content types to file extensions.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// AttachImage stores an uploaded product image and records its blob key on
// the product. A previously attached image is deleted after the new one is
// safely stored.
func (s *ProductService) AttachImage(ctx context.Context, productID, contentType string, r io.Reader) (*domain.Product, error) {
	ext, ok := allowedImageTypes[strings.ToLower(contentType)]
	if !ok {
		return nil, errors.Validationf("unsupported image content type %q", contentType)
	}

	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	key := path.Join("products", productID, uuid.New().String()+ext)
	info, err := s.blobs.Put(ctx, key, r, blob.PutOptions{
		ContentType: contentType,
		Metadata:    map[string]string{"product_id": productID},
	})
	if err != nil {
		return nil, err
	}

	oldKey := p.ImagePath
	p.ImagePath = key
	p.Touch()
	if err := s.store.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}

	if oldKey != "" && oldKey != key {
		if _, err := s.blobs.Delete(ctx, oldKey); err != nil {
			s.logger.Warn("failed to delete replaced product image", "key", oldKey, "error", err)
		}
	}

	s.index(ctx, p)
	s.events.Emit(sse.NewProductUpdatedEvent(p))
	s.logger.Info("product image attached", "id", productID, "key", key, "size", info.Size)
	return p, nil
}

// ImageURL returns a time-limited URL for the product's attached image, or ""
// when no image is attached.
func (s *ProductService) ImageURL(ctx context.Context, p *domain.Product) (string, error) {
	if p.ImagePath == "" {
		return "", nil
	}
	return s.blobs.PresignURL(ctx, p.ImagePath, blob.SignedURLOptions{})
}

// index pushes the product's current state into the search index, with the
// category denormalized in best-effort. Index failures never fail a mutation.
func (s *ProductService) index(ctx context.Context, p *domain.Product) {
	var categoryName, categorySlug string
	if p.CategoryID != "" {
		if cat, err := s.store.GetCategory(ctx, p.CategoryID); err == nil {
			categoryName = cat.Name
			categorySlug = cat.Slug
		}
	}
	if err := s.indexer.IndexDocument(search.ProductToSearchDocument(p, categoryName, categorySlug)); err != nil {
		s.logger.Warn("failed to index product", "id", p.ID, "error", err)
	}
}
