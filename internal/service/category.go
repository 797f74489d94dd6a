package service

import (
	"context"
	"log/slog"

	"github.com/mughouse/mughouse-server/internal/domain"
	"github.com/mughouse/mughouse-server/internal/errors"
	"github.com/mughouse/mughouse-server/internal/id"
	"github.com/mughouse/mughouse-server/internal/search"
	"github.com/mughouse/mughouse-server/internal/sse"
	"github.com/mughouse/mughouse-server/internal/store"
	"github.com/mughouse/mughouse-server/internal/taxonomy"
	"github.com/mughouse/mughouse-server/internal/util"
	"github.com/mughouse/mughouse-server/internal/validation"
)

// categoryNodes adapts the store to the read-only tree view the taxonomy
// validator walks. Store misses become domain not-found errors here so the
// validator only ever sees internal/errors values.
type categoryNodes struct {
	store store.Store
}

func (n categoryNodes) ParentID(ctx context.Context, nodeID string) (string, error) {
	parentID, err := n.store.CategoryParentID(ctx, nodeID)
	if err != nil {
		return "", notFound(err, "category "+nodeID+" not found")
	}
	return parentID, nil
}

func (n categoryNodes) SlugExists(ctx context.Context, slug string) (bool, error) {
	return n.store.CategorySlugExists(ctx, slug)
}

// CategoryService orchestrates category tree operations.
type CategoryService struct {
	store     store.Store
	tree      *taxonomy.Tree
	indexer   Indexer
	events    EventEmitter
	logger    *slog.Logger
	validator *validation.Validator
}

// NewCategoryService creates a new category service.
func NewCategoryService(st store.Store, indexer Indexer, events EventEmitter, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		store:     st,
		tree:      taxonomy.New(categoryNodes{store: st}),
		indexer:   indexer,
		events:    events,
		logger:    logger,
		validator: validation.New(),
	}
}

// ListCategories returns all categories ordered for tree assembly.
func (s *CategoryService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.store.ListCategories(ctx)
}

// GetCategory returns a single category.
func (s *CategoryService) GetCategory(ctx context.Context, categoryID string) (*domain.Category, error) {
	c, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, notFound(err, "category "+categoryID+" not found")
	}
	return c, nil
}

// GetCategoryBySlug returns a single category by its slug.
func (s *CategoryService) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	c, err := s.store.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, "category "+slug+" not found")
	}
	return c, nil
}

// GetCategoryChildren returns direct children of a category.
func (s *CategoryService) GetCategoryChildren(ctx context.Context, parentID string) ([]*domain.Category, error) {
	if _, err := s.GetCategory(ctx, parentID); err != nil {
		return nil, err
	}
	return s.store.GetCategoryChildren(ctx, parentID)
}

// CreateCategoryRequest contains fields for creating a category.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	ParentID    string `json:"parent_id"`
	Description string `json:"description" validate:"max=2000"`
	SortOrder   int    `json:"sort_order"`
}

// CreateCategory creates a new category under an optional parent. The slug is
// derived from the name with collisions resolved by numeric suffix, and the
// placement is validated against the cycle and depth rules before any write.
func (s *CategoryService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*domain.Category, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.ParentID != "" {
		if _, err := s.GetCategory(ctx, req.ParentID); err != nil {
			return nil, err
		}
	}
	if err := s.tree.ValidateParentAssignment(ctx, "", req.ParentID); err != nil {
		return nil, err
	}

	slug, err := s.tree.AssignUniqueSlug(ctx, req.Name)
	if err != nil {
		return nil, err
	}

	categoryID, err := id.Generate("cat")
	if err != nil {
		return nil, err
	}

	c := &domain.Category{
		Auditable:   domain.Auditable{ID: categoryID},
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		ParentID:    req.ParentID,
		SortOrder:   req.SortOrder,
		IsActive:    true,
	}
	c.InitTimestamps()

	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, err
	}

	s.index(c)
	s.events.Emit(sse.NewCategoryCreatedEvent(c))
	s.logger.Info("category created", "id", categoryID, "slug", slug, "parent", req.ParentID)
	return c, nil
}

// UpdateCategoryRequest contains fields for updating a category.
// Nil fields are left untouched.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	SortOrder   *int    `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

// UpdateCategory applies partial changes. Renaming re-derives the slug so the
// public identifier follows the display name; the old slug is released.
func (s *CategoryService) UpdateCategory(ctx context.Context, categoryID string, req UpdateCategoryRequest) (*domain.Category, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	c, err := s.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != c.Name {
		c.Name = *req.Name
		// Only re-slug when the name change actually yields a new base,
		// otherwise the category's own row would force a pointless suffix.
		if base := util.Slugify(*req.Name); base != "" && base != c.Slug {
			slug, err := s.tree.AssignUniqueSlug(ctx, *req.Name)
			if err != nil {
				return nil, err
			}
			c.Slug = slug
		}
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.SortOrder != nil {
		c.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	c.Touch()
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}

	s.index(c)
	s.events.Emit(sse.NewCategoryUpdatedEvent(c))
	return c, nil
}

// MoveCategory re-parents a category. An empty newParentID makes it a root.
// The move is rejected if it would close a cycle or push the category's own
// subtree past the depth limit.
func (s *CategoryService) MoveCategory(ctx context.Context, categoryID, newParentID string) (*domain.Category, error) {
	c, err := s.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if c.ParentID == newParentID {
		return c, nil
	}

	if newParentID != "" {
		if _, err := s.GetCategory(ctx, newParentID); err != nil {
			return nil, err
		}
	}
	if err := s.tree.ValidateParentAssignment(ctx, categoryID, newParentID); err != nil {
		return nil, err
	}

	// The validator bounds the moved node itself; its descendants move with
	// it, so the subtree height has to fit under the new parent too.
	if newParentID != "" {
		parentDepth, err := s.tree.Depth(ctx, newParentID)
		if err != nil {
			return nil, err
		}
		height, err := s.subtreeHeight(ctx, categoryID, 1)
		if err != nil {
			return nil, err
		}
		if parentDepth+height > taxonomy.MaxDepth {
			return nil, errors.MaxDepthExceededf("moving category %s under %s would exceed the maximum depth of %d",
				categoryID, newParentID, taxonomy.MaxDepth)
		}
	}

	c.ParentID = newParentID
	c.Touch()
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}

	s.index(c)
	s.events.Emit(sse.NewCategoryUpdatedEvent(c))
	s.logger.Info("category moved", "id", categoryID, "new_parent", newParentID)
	return c, nil
}

// subtreeHeight returns the height of the subtree rooted at categoryID, the
// root itself counted as 1. The walk stops early once the depth limit is
// provably exceeded.
func (s *CategoryService) subtreeHeight(ctx context.Context, categoryID string, depth int) (int, error) {
	if depth > taxonomy.MaxDepth {
		return depth, nil
	}
	children, err := s.store.GetCategoryChildren(ctx, categoryID)
	if err != nil {
		return 0, err
	}
	height := 1
	for _, child := range children {
		childHeight, err := s.subtreeHeight(ctx, child.ID, depth+1)
		if err != nil {
			return 0, err
		}
		if childHeight+1 > height {
			height = childHeight + 1
		}
	}
	return height, nil
}

// DeleteCategory removes an empty category. Categories still holding children
// or products are refused; tombstoned product rows count too, since they keep
// referencing the category for order history.
func (s *CategoryService) DeleteCategory(ctx context.Context, categoryID string) error {
	if _, err := s.GetCategory(ctx, categoryID); err != nil {
		return err
	}

	children, err := s.store.GetCategoryChildren(ctx, categoryID)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return errors.EntityInUsef("category %s still has %d child categories", categoryID, len(children))
	}

	products, err := s.store.CountProductsInCategory(ctx, categoryID)
	if err != nil {
		return err
	}
	if products > 0 {
		return errors.EntityInUsef("category %s still has %d products", categoryID, products)
	}

	if err := s.store.DeleteCategory(ctx, categoryID); err != nil {
		return err
	}

	if err := s.indexer.DeleteDocument(categoryID); err != nil {
		s.logger.Warn("failed to remove category from search index", "id", categoryID, "error", err)
	}
	s.events.Emit(sse.NewCategoryDeletedEvent(categoryID))
	s.logger.Info("category deleted", "id", categoryID)
	return nil
}

// index pushes the category's current state into the search index.
// Index failures are logged, never surfaced; search lags rather than
// failing the mutation.
func (s *CategoryService) index(c *domain.Category) {
	if err := s.indexer.IndexDocument(search.CategoryToSearchDocument(c)); err != nil {
		s.logger.Warn("failed to index category", "id", c.ID, "error", err)
	}
}
