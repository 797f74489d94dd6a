// Package lifecycle makes destructive catalog operations safe for products
// that immutable order history may reference. It distinguishes "used" from
// "unused" products, drives the soft-delete/reactivate transitions, and
// captures the point-in-time snapshots embedded into order lines.
package lifecycle

import (
	"context"
	"log/slog"
	"time"

	"github.com/mughouse/mughouse-server/internal/domain"
	"github.com/mughouse/mughouse-server/internal/errors"
)

// Catalog is the persistence surface the guard operates on. Reads must
// include tombstoned rows; every write happens inside the surrounding
// request transaction and is validated before it is issued.
type Catalog interface {
	// GetProductAny returns a product regardless of its tombstone state.
	GetProductAny(ctx context.Context, productID string) (*domain.Product, error)
	// GetCategory returns a category for snapshot denormalization.
	GetCategory(ctx context.Context, categoryID string) (*domain.Category, error)
	// CountOrderItemsForProduct returns how many order lines reference the product.
	CountOrderItemsForProduct(ctx context.Context, productID string) (int, error)
	// UpdateProductLifecycle persists the tombstone and visibility fields.
	UpdateProductLifecycle(ctx context.Context, p *domain.Product) error
	// RemoveProductRow physically deletes the product row.
	RemoveProductRow(ctx context.Context, productID string) error
}

// Guard enforces the hard-delete/history-safety rule for the catalog.
//
// Whether an in-use product may still be deactivated is deliberately not
// enforced here; that policy belongs to the service layer. The only hard
// invariant is that a product referenced by order history is never
// physically removed.
type Guard struct {
	catalog Catalog
	logger  *slog.Logger
}

// NewGuard creates a lifecycle guard over the given catalog.
func NewGuard(catalog Catalog, logger *slog.Logger) *Guard {
	return &Guard{catalog: catalog, logger: logger}
}

// CanHardDelete returns true iff no order line anywhere references the
// product. Physical removal is only permitted when this holds.
func (g *Guard) CanHardDelete(ctx context.Context, productID string) (bool, error) {
	refs, err := g.catalog.CountOrderItemsForProduct(ctx, productID)
	if err != nil {
		return false, err
	}
	return refs == 0, nil
}

// HardDelete physically removes a product row. It fails with
// errors.ErrEntityInUse when order history references the product; the
// caller must fall back to SoftDelete instead. The check runs before the
// delete, so a refused attempt writes nothing.
func (g *Guard) HardDelete(ctx context.Context, productID string) error {
	if _, err := g.catalog.GetProductAny(ctx, productID); err != nil {
		return err
	}

	ok, err := g.CanHardDelete(ctx, productID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.EntityInUsef("product %s is referenced by order history and cannot be hard-deleted", productID)
	}

	if err := g.catalog.RemoveProductRow(ctx, productID); err != nil {
		return err
	}

	g.logger.Info("product hard-deleted", "product_id", productID)
	return nil
}

// SoftDelete tombstones a product: IsDeleted=true, IsActive=false, with the
// deletion time and acting user recorded. Soft-deleting an already-deleted
// product is a no-op success, not an error.
func (g *Guard) SoftDelete(ctx context.Context, productID, actorID string) error {
	p, err := g.catalog.GetProductAny(ctx, productID)
	if err != nil {
		return err
	}

	if p.IsDeleted {
		return nil
	}

	p.MarkDeleted(actorID)
	if err := g.catalog.UpdateProductLifecycle(ctx, p); err != nil {
		return err
	}

	g.logger.Info("product soft-deleted", "product_id", productID, "actor_id", actorID)
	return nil
}

// Reactivate clears a product's tombstone. It fails with
// errors.ErrInvalidLifecycleState when the product was never soft-deleted.
// The product stays inactive until explicitly activated again.
func (g *Guard) Reactivate(ctx context.Context, productID string) error {
	p, err := g.catalog.GetProductAny(ctx, productID)
	if err != nil {
		return err
	}

	if !p.IsDeleted {
		return errors.InvalidLifecycleState("product is not deleted; nothing to reactivate")
	}

	p.ClearDeleted()
	if err := g.catalog.UpdateProductLifecycle(ctx, p); err != nil {
		return err
	}

	g.logger.Info("product reactivated", "product_id", productID)
	return nil
}

// Snapshot produces the denormalized value copy of a product's current
// display-relevant state for embedding into a new order line. The result
// holds no references to live rows; nothing that happens to the product
// afterward can change a snapshot already taken.
func (g *Guard) Snapshot(ctx context.Context, productID string) (*domain.ProductSnapshot, error) {
	p, err := g.catalog.GetProductAny(ctx, productID)
	if err != nil {
		return nil, err
	}

	snap := &domain.ProductSnapshot{
		SchemaVersion: domain.SnapshotSchemaVersion,
		ProductID:     p.ID,
		Name:          p.Name,
		Slug:          p.Slug,
		CategoryID:    p.CategoryID,
		Color:         p.Color,
		CapacityML:    p.CapacityML,
		Material:      p.Material,
		UnitPrice:     p.UnitPrice,
		ImagePath:     p.ImagePath,
		CapturedAt:    time.Now().UTC(),
	}

	if p.CategoryID != "" {
		cat, err := g.catalog.GetCategory(ctx, p.CategoryID)
		if err == nil {
			snap.CategoryName = cat.Name
		} else if !errors.Is(err, errors.ErrNotFound) {
			return nil, err
		}
	}

	return snap, nil
}
