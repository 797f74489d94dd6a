package domain

import "time"

// Product is a catalog entry: one sellable drinkware item.
//
// Visibility and deletion are independent axes. IsActive controls whether the
// product shows up in the storefront; IsDeleted is a tombstone that keeps the
// row around for order history. A product can be inactive-but-not-deleted
// (hidden, restorable) or tombstoned or both.
type Product struct {
	Auditable
	Name        string     `json:"name"`
	Slug        string     `json:"slug"` // URL-safe key, globally unique
	Description string     `json:"description,omitempty"`
	CategoryID  string     `json:"category_id"`
	Color       string     `json:"color,omitempty"`
	CapacityML  int        `json:"capacity_ml,omitempty"` // e.g. 473 for a 16oz cup
	Material    string     `json:"material,omitempty"`    // ceramic, stainless, glass
	UnitPrice   int64      `json:"unit_price"`            // minor currency units
	ImagePath   string     `json:"image_path,omitempty"`  // blob store key
	IsActive    bool       `json:"is_active"`
	IsDeleted   bool       `json:"is_deleted"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	DeletedBy   string     `json:"deleted_by,omitempty"` // actor user ID
}

// Visible returns true if the product should appear in catalog-facing queries.
func (p *Product) Visible() bool {
	return p.IsActive && !p.IsDeleted
}

// MarkDeleted tombstones the product. Deleting also hides it from the
// storefront; the row itself is retained for order history.
func (p *Product) MarkDeleted(actorID string) {
	now := time.Now()
	p.IsDeleted = true
	p.IsActive = false
	p.DeletedAt = &now
	p.DeletedBy = actorID
	p.UpdatedAt = now
}

// ClearDeleted removes the tombstone. The product stays inactive until an
// administrator activates it again.
func (p *Product) ClearDeleted() {
	p.IsDeleted = false
	p.DeletedAt = nil
	p.DeletedBy = ""
	p.Touch()
}
