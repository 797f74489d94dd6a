package domain

import "time"

// SnapshotSchemaVersion identifies the ProductSnapshot field layout.
// Bump it whenever a field is added or its meaning changes so historical
// snapshots can always be interpreted correctly.
const SnapshotSchemaVersion = 1

// ProductSnapshot is an immutable, fully denormalized copy of a product's
// display-relevant state at the moment an order line was created.
//
// A snapshot is a value, never a live reference: later renames,
// re-categorization, soft delete, or hard delete of the source product must
// leave every previously captured snapshot unchanged. It is stored write-once
// as JSON on the order item and never updated afterward.
type ProductSnapshot struct {
	SchemaVersion int       `json:"schema_version"`
	ProductID     string    `json:"product_id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	CategoryID    string    `json:"category_id,omitempty"`
	CategoryName  string    `json:"category_name,omitempty"`
	Color         string    `json:"color,omitempty"`
	CapacityML    int       `json:"capacity_ml,omitempty"`
	Material      string    `json:"material,omitempty"`
	UnitPrice     int64     `json:"unit_price"`
	ImagePath     string    `json:"image_path,omitempty"`
	CapturedAt    time.Time `json:"captured_at"`
}
