// Package search provides full-text search functionality using Bleve.
// It enables federated search across products and categories with faceted
// filtering, fuzzy matching, and numeric range queries on price and capacity.
package search

import (
	"github.com/mughouse/mughouse-server/internal/domain"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeProduct  DocType = "product"
	DocTypeCategory DocType = "category"
)

// SearchDocument is the unified document structure for the Bleve index.
// All searchable entities are indexed as SearchDocuments with type discrimination.
//
// Design note: We denormalize the category name and slug into product
// documents to enable single-query search across the catalog. The trade-off
// is storage space for query performance, which is worthwhile for an admin
// catalog where staff expect instant results.
type SearchDocument struct {
	// Identity
	ID   string  `json:"id"`   // Original entity ID (product_xxx, category_xxx)
	Type DocType `json:"type"` // Discriminator for result grouping

	// Primary searchable text (product or category name)
	Name string `json:"name"`

	// Slug for exact lookup
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`

	// Product-specific fields (empty for categories)
	CategoryID   string `json:"category_id,omitempty"`
	CategoryName string `json:"category_name,omitempty"` // Denormalized for search
	CategorySlug string `json:"category_slug,omitempty"` // Denormalized for filtering
	Material     string `json:"material,omitempty"`
	Color        string `json:"color,omitempty"`

	// Numeric fields for range queries and sorting
	UnitPrice  int64 `json:"unit_price,omitempty"`  // Minor currency units (products only)
	CapacityML int   `json:"capacity_ml,omitempty"` // (products only)

	// Visibility flag; tombstoned entities are never indexed
	IsActive bool `json:"is_active"`

	// Timestamps for sorting
	CreatedAt int64 `json:"created_at"` // Unix millis
	UpdatedAt int64 `json:"updated_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// This ensures field names match the Bleve index mapping.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *SearchDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"type":       string(d.Type),
		"name":       d.Name,
		"slug":       d.Slug,
		"is_active":  d.IsActive,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	// Optional fields - only add if non-empty
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.CategoryID != "" {
		m["category_id"] = d.CategoryID
	}
	if d.CategoryName != "" {
		m["category_name"] = d.CategoryName
	}
	if d.CategorySlug != "" {
		m["category_slug"] = d.CategorySlug
	}
	if d.Material != "" {
		m["material"] = d.Material
	}
	if d.Color != "" {
		m["color"] = d.Color
	}
	if d.UnitPrice > 0 {
		m["unit_price"] = d.UnitPrice
	}
	if d.CapacityML > 0 {
		m["capacity_ml"] = d.CapacityML
	}

	return m
}

// ProductToSearchDocument converts a domain Product to a SearchDocument.
// Requires the denormalized category name and slug to be provided by the
// caller, as the search package shouldn't depend on store.
func ProductToSearchDocument(p *domain.Product, categoryName, categorySlug string) *SearchDocument {
	return &SearchDocument{
		ID:           p.ID,
		Type:         DocTypeProduct,
		Name:         p.Name,
		Slug:         p.Slug,
		Description:  p.Description,
		CategoryID:   p.CategoryID,
		CategoryName: categoryName,
		CategorySlug: categorySlug,
		Material:     p.Material,
		Color:        p.Color,
		UnitPrice:    p.UnitPrice,
		CapacityML:   p.CapacityML,
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt.UnixMilli(),
		UpdatedAt:    p.UpdatedAt.UnixMilli(),
	}
}

// CategoryToSearchDocument converts a domain Category to a SearchDocument.
func CategoryToSearchDocument(c *domain.Category) *SearchDocument {
	return &SearchDocument{
		ID:          c.ID,
		Type:        DocTypeCategory,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt.UnixMilli(),
		UpdatedAt:   c.UpdatedAt.UnixMilli(),
	}
}
