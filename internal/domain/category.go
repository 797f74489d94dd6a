package domain

// Category is a node in the self-referential product taxonomy.
// Categories form a tree bounded at three levels:
// Drinkware -> Mugs -> Travel Mugs.
type Category struct {
	Auditable
	Name        string `json:"name"`                  // Display name: "Travel Mugs"
	Slug        string `json:"slug"`                  // URL-safe key, globally unique: "travel-mugs"
	Description string `json:"description,omitempty"` // Optional description
	ParentID    string `json:"parent_id,omitempty"`   // Parent category ID (empty for root)
	SortOrder   int    `json:"sort_order"`            // Manual ordering within siblings
	IsActive    bool   `json:"is_active"`             // Hidden from the storefront when false
}

// IsRoot returns true if this category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == ""
}
