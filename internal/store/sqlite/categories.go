package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mughouse/mughouse-server/internal/domain"
	"github.com/mughouse/mughouse-server/internal/store"
)

// categoryColumns is the ordered list of columns selected in category queries.
// Must match the scan order in scanCategory.
const categoryColumns = `id, created_at, updated_at, name, slug, description,
	parent_id, sort_order, is_active`

// scanCategory scans a sql.Row (or sql.Rows via its Scan method) into a domain.Category.
func scanCategory(scanner interface{ Scan(dest ...any) error }) (*domain.Category, error) {
	var c domain.Category

	var (
		createdAt   string
		updatedAt   string
		description sql.NullString
		parentID    sql.NullString
		isActive    int
	)

	err := scanner.Scan(
		&c.ID,
		&createdAt,
		&updatedAt,
		&c.Name,
		&c.Slug,
		&description,
		&parentID,
		&c.SortOrder,
		&isActive,
	)
	if err != nil {
		return nil, err
	}

	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	c.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		c.Description = description.String
	}
	if parentID.Valid {
		c.ParentID = parentID.String
	}
	c.IsActive = isActive != 0

	return &c, nil
}

// CreateCategory inserts a new category.
// Returns store.ErrAlreadyExists if the ID or slug already exists.
func (s *Store) CreateCategory(ctx context.Context, c *domain.Category) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (
			id, created_at, updated_at, name, slug, description,
			parent_id, sort_order, is_active
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		formatTime(c.CreatedAt),
		formatTime(c.UpdatedAt),
		c.Name,
		c.Slug,
		nullString(c.Description),
		nullString(c.ParentID),
		c.SortOrder,
		boolToInt(c.IsActive),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetCategory retrieves a category by ID.
// Returns store.ErrNotFound if the category does not exist.
func (s *Store) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)

	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetCategoryBySlug retrieves a category by slug.
func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE slug = ?`, slug)

	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCategory persists all mutable category fields.
func (s *Store) UpdateCategory(ctx context.Context, c *domain.Category) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE categories
		SET updated_at = ?, name = ?, slug = ?, description = ?,
			parent_id = ?, sort_order = ?, is_active = ?
		WHERE id = ?`,
		formatTime(c.UpdatedAt),
		c.Name,
		c.Slug,
		nullString(c.Description),
		nullString(c.ParentID),
		c.SortOrder,
		boolToInt(c.IsActive),
		c.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteCategory removes a category row.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListCategories returns all categories ordered by sort order, then name.
func (s *Store) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategoryChildren returns the direct children of a category.
// Pass an empty parentID for root categories.
func (s *Store) GetCategoryChildren(ctx context.Context, parentID string) ([]*domain.Category, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if parentID == "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+categoryColumns+` FROM categories WHERE parent_id IS NULL ORDER BY sort_order, name`)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+categoryColumns+` FROM categories WHERE parent_id = ? ORDER BY sort_order, name`, parentID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CategorySlugExists reports whether any category uses the slug.
func (s *Store) CategorySlugExists(ctx context.Context, slug string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE slug = ?`, slug).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CategoryParentID returns the parent ID of a category, or "" for roots.
// Returns store.ErrNotFound if the category does not exist.
func (s *Store) CategoryParentID(ctx context.Context, id string) (string, error) {
	var parentID sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT parent_id FROM categories WHERE id = ?`, id).Scan(&parentID)
	if err == sql.ErrNoRows {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return parentID.String, nil
}

// CountProductsInCategory counts products assigned to the category,
// tombstoned rows included.
func (s *Store) CountProductsInCategory(ctx context.Context, categoryID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE category_id = ?`, categoryID).Scan(&count)
	return count, err
}
