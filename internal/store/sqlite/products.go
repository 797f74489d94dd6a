package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mughouse/mughouse-server/internal/domain"
	"github.com/mughouse/mughouse-server/internal/store"
)

// productColumns is the ordered list of columns selected in product queries.
// Must match the scan order in scanProduct.
const productColumns = `id, created_at, updated_at, name, slug, description,
	category_id, color, capacity_ml, material, unit_price, image_path,
	is_active, is_deleted, deleted_at, deleted_by`

// scanProduct scans a sql.Row (or sql.Rows via its Scan method) into a domain.Product.
func scanProduct(scanner interface{ Scan(dest ...any) error }) (*domain.Product, error) {
	var p domain.Product

	var (
		createdAt   string
		updatedAt   string
		description sql.NullString
		categoryID  sql.NullString
		color       sql.NullString
		material    sql.NullString
		imagePath   sql.NullString
		isActive    int
		isDeleted   int
		deletedAt   sql.NullString
		deletedBy   sql.NullString
	)

	err := scanner.Scan(
		&p.ID,
		&createdAt,
		&updatedAt,
		&p.Name,
		&p.Slug,
		&description,
		&categoryID,
		&color,
		&p.CapacityML,
		&material,
		&p.UnitPrice,
		&imagePath,
		&isActive,
		&isDeleted,
		&deletedAt,
		&deletedBy,
	)
	if err != nil {
		return nil, err
	}

	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	p.DeletedAt, err = parseNullableTime(deletedAt)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		p.Description = description.String
	}
	if categoryID.Valid {
		p.CategoryID = categoryID.String
	}
	if color.Valid {
		p.Color = color.String
	}
	if material.Valid {
		p.Material = material.String
	}
	if imagePath.Valid {
		p.ImagePath = imagePath.String
	}
	if deletedBy.Valid {
		p.DeletedBy = deletedBy.String
	}

	p.IsActive = isActive != 0
	p.IsDeleted = isDeleted != 0

	return &p, nil
}

// CreateProduct inserts a new product.
// Returns store.ErrAlreadyExists if the ID or slug already exists.
func (s *Store) CreateProduct(ctx context.Context, p *domain.Product) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (
			id, created_at, updated_at, name, slug, description,
			category_id, color, capacity_ml, material, unit_price, image_path,
			is_active, is_deleted, deleted_at, deleted_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
		p.Name,
		p.Slug,
		nullString(p.Description),
		nullString(p.CategoryID),
		nullString(p.Color),
		p.CapacityML,
		nullString(p.Material),
		p.UnitPrice,
		nullString(p.ImagePath),
		boolToInt(p.IsActive),
		boolToInt(p.IsDeleted),
		nullTimeString(p.DeletedAt),
		nullString(p.DeletedBy),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetProduct retrieves a product by ID, excluding tombstoned rows.
// Returns store.ErrNotFound if the product does not exist or is deleted.
func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ? AND is_deleted = 0`, id)

	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetProductAny retrieves a product by ID, tombstoned rows included.
// Order history and restore flows need to see deleted products.
func (s *Store) GetProductAny(ctx context.Context, id string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id)

	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetProductBySlug retrieves a product by slug, excluding tombstoned rows.
func (s *Store) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE slug = ? AND is_deleted = 0`, slug)

	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProduct persists all mutable product fields.
func (s *Store) UpdateProduct(ctx context.Context, p *domain.Product) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET updated_at = ?, name = ?, slug = ?, description = ?,
			category_id = ?, color = ?, capacity_ml = ?, material = ?,
			unit_price = ?, image_path = ?, is_active = ?
		WHERE id = ?`,
		formatTime(p.UpdatedAt),
		p.Name,
		p.Slug,
		nullString(p.Description),
		nullString(p.CategoryID),
		nullString(p.Color),
		p.CapacityML,
		nullString(p.Material),
		p.UnitPrice,
		nullString(p.ImagePath),
		boolToInt(p.IsActive),
		p.ID,
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

// UpdateProductLifecycle persists only the tombstone and visibility fields.
func (s *Store) UpdateProductLifecycle(ctx context.Context, p *domain.Product) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET updated_at = ?, is_active = ?, is_deleted = ?, deleted_at = ?, deleted_by = ?
		WHERE id = ?`,
		formatTime(p.UpdatedAt),
		boolToInt(p.IsActive),
		boolToInt(p.IsDeleted),
		nullTimeString(p.DeletedAt),
		nullString(p.DeletedBy),
		p.ID,
	)
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

// RemoveProductRow physically deletes a product row. Callers must verify the
// product has no order history first.
func (s *Store) RemoveProductRow(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
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

// ListProducts returns a filtered page of products ordered by name.
func (s *Store) ListProducts(ctx context.Context, filter store.ProductFilter, params store.PaginationParams) (*store.PaginatedResult[*domain.Product], error) {
	params.Validate()

	where := []string{"1=1"}
	var args []any
	if !filter.IncludeDeleted {
		where = append(where, "is_deleted = 0")
	}
	if filter.ActiveOnly {
		where = append(where, "is_active = 1")
	}
	if filter.CategoryID != "" {
		where = append(where, "category_id = ?")
		args = append(args, filter.CategoryID)
	}
	if filter.Material != "" {
		where = append(where, "material = ?")
		args = append(args, filter.Material)
	}
	if filter.Color != "" {
		where = append(where, "color = ?")
		args = append(args, filter.Color)
	}
	cond := strings.Join(where, " AND ")

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE `+cond, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE ` + cond +
		` ORDER BY name LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, params.Limit, params.Offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &store.PaginatedResult[*domain.Product]{
		Items:   products,
		Total:   total,
		HasMore: params.Offset+len(products) < total,
	}, nil
}

// ListAllProducts returns every product row, tombstones included.
// Used for search index rebuilds.
func (s *Store) ListAllProducts(ctx context.Context) ([]*domain.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// CountProducts counts non-tombstoned products.
func (s *Store) CountProducts(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE is_deleted = 0`).Scan(&count)
	return count, err
}

// ProductSlugExists reports whether any product row uses the slug,
// tombstoned rows included so restored products keep unique slugs.
func (s *Store) ProductSlugExists(ctx context.Context, slug string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE slug = ?`, slug).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountOrderItemsForProduct counts order lines referencing the product.
// A nonzero count blocks hard deletion.
func (s *Store) CountOrderItemsForProduct(ctx context.Context, productID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM order_items WHERE product_id = ?`, productID).Scan(&count)
	return count, err
}
