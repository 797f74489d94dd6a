package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mughouse/mughouse-server/internal/domain"
	"github.com/mughouse/mughouse-server/internal/store"
)

// customerColumns is the ordered list of columns selected in customer queries.
// Must match the scan order in scanCustomer.
const customerColumns = `id, created_at, updated_at, name, email, address, note`

// scanCustomer scans a sql.Row (or sql.Rows via its Scan method) into a domain.Customer.
func scanCustomer(scanner interface{ Scan(dest ...any) error }) (*domain.Customer, error) {
	var c domain.Customer

	var (
		createdAt string
		updatedAt string
		email     sql.NullString
		address   sql.NullString
		note      sql.NullString
	)

	err := scanner.Scan(
		&c.ID,
		&createdAt,
		&updatedAt,
		&c.FullName,
		&email,
		&address,
		&note,
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

	if email.Valid {
		c.Email = email.String
	}
	if address.Valid {
		c.Address = address.String
	}
	if note.Valid {
		c.Notes = note.String
	}

	return &c, nil
}

// CreateCustomer inserts a new customer.
func (s *Store) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (id, created_at, updated_at, name, email, address, note)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		formatTime(c.CreatedAt),
		formatTime(c.UpdatedAt),
		c.FullName,
		nullString(c.Email),
		nullString(c.Address),
		nullString(c.Notes),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetCustomer retrieves a customer by ID with phones attached.
// Returns store.ErrNotFound if the customer does not exist.
func (s *Store) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)

	c, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := s.ListPhones(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list phones for customer %s: %w", id, err)
	}
	for _, item := range items {
		c.Phones = append(c.Phones, phoneFromItem(item))
	}

	return c, nil
}

// UpdateCustomer persists all mutable customer fields.
func (s *Store) UpdateCustomer(ctx context.Context, c *domain.Customer) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE customers
		SET updated_at = ?, name = ?, email = ?, address = ?, note = ?
		WHERE id = ?`,
		formatTime(c.UpdatedAt),
		c.FullName,
		nullString(c.Email),
		nullString(c.Address),
		nullString(c.Notes),
		c.ID,
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

// DeleteCustomer removes a customer row. Phones cascade at the schema level.
func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
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

// ListCustomers returns a page of customers ordered by name. Phones are not
// attached on list reads.
func (s *Store) ListCustomers(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Customer], error) {
	params.Validate()

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&total); err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY name LIMIT ? OFFSET ?`,
		params.Limit, params.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &store.PaginatedResult[*domain.Customer]{
		Items:   customers,
		Total:   total,
		HasMore: params.Offset+len(customers) < total,
	}, nil
}

// SearchCustomersByName returns customers whose name contains the query,
// case-insensitive.
func (s *Store) SearchCustomersByName(ctx context.Context, query string, limit int) ([]*domain.Customer, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+customerColumns+` FROM customers
		WHERE name LIKE ? COLLATE NOCASE ORDER BY name LIMIT ?`,
		"%"+query+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// CountOrdersForCustomer counts orders placed by the customer.
func (s *Store) CountOrdersForCustomer(ctx context.Context, customerID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE customer_id = ?`, customerID).Scan(&count)
	return count, err
}
