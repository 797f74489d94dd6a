package sqlite

import (
	"context"
	"database/sql"
	"encoding/json/v2"
	"fmt"
	"strings"
	"time"

	"github.com/mughouse/mughouse-server/internal/domain"
	"github.com/mughouse/mughouse-server/internal/store"
)

// orderColumns is the ordered list of columns selected in order queries.
// Must match the scan order in scanOrder.
const orderColumns = `id, created_at, updated_at, customer_id, status, note`

// scanOrder scans a sql.Row (or sql.Rows via its Scan method) into a domain.Order.
func scanOrder(scanner interface{ Scan(dest ...any) error }) (*domain.Order, error) {
	var o domain.Order

	var (
		createdAt string
		updatedAt string
		status    string
		note      sql.NullString
	)

	err := scanner.Scan(
		&o.ID,
		&createdAt,
		&updatedAt,
		&o.CustomerID,
		&status,
		&note,
	)
	if err != nil {
		return nil, err
	}

	o.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	o.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	o.Status = domain.OrderStatus(status)
	if note.Valid {
		o.Note = note.String
	}

	return &o, nil
}

// scanOrderItem scans an order line, decoding the embedded snapshot JSON.
func scanOrderItem(scanner interface{ Scan(dest ...any) error }) (*domain.OrderItem, error) {
	var item domain.OrderItem

	var (
		snapshot  string
		createdAt string
	)

	err := scanner.Scan(
		&item.ID,
		&item.OrderID,
		&item.ProductID,
		&item.Quantity,
		&item.UnitPrice,
		&snapshot,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	item.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(snapshot), &item.Snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot for order item %s: %w", item.ID, err)
	}

	return &item, nil
}

// CreateOrder inserts an order and all of its lines in one transaction.
// Line snapshots are serialized as written; they are never updated afterwards.
func (s *Store) CreateOrder(ctx context.Context, o *domain.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, created_at, updated_at, customer_id, status, note)
		VALUES (?, ?, ?, ?, ?, ?)`,
		o.ID,
		formatTime(o.CreatedAt),
		formatTime(o.UpdatedAt),
		o.CustomerID,
		string(o.Status),
		nullString(o.Note),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	for _, item := range o.Items {
		snapshot, err := json.Marshal(item.Snapshot)
		if err != nil {
			return fmt.Errorf("encode snapshot for product %s: %w", item.ProductID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, snapshot, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			item.ID,
			o.ID,
			item.ProductID,
			item.Quantity,
			item.UnitPrice,
			string(snapshot),
			formatTime(item.CreatedAt),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetOrder retrieves an order with its lines.
// Returns store.ErrNotFound if the order does not exist.
func (s *Store) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)

	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price, snapshot, created_at
		FROM order_items WHERE order_id = ? ORDER BY created_at, id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}
	return o, rows.Err()
}

// UpdateOrderStatus moves an order to a new fulfillment status. Lines are
// write-once and have no update path.
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), formatTime(time.Now()), id)
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

// ListOrders returns a filtered page of orders, newest first. Lines are not
// attached on list reads.
func (s *Store) ListOrders(ctx context.Context, filter store.OrderFilter, params store.PaginationParams) (*store.PaginatedResult[*domain.Order], error) {
	params.Validate()

	where := []string{"1=1"}
	var args []any
	if filter.CustomerID != "" {
		where = append(where, "customer_id = ?")
		args = append(args, filter.CustomerID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	cond := strings.Join(where, " AND ")

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE `+cond, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE `+cond+
			` ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		append(args, params.Limit, params.Offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &store.PaginatedResult[*domain.Order]{
		Items:   orders,
		Total:   total,
		HasMore: params.Offset+len(orders) < total,
	}, nil
}
