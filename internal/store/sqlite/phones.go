package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mughouse/mughouse-server/internal/domain"
	"github.com/mughouse/mughouse-server/internal/primary"
	"github.com/mughouse/mughouse-server/internal/store"
)

// phoneColumns is the ordered list of columns selected in phone queries.
// Must match the scan order in scanPhone.
const phoneColumns = `id, customer_id, value, label, is_main, created_at`

// scanPhone scans a sql.Row (or sql.Rows via its Scan method) into a primary.Item.
func scanPhone(scanner interface{ Scan(dest ...any) error }) (*primary.Item, error) {
	var item primary.Item

	var (
		label     sql.NullString
		isMain    int
		createdAt string
	)

	err := scanner.Scan(
		&item.ID,
		&item.OwnerID,
		&item.Value,
		&label,
		&isMain,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	item.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	if label.Valid {
		item.Label = label.String
	}
	item.Main = isMain != 0

	return &item, nil
}

// phoneFromItem converts a coordinator item into the domain phone shape.
func phoneFromItem(item primary.Item) *domain.PhoneNumber {
	p := &domain.PhoneNumber{
		CustomerID: item.OwnerID,
		Value:      item.Value,
		Label:      item.Label,
		IsMain:     item.Main,
	}
	p.ID = item.ID
	p.CreatedAt = item.CreatedAt
	p.UpdatedAt = item.CreatedAt
	return p
}

// Phones returns the transaction runner the primary coordinator mutates
// phone rows through. Every coordinator operation runs on one *sql.Tx, so
// the exactly-one-main invariant is never visible half-applied.
func (s *Store) Phones() primary.Runner {
	return &phoneRunner{db: s.db}
}

// ListPhones returns a customer's phones ordered by creation, oldest first.
func (s *Store) ListPhones(ctx context.Context, customerID string) ([]primary.Item, error) {
	return listPhones(ctx, s.db, customerID)
}

// GetPhone retrieves a single phone by ID.
// Returns store.ErrNotFound if the phone does not exist.
func (s *Store) GetPhone(ctx context.Context, phoneID string) (*primary.Item, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+phoneColumns+` FROM customer_phones WHERE id = ?`, phoneID)
	item, err := scanPhone(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func listPhones(ctx context.Context, q querier, customerID string) ([]primary.Item, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+phoneColumns+` FROM customer_phones
		WHERE customer_id = ? ORDER BY created_at, id`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []primary.Item
	for rows.Next() {
		item, err := scanPhone(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// phoneRunner executes coordinator mutations inside one database transaction.
type phoneRunner struct {
	db *sql.DB
}

func (r *phoneRunner) InTx(ctx context.Context, fn func(tx primary.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin phone tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&phoneTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

// phoneTx is the transactional view over customer_phones.
type phoneTx struct {
	tx *sql.Tx
}

func (t *phoneTx) OwnerExists(ctx context.Context, ownerID string) (bool, error) {
	var count int
	err := t.tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM customers WHERE id = ?`, ownerID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (t *phoneTx) ListByOwner(ctx context.Context, ownerID string) ([]primary.Item, error) {
	return listPhones(ctx, t.tx, ownerID)
}

func (t *phoneTx) Get(ctx context.Context, itemID string) (*primary.Item, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+phoneColumns+` FROM customer_phones WHERE id = ?`, itemID)
	item, err := scanPhone(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (t *phoneTx) Insert(ctx context.Context, item *primary.Item) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO customer_phones (id, customer_id, value, label, is_main, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.OwnerID,
		item.Value,
		nullString(item.Label),
		boolToInt(item.Main),
		formatTime(item.CreatedAt),
	)
	return err
}

func (t *phoneTx) SetMain(ctx context.Context, itemID string, main bool) error {
	result, err := t.tx.ExecContext(ctx,
		`UPDATE customer_phones SET is_main = ? WHERE id = ?`,
		boolToInt(main), itemID)
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

func (t *phoneTx) UpdateValues(ctx context.Context, itemID, value, label string) error {
	result, err := t.tx.ExecContext(ctx,
		`UPDATE customer_phones SET value = ?, label = ? WHERE id = ?`,
		value, nullString(label), itemID)
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

func (t *phoneTx) Delete(ctx context.Context, itemID string) error {
	result, err := t.tx.ExecContext(ctx,
		`DELETE FROM customer_phones WHERE id = ?`, itemID)
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
