package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mughouse/mughouse-server/internal/domain"
	"github.com/mughouse/mughouse-server/internal/store"
)

const userColumns = `id, created_at, updated_at, email, display_name, password_hash, role`

func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var u domain.User

	var (
		createdAt string
		updatedAt string
		role      string
	)

	err := scanner.Scan(
		&u.ID,
		&createdAt,
		&updatedAt,
		&u.Email,
		&u.DisplayName,
		&u.PasswordHash,
		&role,
	)
	if err != nil {
		return nil, err
	}

	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	u.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)

	return &u, nil
}

// CreateUser inserts a new admin user.
// Returns store.ErrAlreadyExists if the email is taken.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, created_at, updated_at, email, display_name, password_hash, role)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		formatTime(u.CreatedAt),
		formatTime(u.UpdatedAt),
		u.Email,
		u.DisplayName,
		u.PasswordHash,
		string(u.Role),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email, case-insensitive.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? COLLATE NOCASE`, email)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateUser persists all mutable user fields.
func (s *Store) UpdateUser(ctx context.Context, u *domain.User) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET updated_at = ?, email = ?, display_name = ?, password_hash = ?, role = ?
		WHERE id = ?`,
		formatTime(u.UpdatedAt),
		u.Email,
		u.DisplayName,
		u.PasswordHash,
		string(u.Role),
		u.ID,
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

// ListUsers returns all users ordered by display name.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY display_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountUsers counts registered users. A zero count means first-run setup.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}
