package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/mughouse/mughouse-server/internal/domain"
	"github.com/mughouse/mughouse-server/internal/store"
)

const sessionColumns = `id, user_id, refresh_token_hash, created_at, last_used_at, expires_at`

func scanSession(scanner interface{ Scan(dest ...any) error }) (*domain.Session, error) {
	var s domain.Session

	var (
		createdAt  string
		lastUsedAt string
		expiresAt  string
	)

	err := scanner.Scan(
		&s.ID,
		&s.UserID,
		&s.RefreshTokenHash,
		&createdAt,
		&lastUsedAt,
		&expiresAt,
	)
	if err != nil {
		return nil, err
	}

	s.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	s.LastUsedAt, err = parseTime(lastUsedAt)
	if err != nil {
		return nil, err
	}
	s.ExpiresAt, err = parseTime(expiresAt)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// CreateSession inserts a refresh-token session.
func (s *Store) CreateSession(ctx context.Context, sess *domain.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, refresh_token_hash, created_at, last_used_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID,
		sess.UserID,
		sess.RefreshTokenHash,
		formatTime(sess.CreatedAt),
		formatTime(sess.LastUsedAt),
		formatTime(sess.ExpiresAt),
	)
	return err
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)

	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// GetSessionByRefreshToken retrieves a session by refresh token hash.
func (s *Store) GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE refresh_token_hash = ?`, tokenHash)

	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// UpdateSession persists rotation of the refresh token and usage timestamps.
func (s *Store) UpdateSession(ctx context.Context, sess *domain.Session) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE sessions
		SET refresh_token_hash = ?, last_used_at = ?, expires_at = ?
		WHERE id = ?`,
		sess.RefreshTokenHash,
		formatTime(sess.LastUsedAt),
		formatTime(sess.ExpiresAt),
		sess.ID,
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

// DeleteSession removes a session.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
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

// DeleteAllUserSessions removes every session for a user.
func (s *Store) DeleteAllUserSessions(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

// DeleteExpiredSessions removes sessions past their expiry and returns the
// number deleted.
func (s *Store) DeleteExpiredSessions(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`, formatTime(time.Now()))
	if err != nil {
		return 0, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}

// ListUserSessions returns a user's sessions, newest first.
func (s *Store) ListUserSessions(ctx context.Context, userID string) ([]*domain.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}
