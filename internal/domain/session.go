package domain

import "time"

// Session is a refresh-token session for an admin user.
// Only a hash of the refresh token is stored.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	LastUsedAt       time.Time `json:"last_used_at"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
