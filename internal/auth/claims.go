package auth

import (
	"context"
	"time"

	"github.com/mughouse/mughouse-server/internal/domain"
)

// AccessClaims represents the claims stored in a PASETO access token.
// They are encrypted in v4.local tokens, so not readable without the key.
type AccessClaims struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`

	// Standard PASETO claims
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// IsAdmin reports whether the token belongs to a full administrator.
func (c *AccessClaims) IsAdmin() bool {
	return c.Role == domain.RoleAdmin
}

// contextKey is a private type for request context keys.
type contextKey struct{}

var claimsContextKey contextKey

// ContextWithClaims returns a context carrying the verified access claims.
// Auth middleware calls this after token verification.
func ContextWithClaims(ctx context.Context, claims *AccessClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext extracts the verified access claims, if present.
func ClaimsFromContext(ctx context.Context) (*AccessClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*AccessClaims)
	return claims, ok
}
