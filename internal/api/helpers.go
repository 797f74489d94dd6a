package api

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/mughouse/mughouse-server/internal/auth"
)

// authenticateRequest validates the Authorization header and returns the
// verified token claims.
func (s *Server) authenticateRequest(authHeader string) (*auth.AccessClaims, error) {
	token := bearerToken(authHeader)
	if token == "" {
		return nil, huma.Error401Unauthorized("Missing or malformed authorization header")
	}

	claims, err := s.services.Auth.VerifyAccessToken(token)
	if err != nil {
		return nil, huma.Error401Unauthorized("Invalid or expired token")
	}

	return claims, nil
}

// authenticateAndRequireAdmin validates the token and requires the admin role.
func (s *Server) authenticateAndRequireAdmin(authHeader string) (*auth.AccessClaims, error) {
	claims, err := s.authenticateRequest(authHeader)
	if err != nil {
		return nil, err
	}

	if !claims.IsAdmin() {
		return nil, huma.Error403Forbidden("Admin access required")
	}

	return claims, nil
}
