package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mughouse/mughouse-server/internal/domain"
	"github.com/mughouse/mughouse-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "setupStatus",
		Method:      http.MethodGet,
		Path:        "/api/v1/auth/setup",
		Summary:     "Setup status",
		Description: "Reports whether the first admin account still needs to be created",
		Tags:        []string{"Authentication"},
	}, s.handleSetupStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "setup",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/setup",
		Summary:     "Initial server setup",
		Description: "Creates the first admin user. Can only be called once.",
		Tags:        []string{"Authentication"},
	}, s.handleSetup)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "User login",
		Description: "Authenticates a user and returns access and refresh tokens",
		Tags:        []string{"Authentication"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "refresh",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/refresh",
		Summary:     "Refresh tokens",
		Description: "Exchanges a refresh token for a rotated token pair",
		Tags:        []string{"Authentication"},
	}, s.handleRefresh)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/logout",
		Summary:     "Logout",
		Description: "Revokes the session behind the presented refresh token",
		Tags:        []string{"Authentication"},
	}, s.handleLogout)

	huma.Register(s.api, huma.Operation{
		OperationID: "logoutAll",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/logout-all",
		Summary:     "Logout everywhere",
		Description: "Revokes all sessions of the authenticated user",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleLogoutAll)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Current user",
		Description: "Returns the authenticated user's account",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)
}

// === DTOs ===

type SetupStatusResponse struct {
	SetupRequired bool `json:"setup_required" doc:"True until the first admin account exists"`
}

type SetupStatusOutput struct {
	Body SetupStatusResponse
}

type SetupRequest struct {
	Email       string `json:"email" validate:"required,email" doc:"Admin email address"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=100" doc:"Admin display name"`
	Password    string `json:"password" validate:"required,min=8,max=128" doc:"Admin password"`
}

type SetupInput struct {
	Body          SetupRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" doc:"User email"`
	Password string `json:"password" validate:"required" doc:"User password"`
}

type LoginInput struct {
	Body          LoginRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required" doc:"Refresh token"`
}

type RefreshInput struct {
	Body          RefreshRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" doc:"Refresh token to revoke"`
}

type LogoutInput struct {
	Body LogoutRequest
}

type LogoutAllInput struct {
	Authorization string `header:"Authorization"`
}

type GetCurrentUserInput struct {
	Authorization string `header:"Authorization"`
}

type UserResponse struct {
	ID          string    `json:"id" doc:"User ID"`
	Email       string    `json:"email" doc:"User email"`
	DisplayName string    `json:"display_name" doc:"Display name"`
	Role        string    `json:"role" doc:"User role (admin, staff)"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update timestamp"`
}

type UserOutput struct {
	Body UserResponse
}

type AuthResponse struct {
	AccessToken  string       `json:"access_token" doc:"PASETO access token"`
	RefreshToken string       `json:"refresh_token" doc:"Refresh token"`
	TokenType    string       `json:"token_type" doc:"Token type (Bearer)"`
	ExpiresAt    time.Time    `json:"expires_at" doc:"Access token expiry"`
	User         UserResponse `json:"user" doc:"Authenticated user"`
}

type AuthOutput struct {
	Body AuthResponse
}

// MessageResponse contains a simple message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps the message response for huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleSetupStatus(ctx context.Context, _ *struct{}) (*SetupStatusOutput, error) {
	required, err := s.services.Auth.SetupRequired(ctx)
	if err != nil {
		return nil, err
	}

	return &SetupStatusOutput{Body: SetupStatusResponse{SetupRequired: required}}, nil
}

func (s *Server) handleSetup(ctx context.Context, input *SetupInput) (*AuthOutput, error) {
	if !s.authRateLimiter.Allow(extractIP(input.XForwardedFor, input.XRealIP)) {
		return nil, huma.Error429TooManyRequests("Too many requests. Please try again later.")
	}

	u, pair, err := s.services.Auth.Setup(ctx, service.SetupRequest{
		Email:       input.Body.Email,
		DisplayName: input.Body.DisplayName,
		Password:    input.Body.Password,
	})
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(u, pair)}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	if !s.authRateLimiter.Allow(extractIP(input.XForwardedFor, input.XRealIP)) {
		return nil, huma.Error429TooManyRequests("Too many requests. Please try again later.")
	}

	u, pair, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(u, pair)}, nil
}

func (s *Server) handleRefresh(ctx context.Context, input *RefreshInput) (*AuthOutput, error) {
	if !s.authRateLimiter.Allow(extractIP(input.XForwardedFor, input.XRealIP)) {
		return nil, huma.Error429TooManyRequests("Too many requests. Please try again later.")
	}

	u, pair, err := s.services.Auth.Refresh(ctx, input.Body.RefreshToken)
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(u, pair)}, nil
}

func (s *Server) handleLogout(ctx context.Context, input *LogoutInput) (*MessageOutput, error) {
	if err := s.services.Auth.Logout(ctx, input.Body.RefreshToken); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Logged out successfully"}}, nil
}

func (s *Server) handleLogoutAll(ctx context.Context, input *LogoutAllInput) (*MessageOutput, error) {
	claims, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Auth.LogoutAll(ctx, claims.UserID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "All sessions revoked"}}, nil
}

func (s *Server) handleGetCurrentUser(ctx context.Context, input *GetCurrentUserInput) (*UserOutput, error) {
	claims, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	u, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		return nil, huma.Error401Unauthorized("User not found")
	}

	return &UserOutput{Body: mapUserResponse(u)}, nil
}

// === Mappers ===

func mapUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func mapAuthResponse(u *domain.User, pair *service.TokenPair) AuthResponse {
	return AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    pair.ExpiresAt,
		User:         mapUserResponse(u),
	}
}
