// Path: internal/services/auth_service.go
package services

import (
	"context"
	"net/http"

	"securebank/internal/models"
)

// AuthService talks to the authentication endpoints.
type AuthService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Me(ctx context.Context) (*models.User, error)
}

type authService struct {
	client *Client
}

// NewAuthService creates a new AuthService.
func NewAuthService(client *Client) AuthService {
	return &authService{client: client}
}

// Login exchanges credentials for a token. The request never carries a
// bearer token of its own.
func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	err := s.client.do(ctx, request{method: http.MethodPost, path: "/auth/login", body: req, public: true}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a user. The server may answer with the new user or with
// no data at all; a nil user is not an error.
func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	var out *models.User
	err := s.client.do(ctx, request{method: http.MethodPost, path: "/auth/register", body: req, public: true}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *authService) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := s.client.do(ctx, request{method: http.MethodGet, path: "/auth/me"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
