package domain

import (
	"context"
	"errors"

	apikeydomain "github.com/smallbiznis/lienclock/internal/apikey/domain"
)

// LoginRequest authenticates an admin user with email and password.
type LoginRequest struct {
	Email    string
	Password string
}

type Service interface {
	// Login verifies the credentials and issues a fresh API key.
	Login(ctx context.Context, req LoginRequest) (*apikeydomain.IssuedKey, error)
}

var (
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrInvalidCredentials = errors.New("invalid_credentials")
)
