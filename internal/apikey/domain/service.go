package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// IssuedKey pairs a stored key with its plaintext, returned exactly once.
type IssuedKey struct {
	Key      APIKey `json:"key"`
	Material string `json:"material"`
}

type Service interface {
	// Issue mints a new key and returns the plaintext material. The
	// plaintext is never stored and cannot be recovered later.
	Issue(ctx context.Context, userID *snowflake.ID, name string) (*IssuedKey, error)
	Revoke(ctx context.Context, id string) error
	List(ctx context.Context) ([]APIKey, error)
}

var (
	ErrInvalidName  = errors.New("invalid_key_name")
	ErrInvalidKeyID = errors.New("invalid_key_id")
	ErrKeyNotFound  = errors.New("key_not_found")
	ErrKeyRevoked   = errors.New("key_revoked")
)
