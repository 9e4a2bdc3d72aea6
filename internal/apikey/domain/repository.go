package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, key *APIKey) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*APIKey, error)
	FindByHash(ctx context.Context, db *gorm.DB, keyHash string) (*APIKey, error)
	List(ctx context.Context, db *gorm.DB) ([]APIKey, error)
	Revoke(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	TouchLastUsed(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
