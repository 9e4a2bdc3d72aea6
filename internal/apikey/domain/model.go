package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/bwmarrin/snowflake"
)

const keyPrefix = "lc_"

// APIKey grants programmatic access to the admin API. Only the SHA-256 hash
// of the key material is stored.
type APIKey struct {
	ID         snowflake.ID  `gorm:"primaryKey" json:"id"`
	UserID     *snowflake.ID `gorm:"column:user_id" json:"user_id,omitempty"`
	Name       string        `gorm:"not null" json:"name"`
	KeyHash    string        `gorm:"column:key_hash;not null;uniqueIndex" json:"-"`
	LastUsedAt *time.Time    `gorm:"column:last_used_at" json:"last_used_at,omitempty"`
	RevokedAt  *time.Time    `gorm:"column:revoked_at" json:"revoked_at,omitempty"`
	CreatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (APIKey) TableName() string { return "api_keys" }

// Active reports whether the key may authenticate requests.
func (k APIKey) Active() bool {
	return k.RevokedAt == nil
}

// GenerateKey returns new key material in its presentable form.
func GenerateKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return keyPrefix + hex.EncodeToString(buf), nil
}

// HashAPIKey returns the hex SHA-256 digest of the key material.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
