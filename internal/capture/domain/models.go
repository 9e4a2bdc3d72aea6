package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Lead is a marketing site signup captured before any broker relationship
// exists.
type Lead struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	Email     string            `gorm:"not null;index" json:"email"`
	Name      string            `json:"name,omitempty"`
	Company   string            `json:"company,omitempty"`
	Source    string            `json:"source,omitempty"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Lead) TableName() string { return "leads" }

// PageView records one marketing site page hit.
type PageView struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Path      string       `gorm:"not null" json:"path"`
	Referrer  string       `json:"referrer,omitempty"`
	VisitorID string       `gorm:"column:visitor_id" json:"visitor_id,omitempty"`
	UserAgent string       `gorm:"column:user_agent" json:"-"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (PageView) TableName() string { return "page_views" }
