package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// EventRecord stores one raw payment provider event for idempotent ingestion.
// The (provider, provider_event_id) pair is unique so redelivered webhooks
// collapse into a single row.
type EventRecord struct {
	ID              snowflake.ID   `gorm:"primaryKey" json:"id"`
	Provider        string         `gorm:"not null" json:"provider"`
	ProviderEventID string         `gorm:"column:provider_event_id;not null" json:"provider_event_id"`
	ReferralID      *string        `gorm:"column:referral_id" json:"referral_id,omitempty"`
	Payload         datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'" json:"-"`
	ReceivedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"received_at"`
}

// TableName sets the database table name.
func (EventRecord) TableName() string { return "payment_events" }
