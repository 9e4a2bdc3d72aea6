// Package domain contains the broker entity and its service contract.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	payoutdomain "github.com/smallbiznis/lienclock/internal/payout/domain"
)

// Broker is a referral partner. A broker is single-model: every referral it
// owns earns under the same commission model.
type Broker struct {
	ID              snowflake.ID                 `gorm:"primaryKey" json:"id"`
	Name            string                       `gorm:"type:text;not null" json:"name"`
	Email           string                       `gorm:"type:text;not null;uniqueIndex" json:"email"`
	CommissionModel payoutdomain.CommissionModel `gorm:"type:text;not null" json:"commission_model"`
	CreatedAt       time.Time                    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time                    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Broker) TableName() string { return "brokers" }
