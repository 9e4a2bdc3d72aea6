package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Service exposes broker payout reporting and disbursement.
type Service interface {
	// BrokerSnapshot loads the broker's events, builds a fresh ledger and
	// returns its snapshot as of now.
	BrokerSnapshot(ctx context.Context, brokerID string, now time.Time) (LedgerSnapshot, error)
	// Disburse marks every currently due event paid and records the payout.
	Disburse(ctx context.Context, brokerID string, now time.Time) (*Payout, error)
}

var (
	ErrInvalidBroker  = errors.New("invalid_broker")
	ErrBrokerNotFound = errors.New("broker_not_found")
	ErrNothingDue     = errors.New("nothing_due")
)

// Payout records one disbursement of due commissions to a broker.
type Payout struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	BrokerID    snowflake.ID `gorm:"not null;index" json:"broker_id"`
	AmountCents int64        `gorm:"not null" json:"amount_cents"`
	EventCount  int          `gorm:"not null" json:"event_count"`
	PaidAt      time.Time    `gorm:"not null" json:"paid_at"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (Payout) TableName() string { return "payouts" }
