// Package domain contains referral relationships and their stored earnings.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	payoutdomain "github.com/smallbiznis/lienclock/internal/payout/domain"
	"gorm.io/datatypes"
)

// Referral ties a referred customer to the broker who sent them. The status
// lives here and is denormalized onto every earning event so a snapshot sees
// one consistent status per referral.
type Referral struct {
	ID                string                       `gorm:"primaryKey;type:text" json:"id"`
	BrokerID          snowflake.ID                 `gorm:"not null;index" json:"broker_id"`
	CustomerEmail     string                       `gorm:"type:text;not null" json:"customer_email"`
	CustomerPaymentID string                       `gorm:"type:text;not null;index" json:"customer_payment_id"`
	CommissionModel   payoutdomain.CommissionModel `gorm:"type:text;not null" json:"commission_model"`
	Status            payoutdomain.ReferralStatus  `gorm:"type:text;not null;default:'ACTIVE'" json:"status"`
	CanceledAt        *time.Time                   `gorm:"column:canceled_at" json:"canceled_at,omitempty"`
	Metadata          datatypes.JSONMap            `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	CreatedAt         time.Time                    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time                    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Referral) TableName() string { return "referrals" }

// EarningRecord is the persisted form of a payout ledger event. Status is
// duplicated from the owning referral; Cancel cascades updates here so the
// two never diverge between snapshots.
type EarningRecord struct {
	ID                snowflake.ID                 `gorm:"primaryKey" json:"id"`
	ReferralID        string                       `gorm:"type:text;not null;index;uniqueIndex:idx_earning_records_bounty_once,where:commission_model = 'BOUNTY'" json:"referral_id"`
	BrokerID          snowflake.ID                 `gorm:"not null;index" json:"broker_id"`
	CustomerEmail     string                       `gorm:"type:text;not null" json:"customer_email"`
	CustomerPaymentID string                       `gorm:"type:text;not null" json:"customer_payment_id"`
	CommissionModel   payoutdomain.CommissionModel `gorm:"type:text;not null" json:"commission_model"`
	AmountCents       int64                        `gorm:"not null" json:"amount_cents"`
	PaymentDate       time.Time                    `gorm:"not null;index" json:"payment_date"`
	Status            payoutdomain.ReferralStatus  `gorm:"type:text;not null;default:'ACTIVE'" json:"status"`
	PaidAt            *time.Time                   `gorm:"column:paid_at" json:"paid_at,omitempty"`
	PayoutID          *snowflake.ID                `gorm:"column:payout_id;index" json:"payout_id,omitempty"`
	CreatedAt         time.Time                    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (EarningRecord) TableName() string { return "earning_records" }

// Event converts the stored record to the ledger's event shape.
func (r EarningRecord) Event() payoutdomain.EarningEvent {
	return payoutdomain.EarningEvent{
		ReferralID:        r.ReferralID,
		BrokerID:          r.BrokerID,
		CustomerEmail:     r.CustomerEmail,
		CustomerPaymentID: r.CustomerPaymentID,
		CommissionModel:   r.CommissionModel,
		AmountCents:       r.AmountCents,
		PaymentDate:       r.PaymentDate,
		Status:            r.Status,
		PaidAt:            r.PaidAt,
	}
}
