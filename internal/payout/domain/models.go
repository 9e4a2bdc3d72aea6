// Package domain contains the broker payout ledger and its event model.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// CommissionModel selects how a broker earns on referred customers.
type CommissionModel string

const (
	// CommissionModelBounty pays a fixed amount once per referred customer.
	CommissionModelBounty CommissionModel = "BOUNTY"
	// CommissionModelRecurring pays a fixed amount per qualifying customer payment.
	CommissionModelRecurring CommissionModel = "RECURRING"
)

// ReferralStatus is the lifecycle state of a referral relationship. It is
// re-evaluated per report: every event under a referral carries the
// referral's current status at snapshot time.
type ReferralStatus string

const (
	ReferralStatusActive   ReferralStatus = "ACTIVE"
	ReferralStatusCanceled ReferralStatus = "CANCELED"
)

const (
	// DefaultHoldPeriodDays is the maturity window before an earned
	// commission becomes payable.
	DefaultHoldPeriodDays = 60
	// DefaultBountyAmountCents is the one-time bounty per referred customer.
	DefaultBountyAmountCents int64 = 50000
	// DefaultRecurringAmountCents is the per-payment recurring commission.
	DefaultRecurringAmountCents int64 = 2500
)

// PayoutPolicy carries the commission agreement constants. These are policy
// values, never derived from event data.
type PayoutPolicy struct {
	HoldPeriodDays       int
	BountyAmountCents    int64
	RecurringAmountCents int64
}

// DefaultPolicy returns the standard commission agreement.
func DefaultPolicy() PayoutPolicy {
	return PayoutPolicy{
		HoldPeriodDays:       DefaultHoldPeriodDays,
		BountyAmountCents:    DefaultBountyAmountCents,
		RecurringAmountCents: DefaultRecurringAmountCents,
	}
}

func (p PayoutPolicy) withDefaults() PayoutPolicy {
	defaults := DefaultPolicy()
	if p.HoldPeriodDays <= 0 {
		p.HoldPeriodDays = defaults.HoldPeriodDays
	}
	if p.BountyAmountCents <= 0 {
		p.BountyAmountCents = defaults.BountyAmountCents
	}
	if p.RecurringAmountCents <= 0 {
		p.RecurringAmountCents = defaults.RecurringAmountCents
	}
	return p
}

// HoldPeriod returns the maturity window as a duration.
func (p PayoutPolicy) HoldPeriod() time.Duration {
	return time.Duration(p.HoldPeriodDays) * 24 * time.Hour
}

// AmountFor returns the fixed commission amount for a model under this policy.
func (p PayoutPolicy) AmountFor(model CommissionModel) int64 {
	if model == CommissionModelBounty {
		return p.BountyAmountCents
	}
	return p.RecurringAmountCents
}

// EarningEvent is one commission-bearing fact: a referred customer's payment
// credited a fixed amount to the broker on a given date.
type EarningEvent struct {
	ReferralID        string          `json:"referral_id"`
	BrokerID          snowflake.ID    `json:"broker_id"`
	CustomerEmail     string          `json:"customer_email"`
	CustomerPaymentID string          `json:"customer_payment_id"`
	CommissionModel   CommissionModel `json:"commission_model"`
	AmountCents       int64           `json:"amount_cents"`
	PaymentDate       time.Time       `json:"payment_date"`
	Status            ReferralStatus  `json:"status"`
	PaidAt            *time.Time      `json:"paid_at,omitempty"`
}

// CustomerKey is the canonical per-customer grouping key: the payment
// processor customer ID when present, otherwise the lowercased email.
func (e EarningEvent) CustomerKey() string {
	if key := strings.TrimSpace(e.CustomerPaymentID); key != "" {
		return key
	}
	return strings.ToLower(strings.TrimSpace(e.CustomerEmail))
}

// CustomerBreakdown is one customer's share of a broker snapshot. For ACTIVE
// customers earned == paid + due_now + on_hold; for CANCELED customers the
// due and hold buckets are zero and earned equals paid.
type CustomerBreakdown struct {
	CustomerEmail     string         `json:"customer_email"`
	CustomerPaymentID string         `json:"customer_payment_id,omitempty"`
	Status            ReferralStatus `json:"status"`
	EarnedCents       int64          `json:"earned_cents"`
	PaidCents         int64          `json:"paid_cents"`
	DueNowCents       int64          `json:"due_now_cents"`
	OnHoldCents       int64          `json:"on_hold_cents"`
}

// LedgerSnapshot is the full payout position of one broker as of GeneratedAt.
type LedgerSnapshot struct {
	BrokerID        snowflake.ID                 `json:"broker_id"`
	BrokerName      string                       `json:"broker_name"`
	BrokerEmail     string                       `json:"broker_email"`
	CommissionModel CommissionModel              `json:"commission_model"`
	EarnedCents     int64                        `json:"earned_cents"`
	PaidCents       int64                        `json:"paid_cents"`
	DueNowCents     int64                        `json:"due_now_cents"`
	OnHoldCents     int64                        `json:"on_hold_cents"`
	NextPayoutDate  *time.Time                   `json:"next_payout_date,omitempty"`
	Customers       map[string]CustomerBreakdown `json:"customers"`
	GeneratedAt     time.Time                    `json:"generated_at"`
}
