package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// BrokerLedger accumulates one broker's earning events and derives a payout
// snapshot. An instance is built fresh per report from freshly loaded events
// and discarded afterwards; it is not safe for concurrent use and is never
// shared across requests.
type BrokerLedger struct {
	brokerID        snowflake.ID
	brokerName      string
	brokerEmail     string
	commissionModel CommissionModel
	policy          PayoutPolicy

	events   []EarningEvent
	keyOrder []string
	byKey    map[string][]int
}

// NewBrokerLedger constructs an empty ledger for one broker. A zero policy
// falls back to the default commission agreement.
func NewBrokerLedger(
	brokerID snowflake.ID,
	brokerName string,
	brokerEmail string,
	model CommissionModel,
	policy PayoutPolicy,
) *BrokerLedger {
	return &BrokerLedger{
		brokerID:        brokerID,
		brokerName:      brokerName,
		brokerEmail:     brokerEmail,
		commissionModel: model,
		policy:          policy.withDefaults(),
		byKey:           make(map[string][]int),
	}
}

// AddEvent appends an event to the ledger and indexes it by customer key.
// Structural validation is the caller's concern; AddEvent never fails.
func (l *BrokerLedger) AddEvent(event EarningEvent) {
	key := event.CustomerKey()
	if _, seen := l.byKey[key]; !seen {
		l.keyOrder = append(l.keyOrder, key)
	}
	l.byKey[key] = append(l.byKey[key], len(l.events))
	l.events = append(l.events, event)
}

// Len reports the number of accumulated events.
func (l *BrokerLedger) Len() int { return len(l.events) }

// Snapshot derives the payout position as of the given evaluation time.
//
// Bucket rules, applied per event:
//   - paid_at set: the amount is paid, regardless of age or status.
//   - referral CANCELED and unpaid: excluded entirely; cancellation freezes
//     future liability but never un-pays disbursed amounts.
//   - otherwise due now when now - payment_date >= hold period (boundary
//     inclusive), on hold before that.
//
// Snapshot is total: any well-formed event set yields a complete snapshot,
// and an empty ledger yields a zero-valued one with no next payout date.
func (l *BrokerLedger) Snapshot(now time.Time) LedgerSnapshot {
	snapshot := LedgerSnapshot{
		BrokerID:        l.brokerID,
		BrokerName:      l.brokerName,
		BrokerEmail:     l.brokerEmail,
		CommissionModel: l.commissionModel,
		Customers:       make(map[string]CustomerBreakdown, len(l.byKey)),
		GeneratedAt:     now,
	}

	hold := l.policy.HoldPeriod()
	var nextPayout *time.Time

	for _, key := range l.keyOrder {
		breakdown := CustomerBreakdown{Status: ReferralStatusActive}
		for _, idx := range l.byKey[key] {
			event := l.events[idx]
			if breakdown.CustomerEmail == "" {
				breakdown.CustomerEmail = event.CustomerEmail
			}
			if breakdown.CustomerPaymentID == "" {
				breakdown.CustomerPaymentID = event.CustomerPaymentID
			}
			if event.Status == ReferralStatusCanceled {
				breakdown.Status = ReferralStatusCanceled
			}

			switch {
			case event.PaidAt != nil:
				breakdown.PaidCents += event.AmountCents
				breakdown.EarnedCents += event.AmountCents
			case event.Status == ReferralStatusCanceled:
				// Frozen: neither collected nor owed.
			case now.Sub(event.PaymentDate) >= hold:
				breakdown.DueNowCents += event.AmountCents
				breakdown.EarnedCents += event.AmountCents
			default:
				breakdown.OnHoldCents += event.AmountCents
				breakdown.EarnedCents += event.AmountCents

				eligible := event.PaymentDate.Add(hold)
				if nextPayout == nil || eligible.Before(*nextPayout) {
					next := eligible
					nextPayout = &next
				}
			}
		}

		snapshot.Customers[key] = breakdown
		snapshot.EarnedCents += breakdown.EarnedCents
		snapshot.PaidCents += breakdown.PaidCents
		snapshot.DueNowCents += breakdown.DueNowCents
		snapshot.OnHoldCents += breakdown.OnHoldCents
	}

	snapshot.NextPayoutDate = nextPayout
	return snapshot
}
