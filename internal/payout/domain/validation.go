package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidEarningEvent marks events that violate the ledger's structural
// invariants. Validation is the ingestion layer's responsibility; the ledger
// itself never rejects input.
var ErrInvalidEarningEvent = errors.New("invalid_earning_event")

// ValidateEvent fails fast on out-of-invariant events so a malformed record
// surfaces as a named error instead of a silent miscalculation.
func ValidateEvent(event EarningEvent) error {
	if strings.TrimSpace(event.ReferralID) == "" {
		return fmt.Errorf("%w: missing referral id", ErrInvalidEarningEvent)
	}
	if event.BrokerID == 0 {
		return fmt.Errorf("%w: missing broker id", ErrInvalidEarningEvent)
	}
	if event.CustomerKey() == "" {
		return fmt.Errorf("%w: missing customer identity", ErrInvalidEarningEvent)
	}
	switch event.CommissionModel {
	case CommissionModelBounty, CommissionModelRecurring:
	default:
		return fmt.Errorf("%w: unknown commission model %q", ErrInvalidEarningEvent, event.CommissionModel)
	}
	switch event.Status {
	case ReferralStatusActive, ReferralStatusCanceled:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidEarningEvent, event.Status)
	}
	if event.AmountCents < 0 {
		return fmt.Errorf("%w: negative amount %d", ErrInvalidEarningEvent, event.AmountCents)
	}
	if event.PaymentDate.IsZero() {
		return fmt.Errorf("%w: missing payment date", ErrInvalidEarningEvent)
	}
	if event.PaidAt != nil && event.PaidAt.Before(event.PaymentDate) {
		return fmt.Errorf("%w: paid_at precedes payment_date", ErrInvalidEarningEvent)
	}
	return nil
}
