package domain

import (
	"errors"
	"testing"
	"time"
)

func validEvent() EarningEvent {
	return EarningEvent{
		ReferralID:        "3f6c1c2a-6d1e-4ce5-9f3e-1a2b3c4d5e6f",
		BrokerID:          7,
		CustomerEmail:     "customer@test.io",
		CustomerPaymentID: "cus_123",
		CommissionModel:   CommissionModelBounty,
		AmountCents:       DefaultBountyAmountCents,
		PaymentDate:       time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC),
		Status:            ReferralStatusActive,
	}
}

func TestValidateEventAccepts(t *testing.T) {
	if err := ValidateEvent(validEvent()); err != nil {
		t.Fatalf("expected valid event, got %v", err)
	}
}

func TestValidateEventRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*EarningEvent)
	}{
		{"missing referral id", func(e *EarningEvent) { e.ReferralID = " " }},
		{"missing broker id", func(e *EarningEvent) { e.BrokerID = 0 }},
		{"missing customer identity", func(e *EarningEvent) {
			e.CustomerEmail = ""
			e.CustomerPaymentID = ""
		}},
		{"unknown commission model", func(e *EarningEvent) { e.CommissionModel = "FLAT" }},
		{"unknown status", func(e *EarningEvent) { e.Status = "PAUSED" }},
		{"negative amount", func(e *EarningEvent) { e.AmountCents = -1 }},
		{"zero payment date", func(e *EarningEvent) { e.PaymentDate = time.Time{} }},
		{"paid before payment", func(e *EarningEvent) {
			early := e.PaymentDate.Add(-time.Hour)
			e.PaidAt = &early
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			event := validEvent()
			tc.mutate(&event)
			err := ValidateEvent(event)
			if !errors.Is(err, ErrInvalidEarningEvent) {
				t.Fatalf("expected ErrInvalidEarningEvent, got %v", err)
			}
		})
	}
}

func TestValidateEventAllowsZeroAmount(t *testing.T) {
	event := validEvent()
	event.AmountCents = 0
	if err := ValidateEvent(event); err != nil {
		t.Fatalf("zero amount is non-negative, got %v", err)
	}
}
