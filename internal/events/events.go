package events

// Payout event types stored in the outbox for downstream consumers
// (dashboard rollups, broker notification emails).
const (
	EventReferralCreated    = "referral.created"
	EventCommissionRecorded = "commission.recorded"
	EventPayoutDisbursed    = "payout.disbursed"
	EventLeadCaptured       = "lead.captured"
)

// ReferralPayload captures the minimal data needed to follow up a referral event.
type ReferralPayload struct {
	ReferralID string `json:"referral_id"`
	BrokerID   string `json:"broker_id"`
}

// ToMap converts the payload into an outbox-friendly map.
func (p ReferralPayload) ToMap() map[string]any {
	return map[string]any{
		"referral_id": p.ReferralID,
		"broker_id":   p.BrokerID,
	}
}

// CommissionPayload captures one recorded commission.
type CommissionPayload struct {
	EarningRecordID string `json:"earning_record_id"`
	ReferralID      string `json:"referral_id"`
	BrokerID        string `json:"broker_id"`
	AmountCents     int64  `json:"amount_cents"`
}

// ToMap converts the payload into an outbox-friendly map.
func (p CommissionPayload) ToMap() map[string]any {
	return map[string]any{
		"earning_record_id": p.EarningRecordID,
		"referral_id":       p.ReferralID,
		"broker_id":         p.BrokerID,
		"amount_cents":      p.AmountCents,
	}
}

// PayoutPayload captures one disbursement.
type PayoutPayload struct {
	PayoutID    string `json:"payout_id"`
	BrokerID    string `json:"broker_id"`
	AmountCents int64  `json:"amount_cents"`
	EventCount  int    `json:"event_count"`
}

// ToMap converts the payload into an outbox-friendly map.
func (p PayoutPayload) ToMap() map[string]any {
	return map[string]any{
		"payout_id":    p.PayoutID,
		"broker_id":    p.BrokerID,
		"amount_cents": p.AmountCents,
		"event_count":  p.EventCount,
	}
}
