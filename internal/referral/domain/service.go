package domain

import (
	"context"
	"errors"
	"time"
)

type CreateReferralRequest struct {
	BrokerID          string
	CustomerEmail     string
	CustomerPaymentID string
	Metadata          map[string]any
}

// RecordPaymentRequest reports one settled customer payment. Under BOUNTY the
// first payment earns the bounty and later ones earn nothing; under RECURRING
// every payment earns the recurring amount.
type RecordPaymentRequest struct {
	ReferralID string
	PaymentID  string
	PaidAt     time.Time
}

type Service interface {
	Create(ctx context.Context, req CreateReferralRequest) (*Referral, error)
	GetByID(ctx context.Context, id string) (*Referral, error)
	ListByBroker(ctx context.Context, brokerID string) ([]Referral, error)
	// Cancel moves the referral ACTIVE -> CANCELED and cascades the status
	// onto its stored earning records. CANCELED is terminal.
	Cancel(ctx context.Context, id string) (*Referral, error)
	// RecordPayment credits a commission for a settled payment, or returns
	// (nil, nil) when the payment earns nothing under the referral's model.
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (*EarningRecord, error)
}

var (
	ErrInvalidReferralID = errors.New("invalid_referral_id")
	ErrInvalidCustomer   = errors.New("invalid_customer")
	ErrInvalidPayment    = errors.New("invalid_payment")
	ErrReferralNotFound  = errors.New("referral_not_found")
	ErrReferralCanceled  = errors.New("referral_canceled")
)
