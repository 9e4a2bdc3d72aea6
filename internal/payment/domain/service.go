package domain

import (
	"context"
	"errors"
)

// Service ingests payment provider webhook events.
type Service interface {
	// IngestWebhook records the event and, when it maps to a referral,
	// books the matching commission. Redelivered events are no-ops.
	IngestWebhook(ctx context.Context, provider string, payload []byte) (*EventRecord, error)
}

var (
	ErrInvalidProvider       = errors.New("invalid_provider")
	ErrInvalidPayload        = errors.New("invalid_payload")
	ErrInvalidEvent          = errors.New("invalid_event")
	ErrEventAlreadyProcessed = errors.New("event_already_processed")
)
