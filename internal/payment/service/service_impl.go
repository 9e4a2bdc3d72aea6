package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	auditdomain "github.com/smallbiznis/lienclock/internal/audit/domain"
	paymentdomain "github.com/smallbiznis/lienclock/internal/payment/domain"
	referraldomain "github.com/smallbiznis/lienclock/internal/referral/domain"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	ReferralSvc referraldomain.Service
	AuditSvc    auditdomain.Service `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	referralSvc referraldomain.Service
	auditSvc    auditdomain.Service
}

func NewService(p Params) paymentdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("payment.service"),
		genID:       p.GenID,
		referralSvc: p.ReferralSvc,
		auditSvc:    p.AuditSvc,
	}
}

// webhookEvent is the provider-agnostic payload shape accepted on ingestion.
type webhookEvent struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	ReferralID string `json:"referral_id"`
	PaymentID  string `json:"payment_id"`
	PaidAt     string `json:"paid_at"`
}

func (s *Service) IngestWebhook(ctx context.Context, provider string, payload []byte) (*paymentdomain.EventRecord, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return nil, paymentdomain.ErrInvalidProvider
	}
	if len(payload) == 0 || !json.Valid(payload) {
		return nil, paymentdomain.ErrInvalidPayload
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	event.ID = strings.TrimSpace(event.ID)
	event.ReferralID = strings.TrimSpace(event.ReferralID)
	event.PaymentID = strings.TrimSpace(event.PaymentID)
	if event.ID == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}

	record := &paymentdomain.EventRecord{
		ID:              s.genID.Generate(),
		Provider:        provider,
		ProviderEventID: event.ID,
		Payload:         datatypes.JSON(payload),
		ReceivedAt:      time.Now().UTC(),
	}
	if event.ReferralID != "" {
		record.ReferralID = &event.ReferralID
	}

	inserted, err := s.insertEvent(ctx, record)
	if err != nil {
		return nil, err
	}
	if !inserted {
		s.log.Debug("payment event redelivered",
			zap.String("provider", provider),
			zap.String("provider_event_id", event.ID),
		)
		return nil, paymentdomain.ErrEventAlreadyProcessed
	}

	if event.ReferralID != "" && event.PaymentID != "" {
		paidAt, parseErr := parsePaidAt(event.PaidAt, record.ReceivedAt)
		if parseErr != nil {
			return nil, paymentdomain.ErrInvalidEvent
		}
		if _, err := s.referralSvc.RecordPayment(ctx, referraldomain.RecordPaymentRequest{
			ReferralID: event.ReferralID,
			PaymentID:  event.PaymentID,
			PaidAt:     paidAt,
		}); err != nil {
			if errors.Is(err, referraldomain.ErrReferralNotFound) {
				s.log.Warn("payment event references unknown referral",
					zap.String("provider", provider),
					zap.String("referral_id", event.ReferralID),
				)
				return record, nil
			}
			return nil, err
		}
	}

	if s.auditSvc != nil {
		targetID := record.ID.String()
		_ = s.auditSvc.AuditLog(ctx, nil, "payment.ingest", "payment_event", &targetID, map[string]any{
			"provider":          provider,
			"provider_event_id": event.ID,
			"referral_id":       event.ReferralID,
		})
	}

	return record, nil
}

func (s *Service) insertEvent(ctx context.Context, record *paymentdomain.EventRecord) (bool, error) {
	result := s.db.WithContext(ctx).Exec(
		`INSERT INTO payment_events (id, provider, provider_event_id, referral_id, payload, received_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (provider, provider_event_id) DO NOTHING`,
		record.ID,
		record.Provider,
		record.ProviderEventID,
		record.ReferralID,
		record.Payload,
		record.ReceivedAt,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func parsePaidAt(raw string, fallback time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	paidAt, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return paidAt.UTC(), nil
}
