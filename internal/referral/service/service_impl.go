package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	auditdomain "github.com/smallbiznis/lienclock/internal/audit/domain"
	brokerdomain "github.com/smallbiznis/lienclock/internal/broker/domain"
	"github.com/smallbiznis/lienclock/internal/events"
	payoutdomain "github.com/smallbiznis/lienclock/internal/payout/domain"
	referraldomain "github.com/smallbiznis/lienclock/internal/referral/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	BrokerSvc brokerdomain.Service
	Policy    payoutdomain.PayoutPolicy
	Outbox    *events.Outbox      `optional:"true"`
	AuditSvc  auditdomain.Service `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID     *snowflake.Node
	brokerSvc brokerdomain.Service
	policy    payoutdomain.PayoutPolicy
	outbox    *events.Outbox
	auditSvc  auditdomain.Service
}

func NewService(p ServiceParam) referraldomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("referral.service"),

		genID:     p.GenID,
		brokerSvc: p.BrokerSvc,
		policy:    p.Policy,
		outbox:    p.Outbox,
		auditSvc:  p.AuditSvc,
	}
}

func (s *Service) Create(ctx context.Context, req referraldomain.CreateReferralRequest) (*referraldomain.Referral, error) {
	broker, err := s.brokerSvc.GetByID(ctx, req.BrokerID)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.CustomerEmail))
	paymentID := strings.TrimSpace(req.CustomerPaymentID)
	if email == "" && paymentID == "" {
		return nil, referraldomain.ErrInvalidCustomer
	}

	metadata := datatypes.JSONMap{}
	for key, value := range req.Metadata {
		if strings.TrimSpace(key) == "" {
			continue
		}
		metadata[key] = value
	}

	referral := referraldomain.Referral{
		ID:                uuid.NewString(),
		BrokerID:          broker.ID,
		CustomerEmail:     email,
		CustomerPaymentID: paymentID,
		CommissionModel:   broker.CommissionModel,
		Status:            payoutdomain.ReferralStatusActive,
		Metadata:          metadata,
	}
	if err := s.db.WithContext(ctx).Create(&referral).Error; err != nil {
		return nil, err
	}

	if s.outbox != nil {
		_ = s.outbox.Publish(ctx, events.Event{
			Type:      events.EventReferralCreated,
			DedupeKey: "referral_created:" + referral.ID,
			Payload: events.ReferralPayload{
				ReferralID: referral.ID,
				BrokerID:   referral.BrokerID.String(),
			}.ToMap(),
		})
	}

	s.log.Info("referral created",
		zap.String("referral_id", referral.ID),
		zap.String("broker_id", referral.BrokerID.String()),
	)
	return &referral, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*referraldomain.Referral, error) {
	referralID := strings.TrimSpace(id)
	if referralID == "" {
		return nil, referraldomain.ErrInvalidReferralID
	}

	var referral referraldomain.Referral
	err := s.db.WithContext(ctx).First(&referral, "id = ?", referralID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, referraldomain.ErrReferralNotFound
	}
	if err != nil {
		return nil, err
	}
	return &referral, nil
}

func (s *Service) ListByBroker(ctx context.Context, brokerID string) ([]referraldomain.Referral, error) {
	broker, err := s.brokerSvc.GetByID(ctx, brokerID)
	if err != nil {
		return nil, err
	}

	var referrals []referraldomain.Referral
	if err := s.db.WithContext(ctx).
		Where("broker_id = ?", broker.ID).
		Order("created_at ASC").
		Find(&referrals).Error; err != nil {
		return nil, err
	}
	return referrals, nil
}

func (s *Service) Cancel(ctx context.Context, id string) (*referraldomain.Referral, error) {
	referral, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if referral.Status == payoutdomain.ReferralStatusCanceled {
		return nil, referraldomain.ErrReferralCanceled
	}

	now := time.Now().UTC()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&referraldomain.Referral{}).
			Where("id = ?", referral.ID).
			Updates(map[string]any{
				"status":      payoutdomain.ReferralStatusCanceled,
				"canceled_at": now,
				"updated_at":  now,
			}).Error; err != nil {
			return err
		}
		// Keep the duplicated status on stored events consistent with the
		// referral so every later snapshot sees one status per referral.
		return tx.Model(&referraldomain.EarningRecord{}).
			Where("referral_id = ?", referral.ID).
			Update("status", payoutdomain.ReferralStatusCanceled).Error
	})
	if err != nil {
		return nil, err
	}

	referral.Status = payoutdomain.ReferralStatusCanceled
	referral.CanceledAt = &now

	if s.auditSvc != nil {
		targetID := referral.ID
		_ = s.auditSvc.AuditLog(ctx, nil, "referral.cancel", "referral", &targetID, map[string]any{
			"broker_id": referral.BrokerID.String(),
		})
	}

	s.log.Info("referral canceled", zap.String("referral_id", referral.ID))
	return referral, nil
}

func (s *Service) RecordPayment(ctx context.Context, req referraldomain.RecordPaymentRequest) (*referraldomain.EarningRecord, error) {
	referral, err := s.GetByID(ctx, req.ReferralID)
	if err != nil {
		return nil, err
	}
	if referral.Status == payoutdomain.ReferralStatusCanceled {
		return nil, referraldomain.ErrReferralCanceled
	}
	if req.PaidAt.IsZero() {
		return nil, referraldomain.ErrInvalidPayment
	}

	record := referraldomain.EarningRecord{
		ID:                s.genID.Generate(),
		ReferralID:        referral.ID,
		BrokerID:          referral.BrokerID,
		CustomerEmail:     referral.CustomerEmail,
		CustomerPaymentID: referral.CustomerPaymentID,
		CommissionModel:   referral.CommissionModel,
		AmountCents:       s.policy.AmountFor(referral.CommissionModel),
		PaymentDate:       req.PaidAt.UTC(),
		Status:            referral.Status,
	}
	if err := payoutdomain.ValidateEvent(record.Event()); err != nil {
		return nil, err
	}

	credited := true
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if referral.CommissionModel == payoutdomain.CommissionModelBounty {
			var existing int64
			if err := tx.Model(&referraldomain.EarningRecord{}).
				Where("referral_id = ?", referral.ID).
				Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				// Bounty is paid once per customer; later payments earn nothing.
				credited = false
				return nil
			}
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		if s.outbox != nil {
			dedupe := strings.TrimSpace(req.PaymentID)
			if dedupe == "" {
				dedupe = record.ID.String()
			}
			return s.outbox.PublishTx(ctx, tx, events.Event{
				Type:      events.EventCommissionRecorded,
				DedupeKey: "commission:" + referral.ID + ":" + dedupe,
				Payload: events.CommissionPayload{
					EarningRecordID: record.ID.String(),
					ReferralID:      referral.ID,
					BrokerID:        referral.BrokerID.String(),
					AmountCents:     record.AmountCents,
				}.ToMap(),
			})
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) && referral.CommissionModel == payoutdomain.CommissionModelBounty {
		// A concurrent payment won the race between the count and the
		// insert; the bounty unique index rejects the second credit.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !credited {
		return nil, nil
	}

	s.log.Info("commission recorded",
		zap.String("referral_id", referral.ID),
		zap.String("commission_model", string(record.CommissionModel)),
		zap.Int64("amount_cents", record.AmountCents),
	)
	return &record, nil
}
