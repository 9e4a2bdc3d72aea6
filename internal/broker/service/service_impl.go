package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/lienclock/internal/audit/domain"
	brokerdomain "github.com/smallbiznis/lienclock/internal/broker/domain"
	payoutdomain "github.com/smallbiznis/lienclock/internal/payout/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	AuditSvc auditdomain.Service `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID    *snowflake.Node
	auditSvc auditdomain.Service
}

func NewService(p ServiceParam) brokerdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("broker.service"),

		genID:    p.GenID,
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) Create(ctx context.Context, req brokerdomain.CreateBrokerRequest) (*brokerdomain.Broker, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, brokerdomain.ErrInvalidName
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, brokerdomain.ErrInvalidEmail
	}
	switch req.CommissionModel {
	case payoutdomain.CommissionModelBounty, payoutdomain.CommissionModelRecurring:
	default:
		return nil, brokerdomain.ErrInvalidCommissionModel
	}

	var existing int64
	if err := s.db.WithContext(ctx).
		Model(&brokerdomain.Broker{}).
		Where("email = ?", email).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, brokerdomain.ErrEmailTaken
	}

	broker := brokerdomain.Broker{
		ID:              s.genID.Generate(),
		Name:            name,
		Email:           email,
		CommissionModel: req.CommissionModel,
	}
	if err := s.db.WithContext(ctx).Create(&broker).Error; err != nil {
		return nil, err
	}

	if s.auditSvc != nil {
		targetID := broker.ID.String()
		_ = s.auditSvc.AuditLog(ctx, nil, "broker.create", "broker", &targetID, map[string]any{
			"name":             broker.Name,
			"email":            broker.Email,
			"commission_model": string(broker.CommissionModel),
		})
	}

	s.log.Info("broker created",
		zap.String("broker_id", broker.ID.String()),
		zap.String("commission_model", string(broker.CommissionModel)),
	)
	return &broker, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*brokerdomain.Broker, error) {
	brokerID, err := parseID(id)
	if err != nil {
		return nil, brokerdomain.ErrInvalidBrokerID
	}

	var broker brokerdomain.Broker
	err = s.db.WithContext(ctx).First(&broker, "id = ?", brokerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, brokerdomain.ErrBrokerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &broker, nil
}

func (s *Service) List(ctx context.Context) ([]brokerdomain.Broker, error) {
	var brokers []brokerdomain.Broker
	if err := s.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&brokers).Error; err != nil {
		return nil, err
	}
	return brokers, nil
}

func parseID(raw string) (snowflake.ID, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value <= 0 {
		return 0, brokerdomain.ErrInvalidBrokerID
	}
	return snowflake.ID(value), nil
}
