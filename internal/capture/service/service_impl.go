package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	capturedomain "github.com/smallbiznis/lienclock/internal/capture/domain"
	"github.com/smallbiznis/lienclock/internal/events"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Outbox *events.Outbox `optional:"true"`
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	outbox *events.Outbox
}

func NewService(p Params) capturedomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("capture.service"),
		genID:  p.GenID,
		outbox: p.Outbox,
	}
}

func (s *Service) CaptureLead(ctx context.Context, req capturedomain.CaptureLeadRequest) (*capturedomain.Lead, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, capturedomain.ErrInvalidEmail
	}

	metadata := datatypes.JSONMap{}
	for key, value := range req.Metadata {
		if strings.TrimSpace(key) == "" {
			continue
		}
		metadata[key] = value
	}

	lead := capturedomain.Lead{
		ID:       s.genID.Generate(),
		Email:    email,
		Name:     strings.TrimSpace(req.Name),
		Company:  strings.TrimSpace(req.Company),
		Source:   strings.TrimSpace(req.Source),
		Metadata: metadata,
	}
	if err := s.db.WithContext(ctx).Create(&lead).Error; err != nil {
		return nil, err
	}

	if s.outbox != nil {
		if err := s.outbox.Publish(ctx, events.Event{
			Type: events.EventLeadCaptured,
			Payload: map[string]any{
				"lead_id": lead.ID.String(),
				"email":   lead.Email,
				"source":  lead.Source,
			},
		}); err != nil {
			s.log.Warn("failed to publish lead event", zap.Error(err))
		}
	}

	return &lead, nil
}

func (s *Service) RecordPageView(ctx context.Context, req capturedomain.RecordPageViewRequest) error {
	path := strings.TrimSpace(req.Path)
	if path == "" || !strings.HasPrefix(path, "/") {
		return capturedomain.ErrInvalidPath
	}

	view := capturedomain.PageView{
		ID:        s.genID.Generate(),
		Path:      path,
		Referrer:  strings.TrimSpace(req.Referrer),
		VisitorID: strings.TrimSpace(req.VisitorID),
		UserAgent: strings.TrimSpace(req.UserAgent),
	}
	return s.db.WithContext(ctx).Create(&view).Error
}
