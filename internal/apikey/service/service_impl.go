package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apikeydomain "github.com/smallbiznis/lienclock/internal/apikey/domain"
	auditdomain "github.com/smallbiznis/lienclock/internal/audit/domain"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     apikeydomain.Repository
	AuditSvc auditdomain.Service `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     apikeydomain.Repository
	auditSvc auditdomain.Service
}

func New(p Params) apikeydomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("apikey.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) Issue(ctx context.Context, userID *snowflake.ID, name string) (*apikeydomain.IssuedKey, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apikeydomain.ErrInvalidName
	}

	material, err := apikeydomain.GenerateKey()
	if err != nil {
		return nil, err
	}

	key := apikeydomain.APIKey{
		ID:      s.genID.Generate(),
		UserID:  userID,
		Name:    name,
		KeyHash: apikeydomain.HashAPIKey(material),
	}
	if err := s.repo.Insert(ctx, s.db, &key); err != nil {
		return nil, err
	}

	if s.auditSvc != nil {
		targetID := key.ID.String()
		_ = s.auditSvc.AuditLog(ctx, nil, "apikey.issue", "api_key", &targetID, map[string]any{
			"name": key.Name,
		})
	}

	return &apikeydomain.IssuedKey{Key: key, Material: material}, nil
}

func (s *Service) Revoke(ctx context.Context, id string) error {
	keyID, err := parseID(id)
	if err != nil {
		return apikeydomain.ErrInvalidKeyID
	}

	key, err := s.repo.FindByID(ctx, s.db, keyID)
	if err != nil {
		return err
	}
	if key == nil {
		return apikeydomain.ErrKeyNotFound
	}
	if key.RevokedAt != nil {
		return apikeydomain.ErrKeyRevoked
	}

	if err := s.repo.Revoke(ctx, s.db, keyID); err != nil {
		return err
	}

	if s.auditSvc != nil {
		targetID := keyID.String()
		_ = s.auditSvc.AuditLog(ctx, nil, "apikey.revoke", "api_key", &targetID, nil)
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]apikeydomain.APIKey, error) {
	return s.repo.List(ctx, s.db)
}

func parseID(raw string) (snowflake.ID, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value <= 0 {
		return 0, apikeydomain.ErrInvalidKeyID
	}
	return snowflake.ID(value), nil
}
