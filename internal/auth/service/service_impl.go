package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apikeydomain "github.com/smallbiznis/lienclock/internal/apikey/domain"
	auditdomain "github.com/smallbiznis/lienclock/internal/audit/domain"
	authdomain "github.com/smallbiznis/lienclock/internal/auth/domain"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	APIKeySvc apikeydomain.Service
	AuditSvc  auditdomain.Service `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	apiKeySvc apikeydomain.Service
	auditSvc  auditdomain.Service
}

func NewService(p Params) authdomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("auth.service"),
		apiKeySvc: p.APIKeySvc,
		auditSvc:  p.AuditSvc,
	}
}

func (s *Service) Login(ctx context.Context, req authdomain.LoginRequest) (*apikeydomain.IssuedKey, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, authdomain.ErrInvalidRequest
	}

	var user authdomain.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authdomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !authdomain.VerifyPassword(req.Password, user.PasswordHash) {
		s.log.Warn("login rejected", zap.String("email", email))
		return nil, authdomain.ErrInvalidCredentials
	}

	issued, err := s.apiKeySvc.Issue(ctx, &user.ID, "login "+email)
	if err != nil {
		return nil, err
	}

	if s.auditSvc != nil {
		actorID := user.ID.String()
		targetID := issued.Key.ID.String()
		_ = s.auditSvc.AuditLog(ctx, &actorID, "auth.login", "api_key", &targetID, map[string]any{
			"email": email,
		})
	}
	return issued, nil
}
