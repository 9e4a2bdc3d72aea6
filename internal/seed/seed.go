// Package seed bootstraps startup data for local and OSS deployments.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	authdomain "github.com/smallbiznis/lienclock/internal/auth/domain"
	brokerdomain "github.com/smallbiznis/lienclock/internal/broker/domain"
	"github.com/smallbiznis/lienclock/internal/config"
	payoutdomain "github.com/smallbiznis/lienclock/internal/payout/domain"
	referraldomain "github.com/smallbiznis/lienclock/internal/referral/domain"
)

const (
	defaultAdminPassword = "admin"

	demoBrokerName  = "Demo Broker"
	demoBrokerEmail = "demo-broker@lienclock.local"
)

// EnsureAdminUser creates the bootstrap admin account when missing.
func EnsureAdminUser(db *gorm.DB, cfg config.Config) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	email := strings.ToLower(strings.TrimSpace(cfg.Bootstrap.AdminEmail))
	if email == "" {
		return errors.New("seed admin email is required")
	}
	password := cfg.Bootstrap.AdminPassword
	if password == "" {
		password = defaultAdminPassword
	}

	node, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user authdomain.User
		err := tx.WithContext(ctx).Where("email = ?", email).First(&user).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := authdomain.HashPassword(password)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		user = authdomain.User{
			ID:           node.Generate(),
			Email:        email,
			PasswordHash: hashed,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.WithContext(ctx).Create(&user).Error
	})
}

// EnsureDemoData seeds a demo broker with a referral so a fresh install has
// something to report on. Skipped when the broker already exists.
func EnsureDemoData(db *gorm.DB, cfg config.Config) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var broker brokerdomain.Broker
		err := tx.WithContext(ctx).Where("email = ?", demoBrokerEmail).First(&broker).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		broker = brokerdomain.Broker{
			ID:              node.Generate(),
			Name:            demoBrokerName,
			Email:           demoBrokerEmail,
			CommissionModel: payoutdomain.CommissionModelBounty,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := tx.WithContext(ctx).Create(&broker).Error; err != nil {
			return err
		}

		referral := referraldomain.Referral{
			ID:              uuid.NewString(),
			BrokerID:        broker.ID,
			CustomerEmail:   "demo-customer@lienclock.local",
			CommissionModel: payoutdomain.CommissionModelBounty,
			Status:          payoutdomain.ReferralStatusActive,
			Metadata:        datatypes.JSONMap{},
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		return tx.WithContext(ctx).Create(&referral).Error
	})
}
