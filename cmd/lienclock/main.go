// @title           Lienclock API
// @version         1.0
// @description     Broker referral and payout ledger API

// @host      localhost:8080
// @BasePath  /api/v1
// @Schemes 	http https

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/smallbiznis/lienclock/internal/apikey"
	"github.com/smallbiznis/lienclock/internal/audit"
	"github.com/smallbiznis/lienclock/internal/auth"
	"github.com/smallbiznis/lienclock/internal/broker"
	"github.com/smallbiznis/lienclock/internal/capture"
	"github.com/smallbiznis/lienclock/internal/clock"
	"github.com/smallbiznis/lienclock/internal/config"
	"github.com/smallbiznis/lienclock/internal/events"
	"github.com/smallbiznis/lienclock/internal/migration"
	"github.com/smallbiznis/lienclock/internal/observability"
	"github.com/smallbiznis/lienclock/internal/payment"
	"github.com/smallbiznis/lienclock/internal/payout"
	payoutworker "github.com/smallbiznis/lienclock/internal/payout/worker"
	"github.com/smallbiznis/lienclock/internal/referral"
	"github.com/smallbiznis/lienclock/internal/seed"
	"github.com/smallbiznis/lienclock/internal/server"
	"github.com/smallbiznis/lienclock/pkg/db"
)

var version = "dev"

func main() {
	_ = godotenv.Load()
	if os.Getenv("SERVICE_VERSION") == "" {
		os.Setenv("SERVICE_VERSION", version)
	}

	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := migration.RunMigrations(sqlDB); err != nil {
				return err
			}
			if cfg.Bootstrap.EnsureAdminUser {
				if err := seed.EnsureAdminUser(conn, cfg); err != nil {
					return err
				}
			}
			if cfg.Bootstrap.SeedDemoData {
				return seed.EnsureDemoData(conn, cfg)
			}
			return nil
		}),

		events.Module,
		audit.Module,
		apikey.Module,
		auth.Module,
		broker.Module,
		referral.Module,
		payout.Module,
		payoutworker.Module,
		payment.Module,
		capture.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) *snowflake.Node {
	node, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		panic(err)
	}
	return node
}
