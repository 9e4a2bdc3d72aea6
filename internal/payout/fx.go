package payout

import (
	"go.uber.org/fx"

	appconfig "github.com/smallbiznis/lienclock/internal/config"
	payoutdomain "github.com/smallbiznis/lienclock/internal/payout/domain"
	"github.com/smallbiznis/lienclock/internal/payout/repository"
	"github.com/smallbiznis/lienclock/internal/payout/service"
)

var Module = fx.Module("payout.service",
	fx.Provide(func(cfg appconfig.Config) payoutdomain.PayoutPolicy {
		return cfg.PayoutPolicy()
	}),
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
