package referral

import (
	"github.com/smallbiznis/lienclock/internal/referral/service"
	"go.uber.org/fx"
)

var Module = fx.Module("referral.service",
	fx.Provide(service.NewService),
)
