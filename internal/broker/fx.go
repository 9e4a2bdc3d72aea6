package broker

import (
	"github.com/smallbiznis/lienclock/internal/broker/service"
	"go.uber.org/fx"
)

var Module = fx.Module("broker.service",
	fx.Provide(service.NewService),
)
