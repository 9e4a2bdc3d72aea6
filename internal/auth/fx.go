package auth

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/lienclock/internal/auth/service"
)

var Module = fx.Module("auth.service",
	fx.Provide(service.NewService),
)
