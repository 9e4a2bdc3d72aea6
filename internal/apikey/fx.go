package apikey

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/lienclock/internal/apikey/repository"
	"github.com/smallbiznis/lienclock/internal/apikey/service"
)

var Module = fx.Module("apikey.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
