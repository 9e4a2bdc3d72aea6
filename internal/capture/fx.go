package capture

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/lienclock/internal/capture/service"
)

var Module = fx.Module("capture.service",
	fx.Provide(service.NewService),
)
