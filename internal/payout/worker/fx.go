package worker

import (
	"context"

	"go.uber.org/fx"

	appconfig "github.com/smallbiznis/lienclock/internal/config"
)

var Module = fx.Module("payout.worker",
	fx.Provide(func(cfg appconfig.Config) Config {
		return Config{PollInterval: cfg.WorkerPollInterval}
	}),
	fx.Provide(NewWorker),
	fx.Invoke(runWorker),
)

func runWorker(lc fx.Lifecycle, worker *Worker) {
	runCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go worker.RunForever(runCtx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
