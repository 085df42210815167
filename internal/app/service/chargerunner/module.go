package chargerunner

import (
	"context"

	"go.uber.org/fx"
)

func runRunner(lc fx.Lifecycle, r *Runner) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go r.Run(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(NewRunner),
	fx.Invoke(runRunner),
)
