package billing

import "go.uber.org/fx"

// Module exposes the billing engine via Fx.
var Module = fx.Options(
	fx.Provide(NewEngine),
)
