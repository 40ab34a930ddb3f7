package resource

import "go.uber.org/fx"

var Module = fx.Module("resource.repository",
	fx.Provide(NewRepository),
)
