package authz

import (
	"go.uber.org/fx"
)

var Module = fx.Module("authz.engine",
	fx.Provide(NewStore),
	fx.Provide(New),
)
