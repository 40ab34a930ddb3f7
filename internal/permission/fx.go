package permission

import "go.uber.org/fx"

var Module = fx.Module("permission.catalog",
	fx.Provide(NewCatalog),
)
