package modules

import (
	"github.com/crewbase/crewbase/internal/modules/repository"
	"github.com/crewbase/crewbase/internal/modules/service"
	"go.uber.org/fx"
)

var Module = fx.Module("modules.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
