package role

import (
	"github.com/crewbase/crewbase/internal/role/repository"
	"github.com/crewbase/crewbase/internal/role/service"
	"go.uber.org/fx"
)

var Module = fx.Module("role.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
