package project

import (
	"github.com/crewbase/crewbase/internal/project/repository"
	"github.com/crewbase/crewbase/internal/project/service"
	"go.uber.org/fx"
)

var Module = fx.Module("project.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
