package audit

import (
	"github.com/crewbase/crewbase/internal/audit/domain"
	"github.com/crewbase/crewbase/internal/audit/repository"
	"github.com/crewbase/crewbase/internal/audit/service"
	"go.uber.org/fx"
)

func provideRecorder(svc domain.Service) domain.Recorder {
	return svc
}

var Module = fx.Module("audit.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
	fx.Provide(provideRecorder),
)
