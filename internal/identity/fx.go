package identity

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/crewbase/crewbase/internal/config"
	"github.com/crewbase/crewbase/internal/identity/domain"
	"github.com/crewbase/crewbase/internal/identity/repository"
	"github.com/crewbase/crewbase/internal/identity/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func provideService(log *zap.Logger, conn *gorm.DB, genID *snowflake.Node, cfg config.Config) domain.Service {
	repo, sessions := repository.New(conn)
	return service.New(log, repo, sessions, genID, time.Duration(cfg.SessionTTLHours)*time.Hour)
}

var Module = fx.Module("identity.service",
	fx.Provide(provideService),
)
