package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/crewbase/crewbase/internal/audit"
	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/config"
	"github.com/crewbase/crewbase/internal/identity"
	"github.com/crewbase/crewbase/internal/logger"
	"github.com/crewbase/crewbase/internal/migration"
	"github.com/crewbase/crewbase/internal/modules"
	"github.com/crewbase/crewbase/internal/permission"
	"github.com/crewbase/crewbase/internal/project"
	"github.com/crewbase/crewbase/internal/resource"
	"github.com/crewbase/crewbase/internal/role"
	"github.com/crewbase/crewbase/internal/server"
	"github.com/crewbase/crewbase/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,

		permission.Module,
		identity.Module,
		role.Module,
		project.Module,
		modules.Module,
		audit.Module,
		authz.Module,
		resource.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
