package migration

import (
	auditdomain "github.com/crewbase/crewbase/internal/audit/domain"
	"github.com/crewbase/crewbase/internal/config"
	identitydomain "github.com/crewbase/crewbase/internal/identity/domain"
	modulesdomain "github.com/crewbase/crewbase/internal/modules/domain"
	permissiondomain "github.com/crewbase/crewbase/internal/permission/domain"
	projectdomain "github.com/crewbase/crewbase/internal/project/domain"
	"github.com/crewbase/crewbase/internal/resource"
	roledomain "github.com/crewbase/crewbase/internal/role/domain"
	"github.com/crewbase/crewbase/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, policyHolder *config.PolicyHolder) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunPostgres(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql are dev dialects; gorm derives the same
			// schema from the models.
			err := conn.AutoMigrate(
				&identitydomain.User{},
				&identitydomain.Session{},
				&projectdomain.Project{},
				&roledomain.Role{},
				&roledomain.RolePermission{},
				&permissiondomain.Permission{},
				&projectdomain.Membership{},
				&projectdomain.Invite{},
				&modulesdomain.ProjectModule{},
				&auditdomain.ActivityLog{},
				&resource.Payment{},
				&resource.Sale{},
				&resource.Worker{},
				&resource.Task{},
			)
			if err != nil {
				return err
			}
		}

		return seed.Run(conn, cfg, policyHolder.Get())
	}),
)
