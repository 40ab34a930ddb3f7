// Package seed bootstraps a fresh install: the permission catalog, the
// reserved system roles, a platform admin and a default project.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/crewbase/crewbase/internal/config"
	identitydomain "github.com/crewbase/crewbase/internal/identity/domain"
	"github.com/crewbase/crewbase/internal/identity/password"
	modulesdomain "github.com/crewbase/crewbase/internal/modules/domain"
	permissiondomain "github.com/crewbase/crewbase/internal/permission/domain"
	projectdomain "github.com/crewbase/crewbase/internal/project/domain"
	roledomain "github.com/crewbase/crewbase/internal/role/domain"
	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Run applies all bootstrap steps in one transaction. Safe to call on every
// startup: existing rows are left untouched, so operator edits to system
// role permission sets survive restarts.
func Run(db *gorm.DB, cfg config.Config, policy config.PolicyConfig) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCatalog(ctx, tx, node, policy); err != nil {
			return err
		}
		if err := ensureSystemRoles(ctx, tx, node, policy); err != nil {
			return err
		}
		admin, err := ensureAdmin(ctx, tx, node, cfg)
		if err != nil {
			return err
		}
		if cfg.BootstrapProjectName == "" {
			return nil
		}
		return ensureDefaultProject(ctx, tx, node, cfg, policy, admin)
	})
}

func ensureCatalog(ctx context.Context, tx *gorm.DB, node *snowflake.Node, policy config.PolicyConfig) error {
	upsert := func(slug, moduleKey string) error {
		var existing permissiondomain.Permission
		err := tx.WithContext(ctx).Where("slug = ?", slug).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.WithContext(ctx).Create(&permissiondomain.Permission{
			ID:        node.Generate(),
			Name:      slug,
			Slug:      slug,
			ModuleKey: moduleKey,
		}).Error
	}

	for _, action := range config.ProjectActions {
		if err := upsert(action, ""); err != nil {
			return err
		}
	}
	for _, mod := range policy.Modules {
		for _, action := range mod.Actions {
			if err := upsert(action, mod.Key); err != nil {
				return err
			}
		}
		for _, action := range policy.ExtraActions[mod.Key] {
			if err := upsert(action, mod.Key); err != nil {
				return err
			}
		}
	}
	return nil
}

func ensureSystemRoles(ctx context.Context, tx *gorm.DB, node *snowflake.Node, policy config.PolicyConfig) error {
	for _, def := range policy.SystemRoles {
		var existing roledomain.Role
		err := tx.WithContext(ctx).Where("slug = ?", def.Slug).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		role := roledomain.Role{
			ID:    node.Generate(),
			Name:  def.Name,
			Slug:  def.Slug,
			Level: def.Level,
		}
		if err := tx.WithContext(ctx).Create(&role).Error; err != nil {
			return err
		}
		for _, permSlug := range def.Permissions {
			bind := roledomain.RolePermission{RoleID: role.ID, PermissionSlug: permSlug}
			if err := tx.WithContext(ctx).Create(&bind).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func ensureAdmin(ctx context.Context, tx *gorm.DB, node *snowflake.Node, cfg config.Config) (*identitydomain.User, error) {
	var user identitydomain.User
	err := tx.WithContext(ctx).Where("email = ?", cfg.BootstrapAdminEmail).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := password.Hash(cfg.BootstrapAdminPassword)
	if err != nil {
		return nil, err
	}
	user = identitydomain.User{
		ID:           node.Generate(),
		Email:        cfg.BootstrapAdminEmail,
		DisplayName:  "Administrator",
		PasswordHash: hashed,
		IsAdmin:      true,
		Metadata:     datatypes.JSONMap{},
	}
	if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func ensureDefaultProject(ctx context.Context, tx *gorm.DB, node *snowflake.Node, cfg config.Config, policy config.PolicyConfig, owner *identitydomain.User) error {
	projectSlug := slug.Make(cfg.BootstrapProjectName)

	var project projectdomain.Project
	err := tx.WithContext(ctx).Where("slug = ?", projectSlug).First(&project).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	project = projectdomain.Project{
		ID:      node.Generate(),
		Name:    cfg.BootstrapProjectName,
		Slug:    projectSlug,
		OwnerID: owner.ID,
		Status:  projectdomain.ProjectActive,
		Config:  datatypes.JSONMap{},
	}
	if err := tx.WithContext(ctx).Create(&project).Error; err != nil {
		return err
	}

	var ownerRole roledomain.Role
	if err := tx.WithContext(ctx).Where("slug = ?", roledomain.SlugOwner).First(&ownerRole).Error; err != nil {
		return err
	}
	now := time.Now().UTC()
	member := projectdomain.Membership{
		ID:        node.Generate(),
		ProjectID: project.ID,
		UserID:    owner.ID,
		RoleID:    ownerRole.ID,
		Status:    projectdomain.MembershipActive,
		JoinedAt:  &now,
	}
	if err := tx.WithContext(ctx).Create(&member).Error; err != nil {
		return err
	}

	for _, mod := range policy.Modules {
		gate := modulesdomain.ProjectModule{
			ID:        node.Generate(),
			ProjectID: project.ID,
			ModuleKey: mod.Key,
			IsEnabled: true,
			Config:    datatypes.JSONMap{},
		}
		if err := tx.WithContext(ctx).Create(&gate).Error; err != nil {
			return err
		}
	}
	return nil
}
