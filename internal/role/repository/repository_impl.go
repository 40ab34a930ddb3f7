package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/crewbase/crewbase/internal/role/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, role *domain.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		perms := role.Permissions
		role.Permissions = nil
		if err := tx.Create(role).Error; err != nil {
			return err
		}
		role.Permissions = perms
		if len(perms) == 0 {
			return nil
		}
		return tx.Create(&perms).Error
	})
}

func (r *repository) Update(ctx context.Context, role *domain.Role) error {
	role.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&domain.Role{}).
		Where("id = ?", role.ID).
		Updates(map[string]any{
			"name":        role.Name,
			"level":       role.Level,
			"description": role.Description,
			"updated_at":  role.UpdatedAt,
		}).Error
}

func (r *repository) ReplacePermissions(ctx context.Context, roleID snowflake.ID, slugs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&domain.RolePermission{}).Error; err != nil {
			return err
		}
		if len(slugs) == 0 {
			return nil
		}
		rows := make([]domain.RolePermission, 0, len(slugs))
		for _, slug := range slugs {
			rows = append(rows, domain.RolePermission{RoleID: roleID, PermissionSlug: slug})
		}
		return tx.Create(&rows).Error
	})
}

func (r *repository) Delete(ctx context.Context, roleID snowflake.ID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&domain.RolePermission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Role{}, "id = ?", roleID).Error
	})
}

func (r *repository) FindByID(ctx context.Context, roleID snowflake.ID) (*domain.Role, error) {
	var role domain.Role
	err := r.db.WithContext(ctx).
		Preload("Permissions").
		First(&role, "id = ?", roleID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *repository) FindBySlug(ctx context.Context, slug string) (*domain.Role, error) {
	var role domain.Role
	err := r.db.WithContext(ctx).
		Preload("Permissions").
		First(&role, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *repository) List(ctx context.Context) ([]domain.Role, error) {
	var roles []domain.Role
	err := r.db.WithContext(ctx).
		Preload("Permissions").
		Order("level DESC, slug ASC").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *repository) CountMemberships(ctx context.Context, roleID snowflake.ID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("project_members").
		Where("role_id = ?", roleID).
		Count(&count).Error
	return count, err
}
