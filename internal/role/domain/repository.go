package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, role *Role) error
	Update(ctx context.Context, role *Role) error
	// ReplacePermissions deletes the role's current permission rows and
	// inserts exactly slugs.
	ReplacePermissions(ctx context.Context, roleID snowflake.ID, slugs []string) error
	Delete(ctx context.Context, roleID snowflake.ID) error
	FindByID(ctx context.Context, roleID snowflake.ID) (*Role, error)
	FindBySlug(ctx context.Context, slug string) (*Role, error)
	List(ctx context.Context) ([]Role, error)
	CountMemberships(ctx context.Context, roleID snowflake.ID) (int64, error)
}
