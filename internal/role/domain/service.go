package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Role, error)
	Update(ctx context.Context, req UpdateRequest) (*Role, error)
	// SetPermissions replaces the role's permission set wholesale: after the
	// call the set is exactly slugs, not a merge with the previous set.
	SetPermissions(ctx context.Context, roleID snowflake.ID, slugs []string) (*Role, error)
	Delete(ctx context.Context, roleID snowflake.ID) error
	Get(ctx context.Context, roleID snowflake.ID) (*Role, error)
	GetBySlug(ctx context.Context, slug string) (*Role, error)
	List(ctx context.Context) ([]Role, error)
}

type CreateRequest struct {
	Name        string
	Level       int
	Description string
	Permissions []string
}

type UpdateRequest struct {
	ID          snowflake.ID
	Name        *string
	Level       *int
	Description *string
}

var (
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidLevel      = errors.New("invalid_level")
	ErrSlugTaken         = errors.New("slug_taken")
	ErrUnknownPermission = errors.New("unknown_permission")
	ErrNotFound          = errors.New("not_found")

	// ErrSystemRole backs the caller-facing message
	// "System roles cannot be deleted."
	ErrSystemRole = errors.New("system_role")

	// ErrRoleInUse is returned when deleting a role that memberships still
	// reference.
	ErrRoleInUse = errors.New("role_in_use")
)
