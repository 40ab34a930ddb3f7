package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Enable(ctx context.Context, projectID snowflake.ID, key string) error
	Disable(ctx context.Context, projectID snowflake.ID, key string) error
	Configure(ctx context.Context, projectID snowflake.ID, key string, config map[string]any) error
	// IsEnabled is fail-closed: an unknown key or missing row reports false.
	IsEnabled(ctx context.Context, projectID snowflake.ID, key string) (bool, error)
	ListForProject(ctx context.Context, projectID snowflake.ID) ([]ModuleInfo, error)
}

type Repository interface {
	Find(ctx context.Context, projectID snowflake.ID, key string) (*ProjectModule, error)
	Upsert(ctx context.Context, gate *ProjectModule) error
	ListByProject(ctx context.Context, projectID snowflake.ID) ([]ProjectModule, error)
}

var (
	ErrUnknownModule  = errors.New("unknown_module")
	ErrInvalidProject = errors.New("invalid_project")
)
