// Package domain contains the per-project module gate model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ProjectModule records whether an optional feature area is enabled for a
// project, plus its per-project configuration. A missing row means the
// module is disabled.
type ProjectModule struct {
	ID        snowflake.ID      `gorm:"primaryKey"`
	ProjectID snowflake.ID      `gorm:"column:project_id;not null;index;uniqueIndex:ux_project_module,priority:1"`
	ModuleKey string            `gorm:"column:module_key;type:text;not null;uniqueIndex:ux_project_module,priority:2"`
	IsEnabled bool              `gorm:"column:is_enabled;not null;default:false"`
	Config    datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (ProjectModule) TableName() string { return "project_modules" }

// ModuleInfo is a catalog entry joined with a project's gate state for
// listing.
type ModuleInfo struct {
	Key       string         `json:"key"`
	Name      string         `json:"name"`
	IsEnabled bool           `json:"is_enabled"`
	Config    map[string]any `json:"config,omitempty"`
}
