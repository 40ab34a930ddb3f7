// Package domain contains the activity log types.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ActivityLog is one recorded action within a project. Writes are
// fire-and-forget; a failed insert is logged and dropped, never propagated
// to the mutating request.
type ActivityLog struct {
	ID         snowflake.ID      `gorm:"primaryKey"`
	ProjectID  *snowflake.ID     `gorm:"column:project_id;index"`
	ActorID    *snowflake.ID     `gorm:"column:actor_id;index"`
	Action     string            `gorm:"type:text;not null;index"`
	EntityType string            `gorm:"column:entity_type;type:text;not null"`
	EntityID   *string           `gorm:"column:entity_id;type:text"`
	ModuleKey  string            `gorm:"column:module_key;type:text"`
	OldValues  datatypes.JSONMap `gorm:"column:old_values;type:jsonb"`
	NewValues  datatypes.JSONMap `gorm:"column:new_values;type:jsonb"`
	Message    string            `gorm:"type:text"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

// TableName sets the database table name.
func (ActivityLog) TableName() string { return "activity_logs" }
