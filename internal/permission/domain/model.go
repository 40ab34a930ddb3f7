// Package domain contains the permission catalog types.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Permission is a catalog entry for an atomic capability. Slugs follow the
// dotted module.action convention (worker.view, salary.create) and are
// global, not project-scoped.
type Permission struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	Name        string       `gorm:"type:text;not null"`
	Slug        string       `gorm:"type:text;not null;uniqueIndex"`
	ModuleKey   string       `gorm:"column:module_key;type:text;index"`
	Description string       `gorm:"type:text"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Permission) TableName() string { return "permissions" }
