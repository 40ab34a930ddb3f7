// Package domain contains the role model and its permission-set semantics.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Reserved system role slugs. Roles with these slugs are seeded at startup
// and cannot be deleted.
const (
	SlugOwner   = "owner"
	SlugAdmin   = "admin"
	SlugManager = "manager"
	SlugMember  = "member"
	SlugViewer  = "viewer"
)

// ReservedSlugs lists the protected system roles.
var ReservedSlugs = map[string]bool{
	SlugOwner:   true,
	SlugAdmin:   true,
	SlugManager: true,
	SlugMember:  true,
	SlugViewer:  true,
}

// Role is a named, leveled bundle of permissions, shared across every
// project. Level is display/ordering metadata only; the authorization
// engine never consults it.
type Role struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	Name        string       `gorm:"type:text;not null"`
	Slug        string       `gorm:"type:text;not null;uniqueIndex"`
	Level       int          `gorm:"not null;default:0"`
	Description string       `gorm:"type:text"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`

	Permissions []RolePermission `gorm:"foreignKey:RoleID"`
}

// TableName sets the database table name.
func (Role) TableName() string { return "roles" }

// RolePermission binds a permission slug to a role. Slugs are stored by
// value so catalog entries are referenced, never aliased.
type RolePermission struct {
	RoleID         snowflake.ID `gorm:"primaryKey;autoIncrement:false"`
	PermissionSlug string       `gorm:"primaryKey;column:permission_slug;type:text"`
}

// TableName sets the database table name.
func (RolePermission) TableName() string { return "role_permissions" }

// IsSystem reports whether the role is one of the reserved system roles.
func (r *Role) IsSystem() bool {
	return ReservedSlugs[r.Slug]
}

// HasPermission reports whether the role's permission set contains slug.
// Exact string match, no hierarchy among permissions.
func (r *Role) HasPermission(slug string) bool {
	for _, p := range r.Permissions {
		if p.PermissionSlug == slug {
			return true
		}
	}
	return false
}

// PermissionSlugs returns the role's permission set as a slice.
func (r *Role) PermissionSlugs() []string {
	out := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		out = append(out, p.PermissionSlug)
	}
	return out
}

// HasHigherOrEqualLevel compares role levels. Provided as a sorting aid for
// UIs; it does not gate any authorization decision.
func (r *Role) HasHigherOrEqualLevel(other *Role) bool {
	if other == nil {
		return true
	}
	return r.Level >= other.Level
}
