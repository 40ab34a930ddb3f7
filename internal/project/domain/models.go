// Package domain contains the tenant root and membership models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ProjectStatus is the tenant lifecycle state. Projects are suspended or
// archived rather than deleted in the normal flow.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectSuspended ProjectStatus = "suspended"
	ProjectArchived  ProjectStatus = "archived"
)

// Project is a tenant. Every membership and tenant-scoped resource belongs
// to exactly one project, and the owner bypasses every per-project
// permission check on it.
type Project struct {
	ID        snowflake.ID      `gorm:"primaryKey"`
	Name      string            `gorm:"type:text;not null"`
	Slug      string            `gorm:"type:text;not null;uniqueIndex"`
	OwnerID   snowflake.ID      `gorm:"column:owner_id;not null;index"`
	Status    ProjectStatus     `gorm:"type:text;not null;default:'active'"`
	Config    datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Project) TableName() string { return "projects" }

// ProjectID implements the tenant-scoped resource contract.
func (p *Project) ProjectID() snowflake.ID { return p.ID }

// MembershipStatus is the lifecycle state of a membership. Only active
// memberships grant permissions; invited and suspended rows are inert.
// Removal is a hard delete of the row, not a status.
type MembershipStatus string

const (
	MembershipInvited   MembershipStatus = "invited"
	MembershipActive    MembershipStatus = "active"
	MembershipSuspended MembershipStatus = "suspended"
)

// Membership binds a user to a project with exactly one role. At most one
// row exists per (project, user) pair.
type Membership struct {
	ID        snowflake.ID     `gorm:"primaryKey"`
	ProjectID snowflake.ID     `gorm:"column:project_id;not null;index;uniqueIndex:ux_project_user,priority:1"`
	UserID    snowflake.ID     `gorm:"column:user_id;not null;index;uniqueIndex:ux_project_user,priority:2"`
	RoleID    snowflake.ID     `gorm:"column:role_id;not null;index"`
	Status    MembershipStatus `gorm:"type:text;not null"`
	InvitedAt *time.Time       `gorm:"column:invited_at"`
	JoinedAt  *time.Time       `gorm:"column:joined_at"`
	CreatedAt time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Membership) TableName() string { return "project_members" }

// IsActive reports whether the membership currently grants anything.
func (m *Membership) IsActive() bool {
	return m.Status == MembershipActive
}

// Invite tracks a pending email invite to a project. The code is a ULID
// handed to the invitee out of band.
type Invite struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	ProjectID snowflake.ID `gorm:"column:project_id;not null;index"`
	Email     string       `gorm:"type:text;not null"`
	RoleID    snowflake.ID `gorm:"column:role_id;not null"`
	Code      string       `gorm:"type:text;not null;uniqueIndex"`
	Status    string       `gorm:"type:text;not null"`
	InvitedBy snowflake.ID `gorm:"column:invited_by;not null"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Invite) TableName() string { return "project_invites" }

const (
	InvitePending  = "PENDING"
	InviteAccepted = "ACCEPTED"
)

// MembershipGrant is the single-read join of a membership, its role and the
// role's permission slugs, shaped for the authorization engine. A nil grant
// means no membership row exists; a grant with an empty Permissions set can
// mean the role was deleted out from under the membership, which resolves
// to no permissions.
type MembershipGrant struct {
	MembershipID snowflake.ID
	ProjectID    snowflake.ID
	UserID       snowflake.ID
	RoleID       snowflake.ID
	RoleSlug     string
	Status       MembershipStatus
	Permissions  map[string]struct{}
}

// IsActive reports whether the underlying membership is effective.
func (g *MembershipGrant) IsActive() bool {
	return g != nil && g.Status == MembershipActive
}

// HasPermission reports whether the grant's role holds slug. False when no
// role is attached or the role no longer exists.
func (g *MembershipGrant) HasPermission(slug string) bool {
	if g == nil {
		return false
	}
	_, ok := g.Permissions[slug]
	return ok
}
