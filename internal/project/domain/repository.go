package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateProject(ctx context.Context, project *Project) error
	FindProject(ctx context.Context, projectID snowflake.ID) (*Project, error)
	UpdateProject(ctx context.Context, project *Project) error
	ListProjectsByUser(ctx context.Context, userID snowflake.ID) ([]ProjectListItem, error)

	CreateMembership(ctx context.Context, member *Membership) error
	FindMembership(ctx context.Context, projectID, userID snowflake.ID) (*Membership, error)
	UpdateMembership(ctx context.Context, member *Membership) error
	DeleteMembership(ctx context.Context, projectID, userID snowflake.ID) error
	ListMembers(ctx context.Context, projectID snowflake.ID) ([]MemberListItem, error)

	CreateInvite(ctx context.Context, invite *Invite) error
	FindInviteByCode(ctx context.Context, code string) (*Invite, error)
	UpdateInvite(ctx context.Context, invite *Invite) error

	// EffectiveGrant joins the membership, its role and the role's
	// permission slugs in one read. Returns nil when no membership row
	// exists for the pair.
	EffectiveGrant(ctx context.Context, projectID, userID snowflake.ID) (*MembershipGrant, error)
}
