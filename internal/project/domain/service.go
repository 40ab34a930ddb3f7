package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, ownerID snowflake.ID, req CreateProjectRequest) (*Project, error)
	Get(ctx context.Context, projectID snowflake.ID) (*Project, error)
	ListByUser(ctx context.Context, userID snowflake.ID) ([]ProjectListItem, error)
	UpdateStatus(ctx context.Context, projectID snowflake.ID, status ProjectStatus) error
	TransferOwnership(ctx context.Context, projectID, newOwnerID snowflake.ID) error

	AddMember(ctx context.Context, req AddMemberRequest) (*Membership, error)
	InviteMember(ctx context.Context, req InviteMemberRequest) (*Invite, error)
	AcceptInvite(ctx context.Context, userID snowflake.ID, code string) (*Membership, error)
	ActivateMember(ctx context.Context, projectID, userID snowflake.ID) error
	ChangeMemberRole(ctx context.Context, projectID, userID, roleID snowflake.ID) error
	SuspendMember(ctx context.Context, projectID, userID snowflake.ID) error
	RemoveMember(ctx context.Context, projectID, userID snowflake.ID) error
	ListMembers(ctx context.Context, projectID snowflake.ID) ([]MemberListItem, error)
}

type CreateProjectRequest struct {
	Name   string
	Config map[string]any
}

type AddMemberRequest struct {
	ProjectID snowflake.ID
	UserID    snowflake.ID
	RoleID    snowflake.ID
	// Invited adds the member in the invited state instead of active.
	Invited bool
}

type InviteMemberRequest struct {
	ProjectID snowflake.ID
	Email     string
	RoleID    snowflake.ID
	InvitedBy snowflake.ID
}

type ProjectListItem struct {
	ID        snowflake.ID
	Name      string
	Slug      string
	Status    ProjectStatus
	RoleSlug  string
	IsOwner   bool
	CreatedAt time.Time
}

type MemberListItem struct {
	UserID      snowflake.ID
	Email       string
	DisplayName string
	RoleID      snowflake.ID
	RoleSlug    string
	Status      MembershipStatus
	JoinedAt    *time.Time
}

var (
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidProject = errors.New("invalid_project")
	ErrInvalidUser    = errors.New("invalid_user")
	ErrInvalidRole    = errors.New("invalid_role")
	ErrInvalidEmail   = errors.New("invalid_email")
	ErrInvalidStatus  = errors.New("invalid_status")
	ErrNotFound       = errors.New("not_found")
	ErrInviteNotFound = errors.New("invite_not_found")
	ErrInviteConsumed = errors.New("invite_consumed")

	// ErrMemberExists backs the user-visible duplicate-membership error.
	// The unique (project_id, user_id) index is the backstop for the race
	// between two concurrent adds.
	ErrMemberExists = errors.New("member_exists")

	// ErrOwnerMembership guards the owner's membership row from role
	// changes, suspension and removal; ownership moves via
	// TransferOwnership instead.
	ErrOwnerMembership = errors.New("owner_membership")
)
