package service_test

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	identitydomain "github.com/crewbase/crewbase/internal/identity/domain"
	"github.com/crewbase/crewbase/internal/project/domain"
	"github.com/crewbase/crewbase/internal/project/repository"
	"github.com/crewbase/crewbase/internal/project/service"
	roledomain "github.com/crewbase/crewbase/internal/role/domain"
	rolerepository "github.com/crewbase/crewbase/internal/role/repository"
	"github.com/crewbase/crewbase/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type fixture struct {
	svc   domain.Service
	repo  domain.Repository
	conn  *gorm.DB
	node  *snowflake.Node
	roles map[string]snowflake.ID
}

func setup(t *testing.T) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&identitydomain.User{},
		&domain.Project{},
		&domain.Membership{},
		&domain.Invite{},
		&roledomain.Role{},
		&roledomain.RolePermission{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	roles := map[string]snowflake.ID{}
	for slug, level := range map[string]int{
		roledomain.SlugOwner:  100,
		roledomain.SlugAdmin:  80,
		roledomain.SlugMember: 40,
	} {
		role := roledomain.Role{ID: node.Generate(), Name: slug, Slug: slug, Level: level}
		require.NoError(t, conn.Create(&role).Error)
		roles[slug] = role.ID
		for _, p := range []string{"sale.view", "payment.view"} {
			require.NoError(t, conn.Create(&roledomain.RolePermission{RoleID: role.ID, PermissionSlug: p}).Error)
		}
	}

	repo := repository.New(conn)
	svc := service.New(conn, zaptest.NewLogger(t), repo, rolerepository.New(conn), node)
	return &fixture{svc: svc, repo: repo, conn: conn, node: node, roles: roles}
}

func TestCreateProjectSeedsOwnerMembership(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ownerID := f.node.Generate()

	project, err := f.svc.Create(ctx, ownerID, domain.CreateProjectRequest{Name: "Corner Shop"})
	require.NoError(t, err)
	assert.Equal(t, ownerID, project.OwnerID)
	assert.Equal(t, "corner-shop", project.Slug)

	member, err := f.repo.FindMembership(ctx, project.ID, ownerID)
	require.NoError(t, err)
	require.NotNil(t, member)
	assert.Equal(t, domain.MembershipActive, member.Status)
	assert.Equal(t, f.roles[roledomain.SlugOwner], member.RoleID)
}

func TestAddMemberRejectsDuplicate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	project, err := f.svc.Create(ctx, f.node.Generate(), domain.CreateProjectRequest{Name: "Corner Shop"})
	require.NoError(t, err)

	userID := f.node.Generate()
	_, err = f.svc.AddMember(ctx, domain.AddMemberRequest{
		ProjectID: project.ID,
		UserID:    userID,
		RoleID:    f.roles[roledomain.SlugMember],
	})
	require.NoError(t, err)

	_, err = f.svc.AddMember(ctx, domain.AddMemberRequest{
		ProjectID: project.ID,
		UserID:    userID,
		RoleID:    f.roles[roledomain.SlugMember],
	})
	assert.ErrorIs(t, err, domain.ErrMemberExists)

	var rows int64
	require.NoError(t, f.conn.Model(&domain.Membership{}).
		Where("project_id = ? AND user_id = ?", project.ID, userID).
		Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestOwnerMembershipIsGuarded(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ownerID := f.node.Generate()

	project, err := f.svc.Create(ctx, ownerID, domain.CreateProjectRequest{Name: "Corner Shop"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.SuspendMember(ctx, project.ID, ownerID), domain.ErrOwnerMembership)
	assert.ErrorIs(t, f.svc.RemoveMember(ctx, project.ID, ownerID), domain.ErrOwnerMembership)
	assert.ErrorIs(t, f.svc.ChangeMemberRole(ctx, project.ID, ownerID, f.roles[roledomain.SlugMember]), domain.ErrOwnerMembership)
}

func TestMembershipLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	project, err := f.svc.Create(ctx, f.node.Generate(), domain.CreateProjectRequest{Name: "Corner Shop"})
	require.NoError(t, err)

	userID := f.node.Generate()
	member, err := f.svc.AddMember(ctx, domain.AddMemberRequest{
		ProjectID: project.ID,
		UserID:    userID,
		RoleID:    f.roles[roledomain.SlugMember],
		Invited:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MembershipInvited, member.Status)
	assert.False(t, member.IsActive())

	require.NoError(t, f.svc.ActivateMember(ctx, project.ID, userID))
	current, err := f.repo.FindMembership(ctx, project.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.MembershipActive, current.Status)
	assert.NotNil(t, current.JoinedAt)

	require.NoError(t, f.svc.SuspendMember(ctx, project.ID, userID))
	current, err = f.repo.FindMembership(ctx, project.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.MembershipSuspended, current.Status)

	require.NoError(t, f.svc.RemoveMember(ctx, project.ID, userID))
	current, err = f.repo.FindMembership(ctx, project.ID, userID)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestInviteFlow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ownerID := f.node.Generate()

	project, err := f.svc.Create(ctx, ownerID, domain.CreateProjectRequest{Name: "Corner Shop"})
	require.NoError(t, err)

	invite, err := f.svc.InviteMember(ctx, domain.InviteMemberRequest{
		ProjectID: project.ID,
		Email:     "New.Hire@Example.com",
		RoleID:    f.roles[roledomain.SlugMember],
		InvitedBy: ownerID,
	})
	require.NoError(t, err)
	assert.Equal(t, "new.hire@example.com", invite.Email)
	assert.NotEmpty(t, invite.Code)

	inviteeID := f.node.Generate()
	member, err := f.svc.AcceptInvite(ctx, inviteeID, invite.Code)
	require.NoError(t, err)
	assert.Equal(t, domain.MembershipActive, member.Status)
	assert.Equal(t, f.roles[roledomain.SlugMember], member.RoleID)

	// The code is single-use.
	_, err = f.svc.AcceptInvite(ctx, f.node.Generate(), invite.Code)
	assert.ErrorIs(t, err, domain.ErrInviteConsumed)
}

func TestEffectiveGrantResolution(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ownerID := f.node.Generate()

	project, err := f.svc.Create(ctx, ownerID, domain.CreateProjectRequest{Name: "Corner Shop"})
	require.NoError(t, err)

	// No membership row at all.
	grant, err := f.repo.EffectiveGrant(ctx, project.ID, f.node.Generate())
	require.NoError(t, err)
	assert.Nil(t, grant)

	userID := f.node.Generate()
	_, err = f.svc.AddMember(ctx, domain.AddMemberRequest{
		ProjectID: project.ID,
		UserID:    userID,
		RoleID:    f.roles[roledomain.SlugMember],
	})
	require.NoError(t, err)

	grant, err = f.repo.EffectiveGrant(ctx, project.ID, userID)
	require.NoError(t, err)
	require.NotNil(t, grant)
	assert.True(t, grant.IsActive())
	assert.True(t, grant.HasPermission("sale.view"))
	assert.False(t, grant.HasPermission("sale.delete"))

	// Deleting the role out from under the membership leaves an active
	// grant with an empty permission set.
	require.NoError(t, f.conn.Where("role_id = ?", f.roles[roledomain.SlugMember]).Delete(&roledomain.RolePermission{}).Error)
	require.NoError(t, f.conn.Delete(&roledomain.Role{}, "id = ?", f.roles[roledomain.SlugMember]).Error)

	grant, err = f.repo.EffectiveGrant(ctx, project.ID, userID)
	require.NoError(t, err)
	require.NotNil(t, grant)
	assert.True(t, grant.IsActive())
	assert.False(t, grant.HasPermission("sale.view"))
}

func TestTransferOwnership(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ownerID := f.node.Generate()

	project, err := f.svc.Create(ctx, ownerID, domain.CreateProjectRequest{Name: "Corner Shop"})
	require.NoError(t, err)

	newOwnerID := f.node.Generate()
	require.NoError(t, f.svc.TransferOwnership(ctx, project.ID, newOwnerID))

	updated, err := f.svc.Get(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, newOwnerID, updated.OwnerID)

	member, err := f.repo.FindMembership(ctx, project.ID, newOwnerID)
	require.NoError(t, err)
	require.NotNil(t, member)
	assert.Equal(t, f.roles[roledomain.SlugOwner], member.RoleID)
	assert.Equal(t, domain.MembershipActive, member.Status)
}

func TestTransferOwnershipDemotesPreviousOwner(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ownerID := f.node.Generate()

	project, err := f.svc.Create(ctx, ownerID, domain.CreateProjectRequest{Name: "Corner Shop"})
	require.NoError(t, err)

	newOwnerID := f.node.Generate()
	require.NoError(t, f.svc.TransferOwnership(ctx, project.ID, newOwnerID))

	former, err := f.repo.FindMembership(ctx, project.ID, ownerID)
	require.NoError(t, err)
	require.NotNil(t, former)
	assert.Equal(t, f.roles[roledomain.SlugAdmin], former.RoleID)
	assert.Equal(t, domain.MembershipActive, former.Status)

	grant, err := f.repo.EffectiveGrant(ctx, project.ID, ownerID)
	require.NoError(t, err)
	require.NotNil(t, grant)
	assert.Equal(t, roledomain.SlugAdmin, grant.RoleSlug)
}
