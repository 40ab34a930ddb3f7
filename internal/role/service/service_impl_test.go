package service_test

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/crewbase/crewbase/internal/config"
	"github.com/crewbase/crewbase/internal/permission"
	projectdomain "github.com/crewbase/crewbase/internal/project/domain"
	"github.com/crewbase/crewbase/internal/role/domain"
	"github.com/crewbase/crewbase/internal/role/repository"
	"github.com/crewbase/crewbase/internal/role/service"
	"github.com/crewbase/crewbase/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setup(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&domain.Role{},
		&domain.RolePermission{},
		&projectdomain.Membership{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	catalog := permission.FromPolicy(config.DefaultPolicyConfig())
	svc := service.New(zaptest.NewLogger(t), repository.New(conn), catalog, node)
	return svc, conn
}

func TestCreateRoleValidatesPermissions(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{
		Name:        "Cashier",
		Level:       30,
		Permissions: []string{"sale.view", "nonsense.slug"},
	})
	assert.ErrorIs(t, err, domain.ErrUnknownPermission)

	role, err := svc.Create(ctx, domain.CreateRequest{
		Name:        "Cashier",
		Level:       30,
		Permissions: []string{"sale.view", "sale.create", "sale.view"},
	})
	require.NoError(t, err)
	assert.Equal(t, "cashier", role.Slug)
	assert.ElementsMatch(t, []string{"sale.view", "sale.create"}, role.PermissionSlugs())
}

func TestCreateRoleRejectsDuplicateSlug(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Name: "Cashier"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateRequest{Name: "Cashier"})
	assert.ErrorIs(t, err, domain.ErrSlugTaken)
}

func TestSetPermissionsReplacesWholesale(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	role, err := svc.Create(ctx, domain.CreateRequest{
		Name:        "Cashier",
		Permissions: []string{"sale.view", "sale.create", "payment.view"},
	})
	require.NoError(t, err)

	// Replace, not merge: the old slugs are gone afterwards.
	updated, err := svc.SetPermissions(ctx, role.ID, []string{"sale.view"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sale.view"}, updated.PermissionSlugs())

	// Empty replacement empties the set.
	updated, err = svc.SetPermissions(ctx, role.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, updated.PermissionSlugs())
}

func TestSetPermissionsRejectsUnknownSlug(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	role, err := svc.Create(ctx, domain.CreateRequest{
		Name:        "Cashier",
		Permissions: []string{"sale.view"},
	})
	require.NoError(t, err)

	_, err = svc.SetPermissions(ctx, role.ID, []string{"sale.view", "bogus"})
	assert.ErrorIs(t, err, domain.ErrUnknownPermission)

	// The old set survives the failed replacement.
	current, err := svc.Get(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"sale.view"}, current.PermissionSlugs())
}

func TestDeleteSystemRoleRefused(t *testing.T) {
	svc, conn := setup(t)
	ctx := context.Background()

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	owner := domain.Role{ID: node.Generate(), Name: "Owner", Slug: domain.SlugOwner, Level: 100}
	require.NoError(t, conn.Create(&owner).Error)

	err = svc.Delete(ctx, owner.ID)
	assert.ErrorIs(t, err, domain.ErrSystemRole)
}

func TestDeleteRoleInUseRefused(t *testing.T) {
	svc, conn := setup(t)
	ctx := context.Background()

	role, err := svc.Create(ctx, domain.CreateRequest{Name: "Cashier"})
	require.NoError(t, err)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	member := projectdomain.Membership{
		ID:        node.Generate(),
		ProjectID: node.Generate(),
		UserID:    node.Generate(),
		RoleID:    role.ID,
		Status:    projectdomain.MembershipActive,
	}
	require.NoError(t, conn.Create(&member).Error)

	err = svc.Delete(ctx, role.ID)
	assert.ErrorIs(t, err, domain.ErrRoleInUse)

	require.NoError(t, conn.Delete(&member).Error)
	assert.NoError(t, svc.Delete(ctx, role.ID))
}

func TestLevelBounds(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Name: "Over", Level: 101})
	assert.ErrorIs(t, err, domain.ErrInvalidLevel)

	_, err = svc.Create(ctx, domain.CreateRequest{Name: "Under", Level: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidLevel)
}
