package service_test

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/crewbase/crewbase/internal/config"
	"github.com/crewbase/crewbase/internal/modules/domain"
	"github.com/crewbase/crewbase/internal/modules/repository"
	"github.com/crewbase/crewbase/internal/modules/service"
	"github.com/crewbase/crewbase/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func setup(t *testing.T) domain.Service {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.ProjectModule{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	holder := config.NewStaticPolicyHolder(config.DefaultPolicyConfig())
	return service.New(zaptest.NewLogger(t), repository.New(conn), holder, node)
}

func TestGateDefaultsToDisabled(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	projectID := snowflake.ID(100)

	enabled, err := svc.IsEnabled(ctx, projectID, "pos")
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestEnableDisableRoundTrip(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	projectID := snowflake.ID(100)

	require.NoError(t, svc.Enable(ctx, projectID, "pos"))
	enabled, err := svc.IsEnabled(ctx, projectID, "pos")
	require.NoError(t, err)
	assert.True(t, enabled)

	// Scoped per project.
	enabled, err = svc.IsEnabled(ctx, snowflake.ID(200), "pos")
	require.NoError(t, err)
	assert.False(t, enabled)

	require.NoError(t, svc.Disable(ctx, projectID, "pos"))
	enabled, err = svc.IsEnabled(ctx, projectID, "pos")
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestUnknownModuleKey(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	projectID := snowflake.ID(100)

	// Mutations reject unknown keys; reads fail closed without error.
	assert.ErrorIs(t, svc.Enable(ctx, projectID, "warp-drive"), domain.ErrUnknownModule)
	assert.ErrorIs(t, svc.Configure(ctx, projectID, "warp-drive", nil), domain.ErrUnknownModule)

	enabled, err := svc.IsEnabled(ctx, projectID, "warp-drive")
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestConfigurePreservesGateState(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	projectID := snowflake.ID(100)

	require.NoError(t, svc.Enable(ctx, projectID, "pos"))
	require.NoError(t, svc.Configure(ctx, projectID, "pos", map[string]any{"receipt_footer": "thanks"}))

	enabled, err := svc.IsEnabled(ctx, projectID, "pos")
	require.NoError(t, err)
	assert.True(t, enabled)

	infos, err := svc.ListForProject(ctx, projectID)
	require.NoError(t, err)
	var pos *domain.ModuleInfo
	for i := range infos {
		if infos[i].Key == "pos" {
			pos = &infos[i]
		}
	}
	require.NotNil(t, pos)
	assert.True(t, pos.IsEnabled)
	assert.Equal(t, "thanks", pos.Config["receipt_footer"])
}

func TestListCoversWholeCatalog(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	infos, err := svc.ListForProject(ctx, snowflake.ID(100))
	require.NoError(t, err)

	keys := make(map[string]bool, len(infos))
	for _, info := range infos {
		keys[info.Key] = true
		assert.False(t, info.IsEnabled, info.Key)
	}
	for _, mod := range config.DefaultPolicyConfig().Modules {
		assert.True(t, keys[mod.Key], mod.Key)
	}
}
