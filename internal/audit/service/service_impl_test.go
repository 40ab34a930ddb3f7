package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/crewbase/crewbase/internal/audit/domain"
	"github.com/crewbase/crewbase/internal/audit/repository"
	"github.com/crewbase/crewbase/internal/audit/service"
	"github.com/crewbase/crewbase/pkg/db"
	"github.com/crewbase/crewbase/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func setup(t *testing.T) domain.Service {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.ActivityLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return service.New(zaptest.NewLogger(t), repository.New(conn), node)
}

func TestListPaginates(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	projectID := snowflake.ID(100)

	for i := 0; i < 7; i++ {
		svc.Record(ctx, domain.Entry{
			ProjectID:  &projectID,
			Action:     "sale.created",
			EntityType: "sale",
			Message:    fmt.Sprintf("entry %d", i),
		})
	}

	page1, err := svc.List(ctx, domain.ListRequest{
		Pagination: pagination.Pagination{PageSize: 5},
		ProjectID:  projectID,
	})
	require.NoError(t, err)
	assert.Len(t, page1.Logs, 5)
	assert.True(t, page1.HasMore)
	require.NotEmpty(t, page1.NextPageToken)

	page2, err := svc.List(ctx, domain.ListRequest{
		Pagination: pagination.Pagination{PageSize: 5, PageToken: page1.NextPageToken},
		ProjectID:  projectID,
	})
	require.NoError(t, err)
	assert.Len(t, page2.Logs, 2)
	assert.False(t, page2.HasMore)

	// Newest first, no overlap between pages.
	seen := map[string]bool{}
	for _, l := range append(page1.Logs, page2.Logs...) {
		id := l.ID.String()
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestListScopedByProject(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	pa, pb := snowflake.ID(100), snowflake.ID(200)

	svc.Record(ctx, domain.Entry{ProjectID: &pa, Action: "sale.created", EntityType: "sale"})
	svc.Record(ctx, domain.Entry{ProjectID: &pb, Action: "sale.created", EntityType: "sale"})

	resp, err := svc.List(ctx, domain.ListRequest{ProjectID: pa})
	require.NoError(t, err)
	assert.Len(t, resp.Logs, 1)
}

func TestListValidation(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	_, err := svc.List(ctx, domain.ListRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidProject)

	_, err = svc.List(ctx, domain.ListRequest{
		ProjectID:  snowflake.ID(100),
		Pagination: pagination.Pagination{PageToken: "!!!not-base64!!!"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPageToken)
}
