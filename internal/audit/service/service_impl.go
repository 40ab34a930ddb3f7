package service

import (
	"context"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/crewbase/crewbase/internal/audit/domain"
	"github.com/crewbase/crewbase/internal/audit/repository"
	"github.com/crewbase/crewbase/pkg/pagination"
	"go.uber.org/zap"
)

type service struct {
	log   *zap.Logger
	repo  repository.Repository
	genID *snowflake.Node
}

// New builds the activity log service.
func New(log *zap.Logger, repo repository.Repository, genID *snowflake.Node) domain.Service {
	return &service{
		log:   log.Named("audit.service"),
		repo:  repo,
		genID: genID,
	}
}

func (s *service) Record(ctx context.Context, entry domain.Entry) {
	row := &domain.ActivityLog{
		ID:         s.genID.Generate(),
		ProjectID:  entry.ProjectID,
		ActorID:    entry.ActorID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		ModuleKey:  entry.ModuleKey,
		OldValues:  entry.OldValues,
		NewValues:  entry.NewValues,
		Message:    entry.Message,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, row); err != nil {
		s.log.Warn("failed to record activity",
			zap.String("action", entry.Action),
			zap.Error(err),
		)
	}
}

func (s *service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	if req.ProjectID == 0 {
		return domain.ListResponse{}, domain.ErrInvalidProject
	}
	if req.StartAt != nil && req.EndAt != nil && req.EndAt.Before(*req.StartAt) {
		return domain.ListResponse{}, domain.ErrInvalidTimeRange
	}

	limit := req.PageSize
	if limit <= 0 {
		limit = 25
	}

	afterID := ""
	if req.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return domain.ListResponse{}, domain.ErrInvalidPageToken
		}
		afterID = cursor.ID
	}

	logs, err := s.repo.List(ctx, req, limit+1, afterID)
	if err != nil {
		return domain.ListResponse{}, err
	}

	resp := domain.ListResponse{}
	if len(logs) > limit {
		logs = logs[:limit]
		resp.HasMore = true
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID: strconv.FormatInt(logs[len(logs)-1].ID.Int64(), 10),
		})
		if err == nil {
			resp.NextPageToken = token
		}
	}
	resp.Logs = logs
	return resp, nil
}
