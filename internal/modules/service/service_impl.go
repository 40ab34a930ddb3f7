package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/crewbase/crewbase/internal/config"
	"github.com/crewbase/crewbase/internal/modules/domain"
	"go.uber.org/zap"
)

type service struct {
	log    *zap.Logger
	repo   domain.Repository
	policy *config.PolicyHolder
	genID  *snowflake.Node
}

// New builds the module-gate service.
func New(log *zap.Logger, repo domain.Repository, policy *config.PolicyHolder, genID *snowflake.Node) domain.Service {
	return &service{
		log:    log.Named("modules.service"),
		repo:   repo,
		policy: policy,
		genID:  genID,
	}
}

func (s *service) Enable(ctx context.Context, projectID snowflake.ID, key string) error {
	return s.setEnabled(ctx, projectID, key, true)
}

func (s *service) Disable(ctx context.Context, projectID snowflake.ID, key string) error {
	return s.setEnabled(ctx, projectID, key, false)
}

func (s *service) setEnabled(ctx context.Context, projectID snowflake.ID, key string, enabled bool) error {
	if projectID == 0 {
		return domain.ErrInvalidProject
	}
	key = strings.TrimSpace(key)
	if !s.knownModule(key) {
		return domain.ErrUnknownModule
	}

	gate, err := s.repo.Find(ctx, projectID, key)
	if err != nil {
		return err
	}
	if gate == nil {
		gate = &domain.ProjectModule{
			ID:        s.genID.Generate(),
			ProjectID: projectID,
			ModuleKey: key,
			CreatedAt: time.Now().UTC(),
		}
	}
	gate.IsEnabled = enabled

	if err := s.repo.Upsert(ctx, gate); err != nil {
		return err
	}
	s.log.Info("module gate updated",
		zap.String("project_id", projectID.String()),
		zap.String("module", key),
		zap.Bool("enabled", enabled),
	)
	return nil
}

func (s *service) Configure(ctx context.Context, projectID snowflake.ID, key string, cfg map[string]any) error {
	if projectID == 0 {
		return domain.ErrInvalidProject
	}
	key = strings.TrimSpace(key)
	if !s.knownModule(key) {
		return domain.ErrUnknownModule
	}

	gate, err := s.repo.Find(ctx, projectID, key)
	if err != nil {
		return err
	}
	if gate == nil {
		gate = &domain.ProjectModule{
			ID:        s.genID.Generate(),
			ProjectID: projectID,
			ModuleKey: key,
			CreatedAt: time.Now().UTC(),
		}
	}
	gate.Config = cfg
	return s.repo.Upsert(ctx, gate)
}

func (s *service) IsEnabled(ctx context.Context, projectID snowflake.ID, key string) (bool, error) {
	if projectID == 0 {
		return false, nil
	}
	key = strings.TrimSpace(key)
	if !s.knownModule(key) {
		return false, nil
	}

	gate, err := s.repo.Find(ctx, projectID, key)
	if err != nil {
		return false, err
	}
	if gate == nil {
		return false, nil
	}
	return gate.IsEnabled, nil
}

func (s *service) ListForProject(ctx context.Context, projectID snowflake.ID) ([]domain.ModuleInfo, error) {
	if projectID == 0 {
		return nil, domain.ErrInvalidProject
	}

	gates, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]domain.ProjectModule, len(gates))
	for _, g := range gates {
		byKey[g.ModuleKey] = g
	}

	policy := s.policy.Get()
	out := make([]domain.ModuleInfo, 0, len(policy.Modules))
	for _, mod := range policy.Modules {
		info := domain.ModuleInfo{Key: mod.Key, Name: mod.Name}
		if gate, ok := byKey[mod.Key]; ok {
			info.IsEnabled = gate.IsEnabled
			info.Config = gate.Config
		}
		out = append(out, info)
	}
	return out, nil
}

func (s *service) knownModule(key string) bool {
	for _, mod := range s.policy.Get().Modules {
		if mod.Key == key {
			return true
		}
	}
	return false
}
