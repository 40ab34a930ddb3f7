package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/crewbase/crewbase/internal/permission"
	"github.com/crewbase/crewbase/internal/role/domain"
	"github.com/crewbase/crewbase/pkg/db"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

type service struct {
	log     *zap.Logger
	repo    domain.Repository
	catalog *permission.Catalog
	genID   *snowflake.Node
}

// New builds the role service.
func New(log *zap.Logger, repo domain.Repository, catalog *permission.Catalog, genID *snowflake.Node) domain.Service {
	return &service{
		log:     log.Named("role.service"),
		repo:    repo,
		catalog: catalog,
		genID:   genID,
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Role, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if req.Level < 0 || req.Level > 100 {
		return nil, domain.ErrInvalidLevel
	}

	slugs, err := s.normalizeSlugs(req.Permissions)
	if err != nil {
		return nil, err
	}

	roleSlug := slug.Make(name)
	existing, err := s.repo.FindBySlug(ctx, roleSlug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrSlugTaken
	}

	role := &domain.Role{
		ID:          s.genID.Generate(),
		Name:        name,
		Slug:        roleSlug,
		Level:       req.Level,
		Description: strings.TrimSpace(req.Description),
	}
	for _, p := range slugs {
		role.Permissions = append(role.Permissions, domain.RolePermission{
			RoleID:         role.ID,
			PermissionSlug: p,
		})
	}

	if err := s.repo.Create(ctx, role); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSlugTaken
		}
		return nil, err
	}
	return role, nil
}

func (s *service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Role, error) {
	role, err := s.repo.FindByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		role.Name = name
	}
	if req.Level != nil {
		if *req.Level < 0 || *req.Level > 100 {
			return nil, domain.ErrInvalidLevel
		}
		role.Level = *req.Level
	}
	if req.Description != nil {
		role.Description = strings.TrimSpace(*req.Description)
	}

	if err := s.repo.Update(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *service) SetPermissions(ctx context.Context, roleID snowflake.ID, slugs []string) (*domain.Role, error) {
	role, err := s.repo.FindByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, domain.ErrNotFound
	}

	normalized, err := s.normalizeSlugs(slugs)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ReplacePermissions(ctx, roleID, normalized); err != nil {
		return nil, err
	}

	s.log.Info("role permissions replaced",
		zap.String("role_id", roleID.String()),
		zap.String("role_slug", role.Slug),
		zap.Int("count", len(normalized)),
	)
	return s.repo.FindByID(ctx, roleID)
}

func (s *service) Delete(ctx context.Context, roleID snowflake.ID) error {
	role, err := s.repo.FindByID(ctx, roleID)
	if err != nil {
		return err
	}
	if role == nil {
		return domain.ErrNotFound
	}
	if role.IsSystem() {
		return domain.ErrSystemRole
	}

	inUse, err := s.repo.CountMemberships(ctx, roleID)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return domain.ErrRoleInUse
	}

	return s.repo.Delete(ctx, roleID)
}

func (s *service) Get(ctx context.Context, roleID snowflake.ID) (*domain.Role, error) {
	role, err := s.repo.FindByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, domain.ErrNotFound
	}
	return role, nil
}

func (s *service) GetBySlug(ctx context.Context, roleSlug string) (*domain.Role, error) {
	role, err := s.repo.FindBySlug(ctx, strings.TrimSpace(roleSlug))
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, domain.ErrNotFound
	}
	return role, nil
}

func (s *service) List(ctx context.Context) ([]domain.Role, error) {
	return s.repo.List(ctx)
}

// normalizeSlugs validates every slug against the catalog and deduplicates
// while keeping order.
func (s *service) normalizeSlugs(slugs []string) ([]string, error) {
	seen := make(map[string]bool, len(slugs))
	out := make([]string, 0, len(slugs))
	for _, raw := range slugs {
		p := strings.TrimSpace(raw)
		if p == "" || seen[p] {
			continue
		}
		if !s.catalog.Exists(p) {
			return nil, domain.ErrUnknownPermission
		}
		seen[p] = true
		out = append(out, p)
	}
	return out, nil
}
