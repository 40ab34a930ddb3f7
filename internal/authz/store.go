package authz

import (
	"context"

	"github.com/bwmarrin/snowflake"
	modulesdomain "github.com/crewbase/crewbase/internal/modules/domain"
	projectdomain "github.com/crewbase/crewbase/internal/project/domain"
)

// repoStore adapts the project repository and module service into the
// engine's read interface.
type repoStore struct {
	projects projectdomain.Repository
	modules  modulesdomain.Service
}

func NewStore(projects projectdomain.Repository, modules modulesdomain.Service) Store {
	return &repoStore{projects: projects, modules: modules}
}

func (s *repoStore) Project(ctx context.Context, projectID snowflake.ID) (*projectdomain.Project, error) {
	return s.projects.FindProject(ctx, projectID)
}

func (s *repoStore) EffectiveGrant(ctx context.Context, projectID, userID snowflake.ID) (*projectdomain.MembershipGrant, error) {
	return s.projects.EffectiveGrant(ctx, projectID, userID)
}

func (s *repoStore) ModuleEnabled(ctx context.Context, projectID snowflake.ID, key string) (bool, error) {
	return s.modules.IsEnabled(ctx, projectID, key)
}
