package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/crewbase/crewbase/internal/project/domain"
	roledomain "github.com/crewbase/crewbase/internal/role/domain"
	"github.com/crewbase/crewbase/pkg/db"
	"github.com/gosimple/slug"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	roles roledomain.Repository
	genID *snowflake.Node
}

// New builds the project service.
func New(conn *gorm.DB, log *zap.Logger, repo domain.Repository, roles roledomain.Repository, genID *snowflake.Node) domain.Service {
	return &service{
		db:    conn,
		log:   log.Named("project.service"),
		repo:  repo,
		roles: roles,
		genID: genID,
	}
}

func (s *service) Create(ctx context.Context, ownerID snowflake.ID, req domain.CreateProjectRequest) (*domain.Project, error) {
	if ownerID == 0 {
		return nil, domain.ErrInvalidUser
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	ownerRole, err := s.roles.FindBySlug(ctx, roledomain.SlugOwner)
	if err != nil {
		return nil, err
	}
	if ownerRole == nil {
		return nil, domain.ErrInvalidRole
	}

	now := time.Now().UTC()
	project := &domain.Project{
		ID:        s.genID.Generate(),
		Name:      name,
		Slug:      slug.Make(name),
		OwnerID:   ownerID,
		Status:    domain.ProjectActive,
		Config:    req.Config,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateProject(ctx, project); err != nil {
			return err
		}
		member := &domain.Membership{
			ID:        s.genID.Generate(),
			ProjectID: project.ID,
			UserID:    ownerID,
			RoleID:    ownerRole.ID,
			Status:    domain.MembershipActive,
			JoinedAt:  &now,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return repo.CreateMembership(ctx, member)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("project created",
		zap.String("project_id", project.ID.String()),
		zap.String("owner_id", ownerID.String()),
	)
	return project, nil
}

func (s *service) Get(ctx context.Context, projectID snowflake.ID) (*domain.Project, error) {
	project, err := s.repo.FindProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.ErrNotFound
	}
	return project, nil
}

func (s *service) ListByUser(ctx context.Context, userID snowflake.ID) ([]domain.ProjectListItem, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}
	return s.repo.ListProjectsByUser(ctx, userID)
}

func (s *service) UpdateStatus(ctx context.Context, projectID snowflake.ID, status domain.ProjectStatus) error {
	switch status {
	case domain.ProjectActive, domain.ProjectSuspended, domain.ProjectArchived:
	default:
		return domain.ErrInvalidStatus
	}

	project, err := s.repo.FindProject(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return domain.ErrNotFound
	}

	project.Status = status
	return s.repo.UpdateProject(ctx, project)
}

func (s *service) TransferOwnership(ctx context.Context, projectID, newOwnerID snowflake.ID) error {
	if newOwnerID == 0 {
		return domain.ErrInvalidUser
	}
	project, err := s.repo.FindProject(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return domain.ErrNotFound
	}
	if project.OwnerID == newOwnerID {
		return nil
	}

	ownerRole, err := s.roles.FindBySlug(ctx, roledomain.SlugOwner)
	if err != nil {
		return err
	}
	adminRole, err := s.roles.FindBySlug(ctx, roledomain.SlugAdmin)
	if err != nil {
		return err
	}
	if ownerRole == nil || adminRole == nil {
		return domain.ErrInvalidRole
	}

	previousOwner := project.OwnerID
	now := time.Now().UTC()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		project.OwnerID = newOwnerID
		if err := repo.UpdateProject(ctx, project); err != nil {
			return err
		}

		member, err := repo.FindMembership(ctx, projectID, newOwnerID)
		if err != nil {
			return err
		}
		if member == nil {
			err = repo.CreateMembership(ctx, &domain.Membership{
				ID:        s.genID.Generate(),
				ProjectID: projectID,
				UserID:    newOwnerID,
				RoleID:    ownerRole.ID,
				Status:    domain.MembershipActive,
				JoinedAt:  &now,
				CreatedAt: now,
				UpdatedAt: now,
			})
		} else {
			member.RoleID = ownerRole.ID
			member.Status = domain.MembershipActive
			if member.JoinedAt == nil {
				member.JoinedAt = &now
			}
			err = repo.UpdateMembership(ctx, member)
		}
		if err != nil {
			return err
		}

		// The outgoing owner keeps a membership but loses the owner
		// role, so the seeded all-permission grant moves with the
		// ownership instead of lingering on the old row.
		former, err := repo.FindMembership(ctx, projectID, previousOwner)
		if err != nil {
			return err
		}
		if former == nil {
			return nil
		}
		former.RoleID = adminRole.ID
		return repo.UpdateMembership(ctx, former)
	})
	if err != nil {
		return err
	}

	s.log.Info("project ownership transferred",
		zap.String("project_id", projectID.String()),
		zap.String("previous_owner_id", previousOwner.String()),
		zap.String("new_owner_id", newOwnerID.String()),
	)
	return nil
}

func (s *service) AddMember(ctx context.Context, req domain.AddMemberRequest) (*domain.Membership, error) {
	if req.UserID == 0 {
		return nil, domain.ErrInvalidUser
	}

	project, err := s.repo.FindProject(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.ErrInvalidProject
	}

	role, err := s.roles.FindByID(ctx, req.RoleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, domain.ErrInvalidRole
	}

	// Explicit duplicate pre-check so the caller gets a reportable error;
	// the unique index catches the concurrent-add race underneath.
	existing, err := s.repo.FindMembership(ctx, req.ProjectID, req.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrMemberExists
	}

	now := time.Now().UTC()
	member := &domain.Membership{
		ID:        s.genID.Generate(),
		ProjectID: req.ProjectID,
		UserID:    req.UserID,
		RoleID:    req.RoleID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Invited {
		member.Status = domain.MembershipInvited
		member.InvitedAt = &now
	} else {
		member.Status = domain.MembershipActive
		member.JoinedAt = &now
	}

	if err := s.repo.CreateMembership(ctx, member); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrMemberExists
		}
		return nil, err
	}
	return member, nil
}

func (s *service) InviteMember(ctx context.Context, req domain.InviteMemberRequest) (*domain.Invite, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidEmail
	}

	project, err := s.repo.FindProject(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.ErrInvalidProject
	}

	role, err := s.roles.FindByID(ctx, req.RoleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, domain.ErrInvalidRole
	}

	now := time.Now().UTC()
	invite := &domain.Invite{
		ID:        s.genID.Generate(),
		ProjectID: req.ProjectID,
		Email:     email,
		RoleID:    req.RoleID,
		Code:      ulid.Make().String(),
		Status:    domain.InvitePending,
		InvitedBy: req.InvitedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateInvite(ctx, invite); err != nil {
		return nil, err
	}
	return invite, nil
}

func (s *service) AcceptInvite(ctx context.Context, userID snowflake.ID, code string) (*domain.Membership, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	invite, err := s.repo.FindInviteByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if invite == nil {
		return nil, domain.ErrInviteNotFound
	}
	if invite.Status != domain.InvitePending {
		return nil, domain.ErrInviteConsumed
	}

	now := time.Now().UTC()
	var member *domain.Membership
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindMembership(ctx, invite.ProjectID, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrMemberExists
		}

		member = &domain.Membership{
			ID:        s.genID.Generate(),
			ProjectID: invite.ProjectID,
			UserID:    userID,
			RoleID:    invite.RoleID,
			Status:    domain.MembershipActive,
			InvitedAt: &invite.CreatedAt,
			JoinedAt:  &now,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := repo.CreateMembership(ctx, member); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrMemberExists
			}
			return err
		}

		invite.Status = domain.InviteAccepted
		return repo.UpdateInvite(ctx, invite)
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (s *service) ActivateMember(ctx context.Context, projectID, userID snowflake.ID) error {
	member, err := s.repo.FindMembership(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return domain.ErrNotFound
	}
	if member.Status == domain.MembershipActive {
		return nil
	}

	now := time.Now().UTC()
	member.Status = domain.MembershipActive
	if member.JoinedAt == nil {
		member.JoinedAt = &now
	}
	return s.repo.UpdateMembership(ctx, member)
}

func (s *service) ChangeMemberRole(ctx context.Context, projectID, userID, roleID snowflake.ID) error {
	if err := s.guardOwner(ctx, projectID, userID); err != nil {
		return err
	}

	role, err := s.roles.FindByID(ctx, roleID)
	if err != nil {
		return err
	}
	if role == nil {
		return domain.ErrInvalidRole
	}

	member, err := s.repo.FindMembership(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return domain.ErrNotFound
	}

	member.RoleID = roleID
	return s.repo.UpdateMembership(ctx, member)
}

func (s *service) SuspendMember(ctx context.Context, projectID, userID snowflake.ID) error {
	if err := s.guardOwner(ctx, projectID, userID); err != nil {
		return err
	}

	member, err := s.repo.FindMembership(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return domain.ErrNotFound
	}
	if member.Status == domain.MembershipSuspended {
		return nil
	}

	member.Status = domain.MembershipSuspended
	return s.repo.UpdateMembership(ctx, member)
}

func (s *service) RemoveMember(ctx context.Context, projectID, userID snowflake.ID) error {
	if err := s.guardOwner(ctx, projectID, userID); err != nil {
		return err
	}

	member, err := s.repo.FindMembership(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return domain.ErrNotFound
	}

	if err := s.repo.DeleteMembership(ctx, projectID, userID); err != nil {
		return err
	}
	s.log.Info("project member removed",
		zap.String("project_id", projectID.String()),
		zap.String("user_id", userID.String()),
	)
	return nil
}

func (s *service) ListMembers(ctx context.Context, projectID snowflake.ID) ([]domain.MemberListItem, error) {
	return s.repo.ListMembers(ctx, projectID)
}

func (s *service) guardOwner(ctx context.Context, projectID, userID snowflake.ID) error {
	project, err := s.repo.FindProject(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return domain.ErrInvalidProject
	}
	if project.OwnerID == userID {
		return domain.ErrOwnerMembership
	}
	return nil
}
