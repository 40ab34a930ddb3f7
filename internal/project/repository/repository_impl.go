package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/crewbase/crewbase/internal/project/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) CreateProject(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *repository) FindProject(ctx context.Context, projectID snowflake.ID) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).First(&project, "id = ?", projectID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

func (r *repository) UpdateProject(ctx context.Context, project *domain.Project) error {
	project.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(project).Error
}

func (r *repository) ListProjectsByUser(ctx context.Context, userID snowflake.ID) ([]domain.ProjectListItem, error) {
	var items []domain.ProjectListItem
	err := r.db.WithContext(ctx).Raw(
		`SELECT p.id, p.name, p.slug, p.status, p.created_at,
		        COALESCE(r.slug, '') AS role_slug,
		        (p.owner_id = ?) AS is_owner
		 FROM projects p
		 LEFT JOIN project_members m ON m.project_id = p.id AND m.user_id = ?
		 LEFT JOIN roles r ON r.id = m.role_id
		 WHERE p.owner_id = ? OR m.user_id IS NOT NULL
		 ORDER BY p.created_at ASC`,
		userID, userID, userID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) CreateMembership(ctx context.Context, member *domain.Membership) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *repository) FindMembership(ctx context.Context, projectID, userID snowflake.ID) (*domain.Membership, error) {
	var member domain.Membership
	err := r.db.WithContext(ctx).
		First(&member, "project_id = ? AND user_id = ?", projectID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (r *repository) UpdateMembership(ctx context.Context, member *domain.Membership) error {
	member.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(member).Error
}

func (r *repository) DeleteMembership(ctx context.Context, projectID, userID snowflake.ID) error {
	return r.db.WithContext(ctx).
		Delete(&domain.Membership{}, "project_id = ? AND user_id = ?", projectID, userID).Error
}

func (r *repository) ListMembers(ctx context.Context, projectID snowflake.ID) ([]domain.MemberListItem, error) {
	var items []domain.MemberListItem
	err := r.db.WithContext(ctx).Raw(
		`SELECT m.user_id, u.email, u.display_name, m.role_id, m.status, m.joined_at,
		        COALESCE(r.slug, '') AS role_slug
		 FROM project_members m
		 JOIN users u ON u.id = m.user_id
		 LEFT JOIN roles r ON r.id = m.role_id
		 WHERE m.project_id = ?
		 ORDER BY m.created_at ASC`,
		projectID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) CreateInvite(ctx context.Context, invite *domain.Invite) error {
	return r.db.WithContext(ctx).Create(invite).Error
}

func (r *repository) FindInviteByCode(ctx context.Context, code string) (*domain.Invite, error) {
	var invite domain.Invite
	err := r.db.WithContext(ctx).First(&invite, "code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invite, nil
}

func (r *repository) UpdateInvite(ctx context.Context, invite *domain.Invite) error {
	invite.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(invite).Error
}

// grantRow is the flat scan target for the membership+role join.
type grantRow struct {
	MembershipID snowflake.ID            `gorm:"column:membership_id"`
	ProjectID    snowflake.ID            `gorm:"column:project_id"`
	UserID       snowflake.ID            `gorm:"column:user_id"`
	RoleID       snowflake.ID            `gorm:"column:role_id"`
	RoleSlug     string                  `gorm:"column:role_slug"`
	Status       domain.MembershipStatus `gorm:"column:status"`
}

func (r *repository) EffectiveGrant(ctx context.Context, projectID, userID snowflake.ID) (*domain.MembershipGrant, error) {
	var row grantRow
	err := r.db.WithContext(ctx).Raw(
		`SELECT m.id AS membership_id, m.project_id, m.user_id, m.role_id, m.status,
		        COALESCE(r.slug, '') AS role_slug
		 FROM project_members m
		 LEFT JOIN roles r ON r.id = m.role_id
		 WHERE m.project_id = ? AND m.user_id = ?
		 LIMIT 1`,
		projectID, userID,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.MembershipID == 0 {
		return nil, nil
	}

	grant := &domain.MembershipGrant{
		MembershipID: row.MembershipID,
		ProjectID:    row.ProjectID,
		UserID:       row.UserID,
		RoleID:       row.RoleID,
		RoleSlug:     row.RoleSlug,
		Status:       row.Status,
		Permissions:  make(map[string]struct{}),
	}

	// A membership whose role was deleted keeps its row but resolves to an
	// empty permission set.
	var slugs []string
	err = r.db.WithContext(ctx).Raw(
		`SELECT permission_slug FROM role_permissions WHERE role_id = ?`,
		row.RoleID,
	).Scan(&slugs).Error
	if err != nil {
		return nil, err
	}
	for _, s := range slugs {
		grant.Permissions[s] = struct{}{}
	}
	return grant, nil
}
