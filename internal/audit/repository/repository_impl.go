package repository

import (
	"context"

	"github.com/crewbase/crewbase/internal/audit/domain"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, log *domain.ActivityLog) error
	List(ctx context.Context, req domain.ListRequest, limit int, afterID string) ([]domain.ActivityLog, error)
}

type repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, log *domain.ActivityLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *repository) List(ctx context.Context, req domain.ListRequest, limit int, afterID string) ([]domain.ActivityLog, error) {
	stmt := r.db.WithContext(ctx).
		Model(&domain.ActivityLog{}).
		Where("project_id = ?", req.ProjectID)

	if req.Action != "" {
		stmt = stmt.Where("action = ?", req.Action)
	}
	if req.EntityType != "" {
		stmt = stmt.Where("entity_type = ?", req.EntityType)
	}
	if req.StartAt != nil {
		stmt = stmt.Where("created_at >= ?", *req.StartAt)
	}
	if req.EndAt != nil {
		stmt = stmt.Where("created_at < ?", *req.EndAt)
	}
	if afterID != "" {
		stmt = stmt.Where("id < ?", afterID)
	}

	var logs []domain.ActivityLog
	err := stmt.Order("id DESC").Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
