package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/crewbase/crewbase/internal/modules/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Find(ctx context.Context, projectID snowflake.ID, key string) (*domain.ProjectModule, error) {
	var gate domain.ProjectModule
	err := r.db.WithContext(ctx).
		First(&gate, "project_id = ? AND module_key = ?", projectID, key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &gate, nil
}

func (r *repository) Upsert(ctx context.Context, gate *domain.ProjectModule) error {
	gate.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "module_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_enabled", "config", "updated_at"}),
		}).
		Create(gate).Error
}

func (r *repository) ListByProject(ctx context.Context, projectID snowflake.ID) ([]domain.ProjectModule, error) {
	var gates []domain.ProjectModule
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Find(&gates).Error
	if err != nil {
		return nil, err
	}
	return gates, nil
}
