package resource

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not_found")

// Repository loads and stores the tenant-scoped operational records. Reads
// are always scoped to a project; a cross-project ID lookup comes back
// ErrNotFound rather than leaking another tenant's row.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindPayment(ctx context.Context, projectID, id snowflake.ID) (*Payment, error)
	ListPayments(ctx context.Context, projectID snowflake.ID) ([]Payment, error)
	CreatePayment(ctx context.Context, p *Payment) error
	SavePayment(ctx context.Context, p *Payment) error

	FindSale(ctx context.Context, projectID, id snowflake.ID) (*Sale, error)
	ListSales(ctx context.Context, projectID snowflake.ID) ([]Sale, error)
	CreateSale(ctx context.Context, s *Sale) error
	SaveSale(ctx context.Context, s *Sale) error
	DeleteSale(ctx context.Context, projectID, id snowflake.ID) error

	FindWorker(ctx context.Context, projectID, id snowflake.ID) (*Worker, error)
	ListWorkers(ctx context.Context, projectID snowflake.ID) ([]Worker, error)
	CreateWorker(ctx context.Context, w *Worker) error

	FindTask(ctx context.Context, projectID, id snowflake.ID) (*Task, error)
	ListTasks(ctx context.Context, projectID snowflake.ID) ([]Task, error)
	CreateTask(ctx context.Context, t *Task) error
	SaveTask(ctx context.Context, t *Task) error
	DeleteTask(ctx context.Context, projectID, id snowflake.ID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) FindPayment(ctx context.Context, projectID, id snowflake.ID) (*Payment, error) {
	var p Payment
	err := r.db.WithContext(ctx).First(&p, "project_id = ? AND id = ?", projectID, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) ListPayments(ctx context.Context, projectID snowflake.ID) ([]Payment, error) {
	var out []Payment
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *repository) CreatePayment(ctx context.Context, p *Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) SavePayment(ctx context.Context, p *Payment) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *repository) FindSale(ctx context.Context, projectID, id snowflake.ID) (*Sale, error) {
	var s Sale
	err := r.db.WithContext(ctx).First(&s, "project_id = ? AND id = ?", projectID, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) ListSales(ctx context.Context, projectID snowflake.ID) ([]Sale, error) {
	var out []Sale
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *repository) CreateSale(ctx context.Context, s *Sale) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *repository) SaveSale(ctx context.Context, s *Sale) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *repository) DeleteSale(ctx context.Context, projectID, id snowflake.ID) error {
	return r.db.WithContext(ctx).
		Where("project_id = ? AND id = ?", projectID, id).
		Delete(&Sale{}).Error
}

func (r *repository) FindWorker(ctx context.Context, projectID, id snowflake.ID) (*Worker, error) {
	var w Worker
	err := r.db.WithContext(ctx).First(&w, "project_id = ? AND id = ?", projectID, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (r *repository) ListWorkers(ctx context.Context, projectID snowflake.ID) ([]Worker, error) {
	var out []Worker
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("full_name ASC").
		Find(&out).Error
	return out, err
}

func (r *repository) CreateWorker(ctx context.Context, w *Worker) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *repository) FindTask(ctx context.Context, projectID, id snowflake.ID) (*Task, error) {
	var t Task
	err := r.db.WithContext(ctx).
		Preload("Worker").
		First(&t, "tasks.project_id = ? AND tasks.id = ?", projectID, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *repository) ListTasks(ctx context.Context, projectID snowflake.ID) ([]Task, error) {
	var out []Task
	err := r.db.WithContext(ctx).
		Preload("Worker").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *repository) CreateTask(ctx context.Context, t *Task) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *repository) SaveTask(ctx context.Context, t *Task) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *repository) DeleteTask(ctx context.Context, projectID, id snowflake.ID) error {
	return r.db.WithContext(ctx).
		Where("project_id = ? AND id = ?", projectID, id).
		Delete(&Task{}).Error
}
