package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/sitedash-io/sitedash/internal/modules/model"
)

type ProjectRepo interface {
	List(ctx context.Context, afterCreatedAt time.Time, afterID string, limit int, timeDesc bool) ([]model.Project, error)
	ListIDs(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id string) (*model.Project, error)
	Create(ctx context.Context, p *model.Project) error
	Update(ctx context.Context, p *model.Project) error
	Delete(ctx context.Context, id string) (int, error)
}

type projectRepo struct{ db *gorm.DB }

func NewProjectRepo(db *gorm.DB) ProjectRepo {
	return &projectRepo{db: db}
}

func (r *projectRepo) List(ctx context.Context, afterCreatedAt time.Time, afterID string, limit int, timeDesc bool) ([]model.Project, error) {
	q := r.db.WithContext(ctx).Model(&model.Project{})

	if !afterCreatedAt.IsZero() && afterID != "" {
		comparisonOp := ">"
		if timeDesc {
			comparisonOp = "<"
		}
		q = q.Where(
			"(created_at "+comparisonOp+" ?) OR (created_at = ? AND id "+comparisonOp+" ?)",
			afterCreatedAt, afterCreatedAt, afterID,
		)
	}

	orderBy := "created_at ASC, id ASC"
	if timeDesc {
		orderBy = "created_at DESC, id DESC"
	}

	var items []model.Project
	query := q.Order(orderBy)
	if limit > 0 {
		query = query.Limit(limit)
	}
	return items, query.Find(&items).Error
}

func (r *projectRepo) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Project{}).Pluck("id", &ids).Error
	return ids, err
}

func (r *projectRepo) Get(ctx context.Context, id string) (*model.Project, error) {
	var p model.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) Create(ctx context.Context, p *model.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *projectRepo) Update(ctx context.Context, p *model.Project) error {
	// full-field replace, matching the edit-form semantics
	res := r.db.WithContext(ctx).Model(&model.Project{ID: p.ID}).Select("*").
		Omit("id", "created_at").Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *projectRepo) Delete(ctx context.Context, id string) (int, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Project{})
	return int(res.RowsAffected), res.Error
}
