package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sitedash-io/sitedash/internal/modules/model"
)

type MaterialRepo interface {
	ListByProject(ctx context.Context, projectID string) ([]model.Material, error)
	Get(ctx context.Context, projectID, item string) (*model.Material, error)
	Create(ctx context.Context, m *model.Material) error
	Update(ctx context.Context, m *model.Material) error
	DeleteByProject(ctx context.Context, projectID string) (int, error)
}

type materialRepo struct{ db *gorm.DB }

func NewMaterialRepo(db *gorm.DB) MaterialRepo {
	return &materialRepo{db: db}
}

func (r *materialRepo) ListByProject(ctx context.Context, projectID string) ([]model.Material, error) {
	var items []model.Material
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("item ASC").
		Find(&items).Error
	return items, err
}

func (r *materialRepo) Get(ctx context.Context, projectID, item string) (*model.Material, error) {
	var m model.Material
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND item = ?", projectID, item).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *materialRepo) Create(ctx context.Context, m *model.Material) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *materialRepo) Update(ctx context.Context, m *model.Material) error {
	res := r.db.WithContext(ctx).
		Model(&model.Material{}).
		Where("project_id = ? AND item = ?", m.ProjectID, m.Item).
		Updates(map[string]any{
			"required":   m.Required,
			"dispatched": m.Dispatched,
			"unit":       m.Unit,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *materialRepo) DeleteByProject(ctx context.Context, projectID string) (int, error) {
	res := r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&model.Material{})
	return int(res.RowsAffected), res.Error
}
