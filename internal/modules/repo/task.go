package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sitedash-io/sitedash/internal/modules/model"
)

type TaskRepo interface {
	ListByProject(ctx context.Context, projectID string) ([]model.Task, error)
	Get(ctx context.Context, projectID, name string) (*model.Task, error)
	// InsertBatch appends rows best-effort and reports which task names
	// failed, so callers can surface and retry the incomplete subset.
	InsertBatch(ctx context.Context, tasks []model.Task) (inserted int, failed []string, err error)
	Update(ctx context.Context, t *model.Task) error
	DeleteByProject(ctx context.Context, projectID string) (int, error)
}

type taskRepo struct{ db *gorm.DB }

func NewTaskRepo(db *gorm.DB) TaskRepo {
	return &taskRepo{db: db}
}

func (r *taskRepo) ListByProject(ctx context.Context, projectID string) ([]model.Task, error) {
	var items []model.Task
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("step ASC").
		Find(&items).Error
	return items, err
}

func (r *taskRepo) Get(ctx context.Context, projectID, name string) (*model.Task, error) {
	var t model.Task
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND name = ?", projectID, name).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *taskRepo) InsertBatch(ctx context.Context, tasks []model.Task) (int, []string, error) {
	inserted := 0
	var failed []string
	var lastErr error
	for i := range tasks {
		if err := r.db.WithContext(ctx).Create(&tasks[i]).Error; err != nil {
			failed = append(failed, tasks[i].Name)
			lastErr = err
			continue
		}
		inserted++
	}
	return inserted, failed, lastErr
}

func (r *taskRepo) Update(ctx context.Context, t *model.Task) error {
	res := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("project_id = ? AND name = ?", t.ProjectID, t.Name).
		Select("status", "progress", "due_date", "completed_at").
		Updates(map[string]any{
			"status":       t.Status,
			"progress":     t.Progress,
			"due_date":     t.DueDate,
			"completed_at": t.CompletedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *taskRepo) DeleteByProject(ctx context.Context, projectID string) (int, error) {
	res := r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&model.Task{})
	return int(res.RowsAffected), res.Error
}
