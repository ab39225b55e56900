package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/sitedash-io/sitedash/internal/modules/model"
)

type ExpenseRepo interface {
	ListByProject(ctx context.Context, projectID string) ([]model.Expense, error)
	// Append is the only write path: expenses are never edited or deleted
	// individually, only through the project cascade.
	Append(ctx context.Context, e *model.Expense) error
	DeleteByProject(ctx context.Context, projectID string) (int, error)
}

type expenseRepo struct{ db *gorm.DB }

func NewExpenseRepo(db *gorm.DB) ExpenseRepo {
	return &expenseRepo{db: db}
}

func (r *expenseRepo) ListByProject(ctx context.Context, projectID string) ([]model.Expense, error) {
	var items []model.Expense
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("date ASC, id ASC").
		Find(&items).Error
	return items, err
}

func (r *expenseRepo) Append(ctx context.Context, e *model.Expense) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *expenseRepo) DeleteByProject(ctx context.Context, projectID string) (int, error) {
	res := r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&model.Expense{})
	return int(res.RowsAffected), res.Error
}
