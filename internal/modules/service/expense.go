package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/sitedash-io/sitedash/internal/config"
	mq "github.com/sitedash-io/sitedash/internal/infra/queue"
	"github.com/sitedash-io/sitedash/internal/modules/model"
	"github.com/sitedash-io/sitedash/internal/modules/repo"
	"github.com/sitedash-io/sitedash/internal/pkg/metrics"
)

type ExpenseService interface {
	ListByProject(ctx context.Context, projectID string) ([]model.Expense, error)
	Append(ctx context.Context, in AppendExpenseInput) (*model.Expense, error)
}

type expenseService struct {
	expenses  repo.ExpenseRepo
	projects  repo.ProjectRepo
	publisher *mq.Publisher
	cfg       *config.Config
	log       *zap.Logger
}

func NewExpenseService(expenses repo.ExpenseRepo, projects repo.ProjectRepo, publisher *mq.Publisher, cfg *config.Config, log *zap.Logger) ExpenseService {
	return &expenseService{
		expenses:  expenses,
		projects:  projects,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
	}
}

func (s *expenseService) ListByProject(ctx context.Context, projectID string) ([]model.Expense, error) {
	if projectID == "" {
		return nil, validationErr("project id is empty")
	}
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}
	return s.expenses.ListByProject(ctx, projectID)
}

type AppendExpenseInput struct {
	ProjectID   string `json:"project_id"`
	Date        any    `json:"date"`
	Description string `json:"description"`
	Amount      any    `json:"amount"`
	Category    string `json:"category"`
	RecordedBy  string `json:"recorded_by"`
}

func (s *expenseService) Append(ctx context.Context, in AppendExpenseInput) (*model.Expense, error) {
	if in.ProjectID == "" {
		return nil, validationErr("project id is empty")
	}
	amount := metrics.CoerceNumber(in.Amount)
	if amount <= 0 {
		return nil, validationErr("expense amount must be positive")
	}
	if _, err := s.projects.Get(ctx, in.ProjectID); err != nil {
		return nil, err
	}

	e := &model.Expense{
		ProjectID:   in.ProjectID,
		Date:        toDatePtr(in.Date),
		Description: in.Description,
		Amount:      amount,
		Category:    in.Category,
		RecordedBy:  in.RecordedBy,
	}
	if err := s.expenses.Append(ctx, e); err != nil {
		return nil, err
	}

	publishChange(ctx, s.publisher, s.cfg, s.log, model.EventExpenseRecorded, in.ProjectID, e)
	return e, nil
}
