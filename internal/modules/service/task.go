package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/sitedash-io/sitedash/internal/config"
	mq "github.com/sitedash-io/sitedash/internal/infra/queue"
	"github.com/sitedash-io/sitedash/internal/modules/model"
	"github.com/sitedash-io/sitedash/internal/modules/repo"
	"github.com/sitedash-io/sitedash/internal/pkg/dates"
)

type TaskService interface {
	ListByProject(ctx context.Context, projectID string) ([]model.Task, error)
	UpdateStatus(ctx context.Context, in UpdateTaskStatusInput) (*model.Task, error)
	UpdateProgress(ctx context.Context, in UpdateTaskProgressInput) (*model.Task, error)
	// Template returns the fixed workflow every project starts from.
	Template() []model.WorkflowStep
}

type taskService struct {
	tasks     repo.TaskRepo
	projects  repo.ProjectRepo
	publisher *mq.Publisher
	cfg       *config.Config
	log       *zap.Logger
}

func NewTaskService(tasks repo.TaskRepo, projects repo.ProjectRepo, publisher *mq.Publisher, cfg *config.Config, log *zap.Logger) TaskService {
	return &taskService{
		tasks:     tasks,
		projects:  projects,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
	}
}

func (s *taskService) ListByProject(ctx context.Context, projectID string) ([]model.Task, error) {
	if projectID == "" {
		return nil, validationErr("project id is empty")
	}
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}
	return s.tasks.ListByProject(ctx, projectID)
}

type UpdateTaskStatusInput struct {
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	// DueDate accepts serials and ISO strings alike; nil leaves it unset.
	DueDate any `json:"due_date"`
}

func (s *taskService) UpdateStatus(ctx context.Context, in UpdateTaskStatusInput) (*model.Task, error) {
	if in.ProjectID == "" || in.Name == "" {
		return nil, validationErr("project id and task name are required")
	}
	status, ok := model.NormalizeStatus(in.Status)
	if !ok {
		return nil, validationErr("unknown status %q", in.Status)
	}

	t, err := s.tasks.Get(ctx, in.ProjectID, in.Name)
	if err != nil {
		return nil, err
	}

	t.Status = status
	if in.DueDate != nil {
		t.DueDate = toDatePtr(in.DueDate)
	}
	if status == model.StatusCompleted {
		if t.CompletedAt == nil {
			now := dates.Today().Time()
			t.CompletedAt = &now
		}
		if t.Progress != nil {
			full := 100
			t.Progress = &full
		}
	} else {
		// Reopening clears the completion stamp.
		t.CompletedAt = nil
	}

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}

	publishChange(ctx, s.publisher, s.cfg, s.log, model.EventTaskUpdated, in.ProjectID, t)
	return t, nil
}

type UpdateTaskProgressInput struct {
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	Progress  int    `json:"progress"`
}

func (s *taskService) UpdateProgress(ctx context.Context, in UpdateTaskProgressInput) (*model.Task, error) {
	if in.ProjectID == "" || in.Name == "" {
		return nil, validationErr("project id and task name are required")
	}
	if in.Progress < 0 || in.Progress > 100 {
		return nil, validationErr("progress must be within 0..100, got %d", in.Progress)
	}

	t, err := s.tasks.Get(ctx, in.ProjectID, in.Name)
	if err != nil {
		return nil, err
	}

	p := in.Progress
	t.Progress = &p
	switch {
	case p >= 100:
		t.Status = model.StatusCompleted
		if t.CompletedAt == nil {
			now := dates.Today().Time()
			t.CompletedAt = &now
		}
	case t.Status == model.StatusCompleted:
		// Progress dropped below 100: the task is open again.
		t.Status = model.StatusInProgress
		t.CompletedAt = nil
	case p > 0 && t.Status == model.StatusPending:
		t.Status = model.StatusInProgress
	}

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}

	publishChange(ctx, s.publisher, s.cfg, s.log, model.EventTaskUpdated, in.ProjectID, t)
	return t, nil
}

func (s *taskService) Template() []model.WorkflowStep {
	return model.WorkflowTemplate()
}
