package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/sitedash-io/sitedash/internal/config"
	mq "github.com/sitedash-io/sitedash/internal/infra/queue"
	"github.com/sitedash-io/sitedash/internal/modules/model"
	"github.com/sitedash-io/sitedash/internal/modules/repo"
	"github.com/sitedash-io/sitedash/internal/pkg/dates"
	"github.com/sitedash-io/sitedash/internal/pkg/ids"
	"github.com/sitedash-io/sitedash/internal/pkg/metrics"
	"github.com/sitedash-io/sitedash/internal/pkg/paging"
)

type ProjectService interface {
	List(ctx context.Context, in ListProjectsInput) (*ListProjectsOutput, error)
	Get(ctx context.Context, id string) (*model.Project, error)
	// Create writes the project and seeds its workflow tasks. A returned
	// *PartialFailure means the project exists but some tasks did not land.
	Create(ctx context.Context, in CreateProjectInput) (*model.Project, error)
	Update(ctx context.Context, id string, in UpdateProjectInput) (*model.Project, error)
	// Delete cascades over tasks, expenses and materials before removing
	// the project row itself.
	Delete(ctx context.Context, id string) error
}

type projectService struct {
	projects  repo.ProjectRepo
	tasks     repo.TaskRepo
	expenses  repo.ExpenseRepo
	materials repo.MaterialRepo
	publisher *mq.Publisher
	cfg       *config.Config
	log       *zap.Logger
}

func NewProjectService(
	projects repo.ProjectRepo,
	tasks repo.TaskRepo,
	expenses repo.ExpenseRepo,
	materials repo.MaterialRepo,
	publisher *mq.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) ProjectService {
	return &projectService{
		projects:  projects,
		tasks:     tasks,
		expenses:  expenses,
		materials: materials,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
	}
}

type ListProjectsInput struct {
	Limit    int    `json:"limit"`
	Cursor   string `json:"cursor"`
	TimeDesc bool   `json:"time_desc"`
}

type ListProjectsOutput struct {
	Items      []model.Project `json:"items"`
	NextCursor string          `json:"next_cursor,omitempty"`
	HasMore    bool            `json:"has_more"`
}

func (s *projectService) List(ctx context.Context, in ListProjectsInput) (*ListProjectsOutput, error) {
	var afterT time.Time
	var afterID string
	var err error
	if in.Cursor != "" {
		afterT, afterID, err = paging.DecodeCursor(in.Cursor)
		if err != nil {
			return nil, err
		}
	}

	// Query limit+1 is used to determine has_more
	items, err := s.projects.List(ctx, afterT, afterID, in.Limit+1, in.TimeDesc)
	if err != nil {
		return nil, err
	}

	out := &ListProjectsOutput{Items: items}
	if len(items) > in.Limit {
		out.HasMore = true
		out.Items = items[:in.Limit]
		last := out.Items[len(out.Items)-1]
		out.NextCursor = paging.EncodeCursor(last.CreatedAt, last.ID)
	}
	return out, nil
}

func (s *projectService) Get(ctx context.Context, id string) (*model.Project, error) {
	if id == "" {
		return nil, validationErr("project id is empty")
	}
	return s.projects.Get(ctx, id)
}

type CreateProjectInput struct {
	// ID is optional: when empty the next PREFIX-NN id is assigned.
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Location   string         `json:"location"`
	Contractor string         `json:"contractor"`
	Engineer   string         `json:"engineer"`
	Contacts   map[string]any `json:"contacts"`
	// StartDate and Deadline accept any shape the date normalizer does:
	// spreadsheet serials, ISO strings, or nothing.
	StartDate any `json:"start_date"`
	Deadline  any `json:"deadline"`
	Budget    any `json:"budget"`
}

func (s *projectService) Create(ctx context.Context, in CreateProjectInput) (*model.Project, error) {
	if in.Name == "" {
		return nil, validationErr("project name is required")
	}

	id := in.ID
	if id == "" {
		existing, err := s.projects.ListIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("list project ids: %w", err)
		}
		id = ids.NextProjectID(existing, s.cfg.Project.IDPrefix)
	} else {
		if _, err := s.projects.Get(ctx, id); err == nil {
			return nil, ErrDuplicateID
		} else if !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
	}

	p := &model.Project{
		ID:         id,
		Name:       in.Name,
		Location:   in.Location,
		Contractor: in.Contractor,
		Engineer:   in.Engineer,
		Contacts:   datatypes.JSONMap(in.Contacts),
		StartDate:  toDatePtr(in.StartDate),
		Deadline:   toDatePtr(in.Deadline),
	}
	if b := metrics.CoerceNumber(in.Budget); b > 0 {
		p.Budget = b
	}

	if err := s.projects.Create(ctx, p); err != nil {
		return nil, err
	}

	// Seed the fixed workflow. The project stays even when seeding is
	// incomplete; the caller gets the failed subset to surface.
	template := model.WorkflowTemplate()
	tasks := make([]model.Task, len(template))
	for i, step := range template {
		tasks[i] = model.Task{
			ProjectID: id,
			Name:      step.Name,
			Step:      i + 1,
			Role:      step.Role,
			Status:    model.StatusPending,
		}
	}
	inserted, failed, err := s.tasks.InsertBatch(ctx, tasks)
	if err != nil || len(failed) > 0 {
		s.log.Warn("workflow seeding incomplete",
			zap.String("project_id", id),
			zap.Int("inserted", inserted),
			zap.Strings("failed", failed),
			zap.Error(err))
		return p, &PartialFailure{Op: "seed workflow", Done: inserted, Failed: failed, Err: err}
	}

	publishChange(ctx, s.publisher, s.cfg, s.log, model.EventProjectCreated, id, p)
	return p, nil
}

type UpdateProjectInput struct {
	Name       string         `json:"name"`
	Location   string         `json:"location"`
	Contractor string         `json:"contractor"`
	Engineer   string         `json:"engineer"`
	Contacts   map[string]any `json:"contacts"`
	StartDate  any            `json:"start_date"`
	Deadline   any            `json:"deadline"`
	Budget     any            `json:"budget"`
}

// Update replaces the project's editable fields wholesale; the id and
// creation time never change.
func (s *projectService) Update(ctx context.Context, id string, in UpdateProjectInput) (*model.Project, error) {
	if id == "" {
		return nil, validationErr("project id is empty")
	}
	if in.Name == "" {
		return nil, validationErr("project name is required")
	}

	existing, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Name = in.Name
	existing.Location = in.Location
	existing.Contractor = in.Contractor
	existing.Engineer = in.Engineer
	existing.Contacts = datatypes.JSONMap(in.Contacts)
	existing.StartDate = toDatePtr(in.StartDate)
	existing.Deadline = toDatePtr(in.Deadline)
	existing.Budget = metrics.CoerceNumber(in.Budget)

	if err := s.projects.Update(ctx, existing); err != nil {
		return nil, err
	}

	publishChange(ctx, s.publisher, s.cfg, s.log, model.EventProjectUpdated, id, existing)
	return existing, nil
}

func (s *projectService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return validationErr("project id is empty")
	}
	if _, err := s.projects.Get(ctx, id); err != nil {
		return err
	}

	// Children first, so a crash mid-cascade never leaves orphans hiding
	// behind a deleted parent.
	var failed []string
	if _, err := s.tasks.DeleteByProject(ctx, id); err != nil {
		s.log.Error("cascade delete tasks failed", zap.String("project_id", id), zap.Error(err))
		failed = append(failed, "tasks")
	}
	if _, err := s.expenses.DeleteByProject(ctx, id); err != nil {
		s.log.Error("cascade delete expenses failed", zap.String("project_id", id), zap.Error(err))
		failed = append(failed, "expenses")
	}
	if _, err := s.materials.DeleteByProject(ctx, id); err != nil {
		s.log.Error("cascade delete materials failed", zap.String("project_id", id), zap.Error(err))
		failed = append(failed, "materials")
	}
	if len(failed) > 0 {
		return &PartialFailure{Op: "cascade delete", Done: 3 - len(failed), Failed: failed}
	}

	count, err := s.projects.Delete(ctx, id)
	if err != nil {
		return err
	}
	if count == 0 {
		return repo.ErrNotFound
	}

	publishChange(ctx, s.publisher, s.cfg, s.log, model.EventProjectDeleted, id, nil)
	return nil
}

// toDatePtr normalizes a raw date value into a UTC midnight time, nil when
// the value is absent or unparseable.
func toDatePtr(raw any) *time.Time {
	if d, ok := dates.Normalize(raw); ok {
		t := d.Time()
		return &t
	}
	return nil
}
