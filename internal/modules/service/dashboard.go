package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sitedash-io/sitedash/internal/config"
	"github.com/sitedash-io/sitedash/internal/modules/model"
	"github.com/sitedash-io/sitedash/internal/modules/repo"
	"github.com/sitedash-io/sitedash/internal/pkg/dates"
	"github.com/sitedash-io/sitedash/internal/pkg/metrics"
)

// Overview panel names, used as keys in Overview.PanelErrors.
const (
	PanelTasks     = "tasks"
	PanelFinancial = "financial"
	PanelMaterials = "materials"
)

// Overview is the full dashboard for one project. Panels that could not be
// loaded are zero-valued and listed in PanelErrors; the overview as a whole
// only fails when the project itself cannot be fetched.
type Overview struct {
	Project *model.Project `json:"project"`

	StartDateDisplay string `json:"start_date_display"`
	DeadlineDisplay  string `json:"deadline_display"`

	Time      metrics.TimeKPIs      `json:"time"`
	Tasks     metrics.TaskProgress  `json:"tasks"`
	Completed metrics.TaskProgress  `json:"completed"`
	Financial metrics.FinancialKPIs `json:"financial"`
	Materials metrics.MaterialKPIs  `json:"materials"`

	TaskList     []model.Task     `json:"task_list"`
	ExpenseList  []model.Expense  `json:"expense_list"`
	MaterialList []model.Material `json:"material_list"`

	PanelErrors map[string]string `json:"panel_errors,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`
	FromCache   bool              `json:"from_cache"`
}

type DashboardService interface {
	// LoadOverview assembles the dashboard, serving from cache unless
	// refresh is set.
	LoadOverview(ctx context.Context, projectID string, refresh bool) (*Overview, error)
	// Invalidate drops the cached overview after a mutation.
	Invalidate(ctx context.Context, projectID string)
}

type dashboardService struct {
	projects  repo.ProjectRepo
	tasks     repo.TaskRepo
	expenses  repo.ExpenseRepo
	materials repo.MaterialRepo
	rdb       *redis.Client // nil disables caching
	cfg       *config.Config
	log       *zap.Logger

	// loadSeq guards cache writes: a load only stores its result if no
	// invalidation happened for that project while it was computing.
	mu      sync.Mutex
	loadSeq map[string]uint64
}

func NewDashboardService(
	projects repo.ProjectRepo,
	tasks repo.TaskRepo,
	expenses repo.ExpenseRepo,
	materials repo.MaterialRepo,
	rdb *redis.Client,
	cfg *config.Config,
	log *zap.Logger,
) DashboardService {
	return &dashboardService{
		projects:  projects,
		tasks:     tasks,
		expenses:  expenses,
		materials: materials,
		rdb:       rdb,
		cfg:       cfg,
		log:       log,
		loadSeq:   make(map[string]uint64),
	}
}

func overviewKey(projectID string) string {
	return fmt.Sprintf("sitedash:overview:%s", projectID)
}

func (s *dashboardService) seq(projectID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadSeq[projectID]
}

func (s *dashboardService) bumpSeq(projectID string) {
	s.mu.Lock()
	s.loadSeq[projectID]++
	s.mu.Unlock()
}

func (s *dashboardService) LoadOverview(ctx context.Context, projectID string, refresh bool) (*Overview, error) {
	if projectID == "" {
		return nil, validationErr("project id is empty")
	}

	if s.rdb != nil && !refresh {
		if raw, err := s.rdb.Get(ctx, overviewKey(projectID)).Bytes(); err == nil {
			var cached Overview
			if err := sonic.Unmarshal(raw, &cached); err == nil {
				cached.FromCache = true
				return &cached, nil
			}
			// Unreadable cache entries are dropped, not served.
			s.rdb.Del(ctx, overviewKey(projectID))
		}
	}

	token := s.seq(projectID)

	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	ov := &Overview{
		Project:          p,
		StartDateDisplay: dates.FormatDisplay(p.StartDate),
		DeadlineDisplay:  dates.FormatDisplay(p.Deadline),
		Time:             metrics.ComputeTimeKPIs(p.StartDate, p.Deadline, dates.Today()),
		PanelErrors:      map[string]string{},
		GeneratedAt:      time.Now().UTC(),
	}

	// Each goroutine writes only its own slice/flag; PanelErrors is
	// assembled after Wait so the map is never touched concurrently.
	var (
		tasks        []model.Task
		expenses     []model.Expense
		materials    []model.Material
		tasksErr     error
		expensesErr  error
		materialsErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tasks, tasksErr = s.tasks.ListByProject(gctx, projectID)
		return nil
	})
	g.Go(func() error {
		expenses, expensesErr = s.expenses.ListByProject(gctx, projectID)
		return nil
	})
	g.Go(func() error {
		materials, materialsErr = s.materials.ListByProject(gctx, projectID)
		return nil
	})
	_ = g.Wait()

	if tasksErr != nil {
		s.log.Warn("overview tasks panel failed", zap.String("project_id", projectID), zap.Error(tasksErr))
		ov.PanelErrors[PanelTasks] = "unavailable"
	}
	if expensesErr != nil {
		s.log.Warn("overview financial panel failed", zap.String("project_id", projectID), zap.Error(expensesErr))
		ov.PanelErrors[PanelFinancial] = "unavailable"
	}
	if materialsErr != nil {
		s.log.Warn("overview materials panel failed", zap.String("project_id", projectID), zap.Error(materialsErr))
		ov.PanelErrors[PanelMaterials] = "unavailable"
	}

	if _, bad := ov.PanelErrors[PanelTasks]; !bad {
		ov.TaskList = tasks
		in := make([]metrics.TaskInput, len(tasks))
		for i, t := range tasks {
			in[i] = metrics.TaskInput{Status: t.Status}
			if t.Progress != nil {
				p := float64(*t.Progress)
				in[i].Progress = &p
			}
		}
		ov.Tasks = metrics.ComputeTaskProgress(in)
		ov.Completed = metrics.CompletedFraction(in)
	}
	if _, bad := ov.PanelErrors[PanelFinancial]; !bad {
		ov.ExpenseList = expenses
		in := make([]metrics.ExpenseInput, len(expenses))
		for i, e := range expenses {
			in[i] = metrics.ExpenseInput{Amount: e.Amount}
		}
		ov.Financial = metrics.ComputeFinancialKPIs(p.Budget, in)
	}
	if _, bad := ov.PanelErrors[PanelMaterials]; !bad {
		ov.MaterialList = materials
		in := make([]metrics.MaterialInput, len(materials))
		for i, m := range materials {
			in[i] = metrics.MaterialInput{Required: m.Required, Dispatched: m.Dispatched}
		}
		ov.Materials = metrics.ComputeMaterialKPIs(in)
	}
	if len(ov.PanelErrors) == 0 {
		ov.PanelErrors = nil
	}

	// Only fully-loaded overviews are worth caching, and only if nothing
	// invalidated the project while we were computing.
	if s.rdb != nil && ov.PanelErrors == nil && s.seq(projectID) == token {
		if raw, err := sonic.Marshal(ov); err == nil {
			if err := s.rdb.Set(ctx, overviewKey(projectID), raw, s.cfg.Redis.OverviewTTL).Err(); err != nil {
				s.log.Warn("overview cache write failed", zap.String("project_id", projectID), zap.Error(err))
			}
		}
	}

	return ov, nil
}

func (s *dashboardService) Invalidate(ctx context.Context, projectID string) {
	s.bumpSeq(projectID)
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, overviewKey(projectID)).Err(); err != nil {
		s.log.Warn("overview cache invalidate failed", zap.String("project_id", projectID), zap.Error(err))
	}
}
