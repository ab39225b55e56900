package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/sitedash-io/sitedash/internal/modules/model"
	"github.com/sitedash-io/sitedash/internal/modules/repo"
)

func intPtr(v int) *int { return &v }

func dashboardFixture(t *testing.T, rdb *redis.Client) (*MockProjectRepo, *MockTaskRepo, *MockExpenseRepo, *MockMaterialRepo, DashboardService) {
	t.Helper()
	projects := &MockProjectRepo{}
	tasks := &MockTaskRepo{}
	expenses := &MockExpenseRepo{}
	materials := &MockMaterialRepo{}
	svc := NewDashboardService(projects, tasks, expenses, materials, rdb, testConfig(), zap.NewNop())
	return projects, tasks, expenses, materials, svc
}

func seedHappyProject(projects *MockProjectRepo, tasks *MockTaskRepo, expenses *MockExpenseRepo, materials *MockMaterialRepo) {
	start := testTime().AddDate(0, -2, 0)
	deadline := testTime().AddDate(0, 1, 0)
	projects.On("Get", mock.Anything, "HT-01").Return(&model.Project{
		ID: "HT-01", Name: "Riverside Villa", Budget: 100000,
		StartDate: &start, Deadline: &deadline,
	}, nil)
	tasks.On("ListByProject", mock.Anything, "HT-01").Return([]model.Task{
		{Name: "Site Survey", Status: model.StatusCompleted},
		{Name: "Excavation", Status: model.StatusInProgress, Progress: intPtr(50)},
		{Name: "Foundation", Status: model.StatusPending},
		{Name: "Framing", Status: model.StatusPending},
	}, nil)
	expenses.On("ListByProject", mock.Anything, "HT-01").Return([]model.Expense{
		{Amount: 30000}, {Amount: 45000},
	}, nil)
	materials.On("ListByProject", mock.Anything, "HT-01").Return([]model.Material{
		{Item: "Cement", Required: 500, Dispatched: 200},
		{Item: "Steel", Required: 100, Dispatched: 100},
	}, nil)
}

func TestDashboard_LoadOverviewAggregates(t *testing.T) {
	projects, tasks, expenses, materials, svc := dashboardFixture(t, nil)
	seedHappyProject(projects, tasks, expenses, materials)

	ov, err := svc.LoadOverview(context.Background(), "HT-01", false)
	assert.NoError(t, err)

	// (100 + 50 + 0 + 0) / 4
	assert.Equal(t, 38, ov.Tasks.CompletionPercent)
	assert.Equal(t, 1, ov.Tasks.CompletedCount)
	assert.Equal(t, 25, ov.Completed.CompletionPercent)

	assert.Equal(t, 75000.0, ov.Financial.TotalSpent)
	assert.Equal(t, 25000.0, ov.Financial.Remaining)
	assert.Equal(t, "warning", ov.Financial.Band)

	// (200 + 100) / (500 + 100)
	assert.Equal(t, 50, ov.Materials.DispatchedPercent)

	assert.NotNil(t, ov.Time.DaysSpent)
	assert.True(t, ov.Time.HasDeadline)
	assert.Nil(t, ov.PanelErrors)
	assert.False(t, ov.FromCache)
}

func TestDashboard_PanelFailureIsSoft(t *testing.T) {
	projects, tasks, expenses, materials, svc := dashboardFixture(t, nil)

	projects.On("Get", mock.Anything, "HT-01").Return(&model.Project{ID: "HT-01", Budget: 100000}, nil)
	tasks.On("ListByProject", mock.Anything, "HT-01").Return(nil, errors.New("sheet unreachable"))
	expenses.On("ListByProject", mock.Anything, "HT-01").Return([]model.Expense{{Amount: 1000}}, nil)
	materials.On("ListByProject", mock.Anything, "HT-01").Return([]model.Material{}, nil)

	ov, err := svc.LoadOverview(context.Background(), "HT-01", false)
	assert.NoError(t, err)
	assert.Equal(t, "unavailable", ov.PanelErrors[PanelTasks])
	// Other panels still compute.
	assert.Equal(t, 1000.0, ov.Financial.TotalSpent)
}

func TestDashboard_AllPanelsFailingLoadsCleanly(t *testing.T) {
	projects, tasks, expenses, materials, svc := dashboardFixture(t, nil)

	projects.On("Get", mock.Anything, "HT-01").Return(&model.Project{ID: "HT-01", Budget: 100000}, nil)
	tasks.On("ListByProject", mock.Anything, "HT-01").Return(nil, errors.New("sheet unreachable"))
	expenses.On("ListByProject", mock.Anything, "HT-01").Return(nil, errors.New("sheet unreachable"))
	materials.On("ListByProject", mock.Anything, "HT-01").Return(nil, errors.New("sheet unreachable"))

	// The fetches run concurrently; repeat so simultaneous failures get a
	// chance to interleave.
	for i := 0; i < 20; i++ {
		ov, err := svc.LoadOverview(context.Background(), "HT-01", false)
		assert.NoError(t, err)
		assert.Equal(t, "unavailable", ov.PanelErrors[PanelTasks])
		assert.Equal(t, "unavailable", ov.PanelErrors[PanelFinancial])
		assert.Equal(t, "unavailable", ov.PanelErrors[PanelMaterials])
	}
}

func TestDashboard_ProjectFailureIsFatal(t *testing.T) {
	projects, _, _, _, svc := dashboardFixture(t, nil)
	projects.On("Get", mock.Anything, "HT-99").Return(nil, repo.ErrNotFound)

	_, err := svc.LoadOverview(context.Background(), "HT-99", false)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestDashboard_CacheServesSecondLoad(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	projects, tasks, expenses, materials, svc := dashboardFixture(t, rdb)
	seedHappyProject(projects, tasks, expenses, materials)

	first, err := svc.LoadOverview(context.Background(), "HT-01", false)
	assert.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := svc.LoadOverview(context.Background(), "HT-01", false)
	assert.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Tasks, second.Tasks)

	// The stores were only hit once.
	projects.AssertNumberOfCalls(t, "Get", 1)
	tasks.AssertNumberOfCalls(t, "ListByProject", 1)
}

func TestDashboard_RefreshBypassesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	projects, tasks, expenses, materials, svc := dashboardFixture(t, rdb)
	seedHappyProject(projects, tasks, expenses, materials)

	_, err := svc.LoadOverview(context.Background(), "HT-01", false)
	assert.NoError(t, err)

	ov, err := svc.LoadOverview(context.Background(), "HT-01", true)
	assert.NoError(t, err)
	assert.False(t, ov.FromCache)
	projects.AssertNumberOfCalls(t, "Get", 2)
}

func TestDashboard_InvalidateDropsCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	projects, tasks, expenses, materials, svc := dashboardFixture(t, rdb)
	seedHappyProject(projects, tasks, expenses, materials)

	_, err := svc.LoadOverview(context.Background(), "HT-01", false)
	assert.NoError(t, err)

	svc.Invalidate(context.Background(), "HT-01")

	ov, err := svc.LoadOverview(context.Background(), "HT-01", false)
	assert.NoError(t, err)
	assert.False(t, ov.FromCache)
	projects.AssertNumberOfCalls(t, "Get", 2)
}

func TestDashboard_IncompleteOverviewNotCached(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	projects, tasks, expenses, materials, svc := dashboardFixture(t, rdb)
	projects.On("Get", mock.Anything, "HT-01").Return(&model.Project{ID: "HT-01"}, nil)
	tasks.On("ListByProject", mock.Anything, "HT-01").Return(nil, errors.New("down"))
	expenses.On("ListByProject", mock.Anything, "HT-01").Return([]model.Expense{}, nil)
	materials.On("ListByProject", mock.Anything, "HT-01").Return([]model.Material{}, nil)

	_, err := svc.LoadOverview(context.Background(), "HT-01", false)
	assert.NoError(t, err)

	// A degraded overview must not be served from cache later.
	ov, err := svc.LoadOverview(context.Background(), "HT-01", false)
	assert.NoError(t, err)
	assert.False(t, ov.FromCache)
}
