package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"github.com/sitedash-io/sitedash/internal/modules/model"
	"github.com/sitedash-io/sitedash/internal/modules/service"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// MockProjectService is a mock implementation of service.ProjectService
type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) List(ctx context.Context, in service.ListProjectsInput) (*service.ListProjectsOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListProjectsOutput), args.Error(1)
}

func (m *MockProjectService) Get(ctx context.Context, id string) (*model.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) Create(ctx context.Context, in service.CreateProjectInput) (*model.Project, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) Update(ctx context.Context, id string, in service.UpdateProjectInput) (*model.Project, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockDashboardService is a mock implementation of service.DashboardService
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) LoadOverview(ctx context.Context, projectID string, refresh bool) (*service.Overview, error) {
	args := m.Called(ctx, projectID, refresh)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Overview), args.Error(1)
}

func (m *MockDashboardService) Invalidate(ctx context.Context, projectID string) {
	m.Called(ctx, projectID)
}

// MockTaskService is a mock implementation of service.TaskService
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) ListByProject(ctx context.Context, projectID string) ([]model.Task, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskService) UpdateStatus(ctx context.Context, in service.UpdateTaskStatusInput) (*model.Task, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskService) UpdateProgress(ctx context.Context, in service.UpdateTaskProgressInput) (*model.Task, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskService) Template() []model.WorkflowStep {
	args := m.Called()
	return args.Get(0).([]model.WorkflowStep)
}

// MockExpenseService is a mock implementation of service.ExpenseService
type MockExpenseService struct {
	mock.Mock
}

func (m *MockExpenseService) ListByProject(ctx context.Context, projectID string) ([]model.Expense, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Expense), args.Error(1)
}

func (m *MockExpenseService) Append(ctx context.Context, in service.AppendExpenseInput) (*model.Expense, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Expense), args.Error(1)
}

// MockMaterialService is a mock implementation of service.MaterialService
type MockMaterialService struct {
	mock.Mock
}

func (m *MockMaterialService) ListByProject(ctx context.Context, projectID string) ([]model.Material, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Material), args.Error(1)
}

func (m *MockMaterialService) RecordDispatch(ctx context.Context, in service.RecordDispatchInput) (*model.Material, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Material), args.Error(1)
}

// MockReportService is a mock implementation of service.ReportService
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Generate(ctx context.Context, projectID string) (*service.Report, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Report), args.Error(1)
}
