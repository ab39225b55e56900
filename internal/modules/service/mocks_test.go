package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sitedash-io/sitedash/internal/modules/model"
)

func testTime() time.Time {
	return time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
}

// MockProjectRepo is a mock implementation of repo.ProjectRepo
type MockProjectRepo struct {
	mock.Mock
}

func (m *MockProjectRepo) List(ctx context.Context, afterCreatedAt time.Time, afterID string, limit int, timeDesc bool) ([]model.Project, error) {
	args := m.Called(ctx, afterCreatedAt, afterID, limit, timeDesc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Project), args.Error(1)
}

func (m *MockProjectRepo) ListIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProjectRepo) Get(ctx context.Context, id string) (*model.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectRepo) Create(ctx context.Context, p *model.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectRepo) Update(ctx context.Context, p *model.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectRepo) Delete(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

// MockTaskRepo is a mock implementation of repo.TaskRepo
type MockTaskRepo struct {
	mock.Mock
}

func (m *MockTaskRepo) ListByProject(ctx context.Context, projectID string) ([]model.Task, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepo) Get(ctx context.Context, projectID, name string) (*model.Task, error) {
	args := m.Called(ctx, projectID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskRepo) InsertBatch(ctx context.Context, tasks []model.Task) (int, []string, error) {
	args := m.Called(ctx, tasks)
	var failed []string
	if args.Get(1) != nil {
		failed = args.Get(1).([]string)
	}
	return args.Int(0), failed, args.Error(2)
}

func (m *MockTaskRepo) Update(ctx context.Context, t *model.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepo) DeleteByProject(ctx context.Context, projectID string) (int, error) {
	args := m.Called(ctx, projectID)
	return args.Int(0), args.Error(1)
}

// MockExpenseRepo is a mock implementation of repo.ExpenseRepo
type MockExpenseRepo struct {
	mock.Mock
}

func (m *MockExpenseRepo) ListByProject(ctx context.Context, projectID string) ([]model.Expense, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Expense), args.Error(1)
}

func (m *MockExpenseRepo) Append(ctx context.Context, e *model.Expense) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockExpenseRepo) DeleteByProject(ctx context.Context, projectID string) (int, error) {
	args := m.Called(ctx, projectID)
	return args.Int(0), args.Error(1)
}

// MockMaterialRepo is a mock implementation of repo.MaterialRepo
type MockMaterialRepo struct {
	mock.Mock
}

func (m *MockMaterialRepo) ListByProject(ctx context.Context, projectID string) ([]model.Material, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Material), args.Error(1)
}

func (m *MockMaterialRepo) Get(ctx context.Context, projectID, item string) (*model.Material, error) {
	args := m.Called(ctx, projectID, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Material), args.Error(1)
}

func (m *MockMaterialRepo) Create(ctx context.Context, mat *model.Material) error {
	args := m.Called(ctx, mat)
	return args.Error(0)
}

func (m *MockMaterialRepo) Update(ctx context.Context, mat *model.Material) error {
	args := m.Called(ctx, mat)
	return args.Error(0)
}

func (m *MockMaterialRepo) DeleteByProject(ctx context.Context, projectID string) (int, error) {
	args := m.Called(ctx, projectID)
	return args.Int(0), args.Error(1)
}
