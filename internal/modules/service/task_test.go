package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/sitedash-io/sitedash/internal/modules/model"
	"github.com/sitedash-io/sitedash/internal/modules/repo"
)

func newTaskService(tasks *MockTaskRepo, projects *MockProjectRepo) TaskService {
	return NewTaskService(tasks, projects, nil, testConfig(), zap.NewNop())
}

func TestTaskService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		in      UpdateTaskStatusInput
		setup   func(*MockTaskRepo)
		check   func(*testing.T, *model.Task)
		wantErr error
	}{
		{
			name: "completing stamps completed_at",
			in:   UpdateTaskStatusInput{ProjectID: "HT-01", Name: "Excavation", Status: "done"},
			setup: func(r *MockTaskRepo) {
				r.On("Get", ctx, "HT-01", "Excavation").Return(&model.Task{
					ProjectID: "HT-01", Name: "Excavation", Status: model.StatusInProgress,
				}, nil)
				r.On("Update", ctx, mock.Anything).Return(nil)
			},
			check: func(t *testing.T, task *model.Task) {
				assert.Equal(t, model.StatusCompleted, task.Status)
				assert.NotNil(t, task.CompletedAt)
			},
		},
		{
			name: "reopening clears completed_at",
			in:   UpdateTaskStatusInput{ProjectID: "HT-01", Name: "Excavation", Status: "in progress"},
			setup: func(r *MockTaskRepo) {
				done := testTime()
				r.On("Get", ctx, "HT-01", "Excavation").Return(&model.Task{
					ProjectID: "HT-01", Name: "Excavation",
					Status: model.StatusCompleted, CompletedAt: &done,
				}, nil)
				r.On("Update", ctx, mock.Anything).Return(nil)
			},
			check: func(t *testing.T, task *model.Task) {
				assert.Equal(t, model.StatusInProgress, task.Status)
				assert.Nil(t, task.CompletedAt)
			},
		},
		{
			name:    "unknown status rejected",
			in:      UpdateTaskStatusInput{ProjectID: "HT-01", Name: "Excavation", Status: "paused"},
			setup:   func(r *MockTaskRepo) {},
			wantErr: ErrValidation,
		},
		{
			name: "unknown task surfaces not found",
			in:   UpdateTaskStatusInput{ProjectID: "HT-01", Name: "Moat Digging", Status: "pending"},
			setup: func(r *MockTaskRepo) {
				r.On("Get", ctx, "HT-01", "Moat Digging").Return(nil, repo.ErrNotFound)
			},
			wantErr: repo.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := &MockTaskRepo{}
			tt.setup(tasks)

			svc := newTaskService(tasks, &MockProjectRepo{})
			task, err := svc.UpdateStatus(ctx, tt.in)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			tt.check(t, task)
			tasks.AssertExpectations(t)
		})
	}
}

func TestTaskService_UpdateProgress(t *testing.T) {
	ctx := context.Background()

	t.Run("full progress completes the task", func(t *testing.T) {
		tasks := &MockTaskRepo{}
		tasks.On("Get", ctx, "HT-01", "Excavation").Return(&model.Task{
			ProjectID: "HT-01", Name: "Excavation", Status: model.StatusInProgress,
		}, nil)
		tasks.On("Update", ctx, mock.MatchedBy(func(task *model.Task) bool {
			return task.Status == model.StatusCompleted && task.CompletedAt != nil
		})).Return(nil)

		svc := newTaskService(tasks, &MockProjectRepo{})
		task, err := svc.UpdateProgress(ctx, UpdateTaskProgressInput{ProjectID: "HT-01", Name: "Excavation", Progress: 100})

		assert.NoError(t, err)
		assert.Equal(t, 100, *task.Progress)
		tasks.AssertExpectations(t)
	})

	t.Run("nonzero progress starts a pending task", func(t *testing.T) {
		tasks := &MockTaskRepo{}
		tasks.On("Get", ctx, "HT-01", "Excavation").Return(&model.Task{
			ProjectID: "HT-01", Name: "Excavation", Status: model.StatusPending,
		}, nil)
		tasks.On("Update", ctx, mock.Anything).Return(nil)

		svc := newTaskService(tasks, &MockProjectRepo{})
		task, err := svc.UpdateProgress(ctx, UpdateTaskProgressInput{ProjectID: "HT-01", Name: "Excavation", Progress: 30})

		assert.NoError(t, err)
		assert.Equal(t, model.StatusInProgress, task.Status)
	})

	t.Run("dropping below 100 reopens", func(t *testing.T) {
		done := testTime()
		tasks := &MockTaskRepo{}
		tasks.On("Get", ctx, "HT-01", "Excavation").Return(&model.Task{
			ProjectID: "HT-01", Name: "Excavation",
			Status: model.StatusCompleted, CompletedAt: &done,
		}, nil)
		tasks.On("Update", ctx, mock.Anything).Return(nil)

		svc := newTaskService(tasks, &MockProjectRepo{})
		task, err := svc.UpdateProgress(ctx, UpdateTaskProgressInput{ProjectID: "HT-01", Name: "Excavation", Progress: 80})

		assert.NoError(t, err)
		assert.Equal(t, model.StatusInProgress, task.Status)
		assert.Nil(t, task.CompletedAt)
	})

	t.Run("out of range rejected", func(t *testing.T) {
		svc := newTaskService(&MockTaskRepo{}, &MockProjectRepo{})
		_, err := svc.UpdateProgress(ctx, UpdateTaskProgressInput{ProjectID: "HT-01", Name: "Excavation", Progress: 120})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestTaskService_Template(t *testing.T) {
	svc := newTaskService(&MockTaskRepo{}, &MockProjectRepo{})
	steps := svc.Template()
	assert.Len(t, steps, 23)

	// The returned slice is a copy; mutating it must not leak.
	steps[0].Name = "mutated"
	assert.NotEqual(t, "mutated", svc.Template()[0].Name)
}
