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

func newMaterialService(m *MockMaterialRepo, p *MockProjectRepo) MaterialService {
	return NewMaterialService(m, p, nil, testConfig(), zap.NewNop())
}

func TestMaterialService_RecordDispatchCreatesRow(t *testing.T) {
	ctx := context.Background()
	materials := &MockMaterialRepo{}
	projects := &MockProjectRepo{}

	projects.On("Get", ctx, "HT-01").Return(&model.Project{ID: "HT-01"}, nil)
	materials.On("Get", ctx, "HT-01", "Cement").Return(nil, repo.ErrNotFound)
	materials.On("Create", ctx, mock.MatchedBy(func(m *model.Material) bool {
		return m.Item == "Cement" && m.Dispatched == 50 && m.Required == 500 && m.Unit == "bags"
	})).Return(nil)

	svc := newMaterialService(materials, projects)
	m, err := svc.RecordDispatch(ctx, RecordDispatchInput{
		ProjectID: "HT-01", Item: "Cement", Quantity: 50, Required: "500", Unit: "bags",
	})

	assert.NoError(t, err)
	assert.Equal(t, 450.0, m.Balance())
	materials.AssertExpectations(t)
}

func TestMaterialService_RecordDispatchAccumulates(t *testing.T) {
	ctx := context.Background()
	materials := &MockMaterialRepo{}
	projects := &MockProjectRepo{}

	projects.On("Get", ctx, "HT-01").Return(&model.Project{ID: "HT-01"}, nil)
	materials.On("Get", ctx, "HT-01", "Cement").Return(&model.Material{
		ProjectID: "HT-01", Item: "Cement", Required: 500, Dispatched: 120, Unit: "bags",
	}, nil)
	materials.On("Update", ctx, mock.MatchedBy(func(m *model.Material) bool {
		// Dispatched grows; required and unit stay untouched without input.
		return m.Dispatched == 170 && m.Required == 500 && m.Unit == "bags"
	})).Return(nil)

	svc := newMaterialService(materials, projects)
	m, err := svc.RecordDispatch(ctx, RecordDispatchInput{ProjectID: "HT-01", Item: "Cement", Quantity: "50"})

	assert.NoError(t, err)
	assert.Equal(t, 170.0, m.Dispatched)
	materials.AssertExpectations(t)
}

func TestMaterialService_RecordDispatchRejectsNonPositive(t *testing.T) {
	svc := newMaterialService(&MockMaterialRepo{}, &MockProjectRepo{})

	for _, qty := range []any{0, -10, "nothing", nil} {
		_, err := svc.RecordDispatch(context.Background(), RecordDispatchInput{
			ProjectID: "HT-01", Item: "Cement", Quantity: qty,
		})
		assert.ErrorIs(t, err, ErrValidation)
	}
}

func TestMaterialService_ListRequiresProject(t *testing.T) {
	ctx := context.Background()
	projects := &MockProjectRepo{}
	projects.On("Get", ctx, "HT-99").Return(nil, repo.ErrNotFound)

	svc := newMaterialService(&MockMaterialRepo{}, projects)
	_, err := svc.ListByProject(ctx, "HT-99")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
