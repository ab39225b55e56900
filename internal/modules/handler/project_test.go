package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sitedash-io/sitedash/internal/modules/model"
	"github.com/sitedash-io/sitedash/internal/modules/repo"
	"github.com/sitedash-io/sitedash/internal/modules/serializer"
	"github.com/sitedash-io/sitedash/internal/modules/service"
)

func TestProjectHandler_CreateProject(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]any
		setup          func(*MockProjectService, *MockDashboardService)
		expectedStatus int
	}{
		{
			name: "successful creation",
			body: map[string]any{"name": "Riverside Villa", "budget": "250000", "start_date": 45000},
			setup: func(svc *MockProjectService, dash *MockDashboardService) {
				svc.On("Create", mock.Anything, mock.MatchedBy(func(in service.CreateProjectInput) bool {
					return in.Name == "Riverside Villa"
				})).Return(&model.Project{ID: "HT-01", Name: "Riverside Villa"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing name",
			body:           map[string]any{"budget": 1000},
			setup:          func(svc *MockProjectService, dash *MockDashboardService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate id",
			body: map[string]any{"id": "HT-01", "name": "Duplicate"},
			setup: func(svc *MockProjectService, dash *MockDashboardService) {
				svc.On("Create", mock.Anything, mock.Anything).Return(nil, service.ErrDuplicateID)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "partial workflow seeding still creates",
			body: map[string]any{"name": "Hillside Duplex"},
			setup: func(svc *MockProjectService, dash *MockDashboardService) {
				svc.On("Create", mock.Anything, mock.Anything).Return(
					&model.Project{ID: "HT-09", Name: "Hillside Duplex"},
					&service.PartialFailure{Op: "seed workflow", Done: 20, Failed: []string{"Painting"}},
				)
			},
			expectedStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockProjectService{}
			dash := &MockDashboardService{}
			tt.setup(svc, dash)

			r := setupRouter()
			h := NewProjectHandler(svc, dash)
			r.POST("/api/v1/project", h.CreateProject)

			body, _ := sonic.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/project", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestProjectHandler_CreateProjectPartialWarning(t *testing.T) {
	svc := &MockProjectService{}
	dash := &MockDashboardService{}
	svc.On("Create", mock.Anything, mock.Anything).Return(
		&model.Project{ID: "HT-09"},
		&service.PartialFailure{Op: "seed workflow", Done: 20, Failed: []string{"Painting", "Handover"}},
	)

	r := setupRouter()
	r.POST("/api/v1/project", NewProjectHandler(svc, dash).CreateProject)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/project", bytes.NewReader([]byte(`{"name":"X"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp serializer.Response
	assert.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Msg, "seed workflow")
}

func TestProjectHandler_GetProject(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := &MockProjectService{}
		svc.On("Get", mock.Anything, "HT-01").Return(&model.Project{ID: "HT-01", Name: "Riverside Villa"}, nil)

		r := setupRouter()
		r.GET("/api/v1/project/:id", NewProjectHandler(svc, &MockDashboardService{}).GetProject)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/project/HT-01", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		svc := &MockProjectService{}
		svc.On("Get", mock.Anything, "HT-99").Return(nil, repo.ErrNotFound)

		r := setupRouter()
		r.GET("/api/v1/project/:id", NewProjectHandler(svc, &MockDashboardService{}).GetProject)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/project/HT-99", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestProjectHandler_UpdateProjectInvalidatesCache(t *testing.T) {
	svc := &MockProjectService{}
	dash := &MockDashboardService{}
	svc.On("Update", mock.Anything, "HT-01", mock.Anything).Return(&model.Project{ID: "HT-01", Name: "New"}, nil)
	dash.On("Invalidate", mock.Anything, "HT-01").Return()

	r := setupRouter()
	r.PUT("/api/v1/project/:id", NewProjectHandler(svc, dash).UpdateProject)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/project/HT-01", bytes.NewReader([]byte(`{"name":"New"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	dash.AssertExpectations(t)
}

func TestProjectHandler_DeleteProject(t *testing.T) {
	svc := &MockProjectService{}
	dash := &MockDashboardService{}
	svc.On("Delete", mock.Anything, "HT-01").Return(nil)
	dash.On("Invalidate", mock.Anything, "HT-01").Return()

	r := setupRouter()
	r.DELETE("/api/v1/project/:id", NewProjectHandler(svc, dash).DeleteProject)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/project/HT-01", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	dash.AssertExpectations(t)
}
