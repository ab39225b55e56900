package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sitedash-io/sitedash/internal/modules/model"
	"github.com/sitedash-io/sitedash/internal/modules/service"
)

func TestExpenseHandler_AppendExpense(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setup          func(*MockExpenseService, *MockDashboardService)
		expectedStatus int
	}{
		{
			name: "successful append",
			body: `{"amount":"1500","date":"2023-02-01","description":"Cement"}`,
			setup: func(svc *MockExpenseService, dash *MockDashboardService) {
				svc.On("Append", mock.Anything, mock.MatchedBy(func(in service.AppendExpenseInput) bool {
					return in.ProjectID == "HT-01" && in.Description == "Cement"
				})).Return(&model.Expense{ProjectID: "HT-01", Amount: 1500}, nil)
				dash.On("Invalidate", mock.Anything, "HT-01").Return()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "invalid amount",
			body: `{"amount":"-50"}`,
			setup: func(svc *MockExpenseService, dash *MockDashboardService) {
				svc.On("Append", mock.Anything, mock.Anything).Return(nil, service.ErrValidation)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing amount",
			body:           `{"description":"Cement"}`,
			setup:          func(svc *MockExpenseService, dash *MockDashboardService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockExpenseService{}
			dash := &MockDashboardService{}
			tt.setup(svc, dash)

			r := setupRouter()
			r.POST("/api/v1/project/:id/expense", NewExpenseHandler(svc, dash).AppendExpense)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/project/HT-01/expense", bytes.NewReader([]byte(tt.body)))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
			dash.AssertExpectations(t)
		})
	}
}

func TestMaterialHandler_RecordDispatch(t *testing.T) {
	svc := &MockMaterialService{}
	dash := &MockDashboardService{}
	svc.On("RecordDispatch", mock.Anything, mock.MatchedBy(func(in service.RecordDispatchInput) bool {
		return in.ProjectID == "HT-01" && in.Item == "Cement"
	})).Return(&model.Material{ProjectID: "HT-01", Item: "Cement", Required: 500, Dispatched: 170}, nil)
	dash.On("Invalidate", mock.Anything, "HT-01").Return()

	r := setupRouter()
	r.POST("/api/v1/project/:id/material/dispatch", NewMaterialHandler(svc, dash).RecordDispatch)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/project/HT-01/material/dispatch",
		bytes.NewReader([]byte(`{"item":"Cement","quantity":50}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
	dash.AssertExpectations(t)
}

func TestReportHandler_GenerateReport(t *testing.T) {
	svc := &MockReportService{}
	svc.On("Generate", mock.Anything, "HT-01").Return(&service.Report{
		Filename:   "HT-01-report-20230601.xlsx",
		Content:    []byte("workbook-bytes"),
		ArchiveURL: "https://s3.example/reports/HT-01.xlsx?sig=abc",
	}, nil)

	r := setupRouter()
	r.GET("/api/v1/project/:id/report", NewReportHandler(svc).GenerateReport)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/project/HT-01/report", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "HT-01-report-")
	assert.NotEmpty(t, w.Header().Get("X-Archive-Url"))
	assert.Equal(t, "workbook-bytes", w.Body.String())
}
