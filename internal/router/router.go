package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sitedash-io/sitedash/internal/config"
	"github.com/sitedash-io/sitedash/internal/middleware"
	"github.com/sitedash-io/sitedash/internal/modules/handler"
	"github.com/sitedash-io/sitedash/internal/modules/serializer"
)

type RouterDeps struct {
	Config           *config.Config
	Log              *zap.Logger
	ProjectHandler   *handler.ProjectHandler
	DashboardHandler *handler.DashboardHandler
	TaskHandler      *handler.TaskHandler
	ExpenseHandler   *handler.ExpenseHandler
	MaterialHandler  *handler.MaterialHandler
	ReportHandler    *handler.ReportHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(middleware.OtelTracing(d.Config.App.Name))
		// Add trace ID to response header
		r.Use(middleware.TraceID())
	}

	r.Use(middleware.ZapLogger(d.Log))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })

	v1 := r.Group("/api/v1")
	{
		v1.Use(middleware.APIKeyAuth(d.Config))

		// ping endpoint
		v1.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "pong"}) })

		v1.GET("/workflow/template", d.TaskHandler.GetWorkflowTemplate)

		project := v1.Group("/project")
		{
			project.GET("", d.ProjectHandler.ListProjects)
			project.POST("", d.ProjectHandler.CreateProject)
			project.GET("/:id", d.ProjectHandler.GetProject)
			project.PUT("/:id", d.ProjectHandler.UpdateProject)
			project.DELETE("/:id", d.ProjectHandler.DeleteProject)

			project.GET("/:id/overview", d.DashboardHandler.GetOverview)

			project.GET("/:id/tasks", d.TaskHandler.ListTasks)
			project.PATCH("/:id/task/status", d.TaskHandler.UpdateTaskStatus)
			project.PATCH("/:id/task/progress", d.TaskHandler.UpdateTaskProgress)

			project.GET("/:id/expenses", d.ExpenseHandler.ListExpenses)
			project.POST("/:id/expense", d.ExpenseHandler.AppendExpense)

			project.GET("/:id/materials", d.MaterialHandler.ListMaterials)
			project.POST("/:id/material/dispatch", d.MaterialHandler.RecordDispatch)

			project.GET("/:id/report", d.ReportHandler.GenerateReport)
		}
	}
	return r
}
