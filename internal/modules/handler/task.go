package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sitedash-io/sitedash/internal/modules/serializer"
	"github.com/sitedash-io/sitedash/internal/modules/service"
)

type TaskHandler struct {
	svc       service.TaskService
	dashboard service.DashboardService
}

func NewTaskHandler(svc service.TaskService, dashboard service.DashboardService) *TaskHandler {
	return &TaskHandler{svc: svc, dashboard: dashboard}
}

// ListTasks returns a project's workflow tasks in step order.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	tasks, err := h.svc.ListByProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: tasks})
}

type UpdateTaskStatusReq struct {
	Name    string `json:"name" binding:"required"`
	Status  string `json:"status" binding:"required"`
	DueDate any    `json:"due_date"`
}

// UpdateTaskStatus transitions one task's status. Completing a task stamps
// completed_at; any other transition clears it.
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	req := UpdateTaskStatusReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	id := c.Param("id")
	task, err := h.svc.UpdateStatus(c.Request.Context(), service.UpdateTaskStatusInput{
		ProjectID: id,
		Name:      req.Name,
		Status:    req.Status,
		DueDate:   req.DueDate,
	})
	if err != nil {
		respondServiceErr(c, err)
		return
	}

	h.dashboard.Invalidate(c.Request.Context(), id)
	c.JSON(http.StatusOK, serializer.Response{Data: task})
}

type UpdateTaskProgressReq struct {
	Name     string `json:"name" binding:"required"`
	Progress *int   `json:"progress" binding:"required"`
}

// UpdateTaskProgress sets one task's numeric progress and derives the
// matching status transition.
func (h *TaskHandler) UpdateTaskProgress(c *gin.Context) {
	req := UpdateTaskProgressReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	id := c.Param("id")
	task, err := h.svc.UpdateProgress(c.Request.Context(), service.UpdateTaskProgressInput{
		ProjectID: id,
		Name:      req.Name,
		Progress:  *req.Progress,
	})
	if err != nil {
		respondServiceErr(c, err)
		return
	}

	h.dashboard.Invalidate(c.Request.Context(), id)
	c.JSON(http.StatusOK, serializer.Response{Data: task})
}

// GetWorkflowTemplate returns the fixed workflow every project starts from.
func (h *TaskHandler) GetWorkflowTemplate(c *gin.Context) {
	c.JSON(http.StatusOK, serializer.Response{Data: h.svc.Template()})
}
