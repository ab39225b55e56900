package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sitedash-io/sitedash/internal/modules/serializer"
	"github.com/sitedash-io/sitedash/internal/modules/service"
)

type ExpenseHandler struct {
	svc       service.ExpenseService
	dashboard service.DashboardService
}

func NewExpenseHandler(svc service.ExpenseService, dashboard service.DashboardService) *ExpenseHandler {
	return &ExpenseHandler{svc: svc, dashboard: dashboard}
}

// ListExpenses returns a project's expenses in date order.
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	expenses, err := h.svc.ListByProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: expenses})
}

type AppendExpenseReq struct {
	Date        any    `json:"date"`
	Description string `json:"description"`
	Amount      any    `json:"amount" binding:"required"`
	Category    string `json:"category"`
	RecordedBy  string `json:"recorded_by"`
}

// AppendExpense records one expense against a project.
func (h *ExpenseHandler) AppendExpense(c *gin.Context) {
	req := AppendExpenseReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	id := c.Param("id")
	e, err := h.svc.Append(c.Request.Context(), service.AppendExpenseInput{
		ProjectID:   id,
		Date:        req.Date,
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		RecordedBy:  req.RecordedBy,
	})
	if err != nil {
		respondServiceErr(c, err)
		return
	}

	h.dashboard.Invalidate(c.Request.Context(), id)
	c.JSON(http.StatusCreated, serializer.Response{Data: e})
}
