package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sitedash-io/sitedash/internal/modules/serializer"
	"github.com/sitedash-io/sitedash/internal/modules/service"
)

type MaterialHandler struct {
	svc       service.MaterialService
	dashboard service.DashboardService
}

func NewMaterialHandler(svc service.MaterialService, dashboard service.DashboardService) *MaterialHandler {
	return &MaterialHandler{svc: svc, dashboard: dashboard}
}

// ListMaterials returns a project's material rows with running balances.
func (h *MaterialHandler) ListMaterials(c *gin.Context) {
	materials, err := h.svc.ListByProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: materials})
}

type RecordDispatchReq struct {
	Item     string `json:"item" binding:"required"`
	Quantity any    `json:"quantity" binding:"required"`
	Required any    `json:"required"`
	Unit     string `json:"unit"`
}

// RecordDispatch adds a dispatched quantity against an item, creating the
// row on first dispatch.
func (h *MaterialHandler) RecordDispatch(c *gin.Context) {
	req := RecordDispatchReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	id := c.Param("id")
	m, err := h.svc.RecordDispatch(c.Request.Context(), service.RecordDispatchInput{
		ProjectID: id,
		Item:      req.Item,
		Quantity:  req.Quantity,
		Required:  req.Required,
		Unit:      req.Unit,
	})
	if err != nil {
		respondServiceErr(c, err)
		return
	}

	h.dashboard.Invalidate(c.Request.Context(), id)
	c.JSON(http.StatusOK, serializer.Response{Data: m})
}
