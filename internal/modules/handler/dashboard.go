package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sitedash-io/sitedash/internal/modules/serializer"
	"github.com/sitedash-io/sitedash/internal/modules/service"
)

type DashboardHandler struct {
	svc service.DashboardService
}

func NewDashboardHandler(svc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

type OverviewReq struct {
	Refresh bool `form:"refresh,default=false" json:"refresh"`
}

// GetOverview returns the assembled dashboard for one project. Panels
// that failed to load are zero-valued and named in panel_errors.
func (h *DashboardHandler) GetOverview(c *gin.Context) {
	req := OverviewReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	ov, err := h.svc.LoadOverview(c.Request.Context(), c.Param("id"), req.Refresh)
	if err != nil {
		respondServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: ov})
}
