package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sitedash-io/sitedash/internal/modules/serializer"
	"github.com/sitedash-io/sitedash/internal/modules/service"
)

type ProjectHandler struct {
	svc       service.ProjectService
	dashboard service.DashboardService
}

func NewProjectHandler(svc service.ProjectService, dashboard service.DashboardService) *ProjectHandler {
	return &ProjectHandler{svc: svc, dashboard: dashboard}
}

type ListProjectsReq struct {
	Limit    int    `form:"limit,default=20" json:"limit" binding:"min=1,max=200"`
	Cursor   string `form:"cursor" json:"cursor"`
	TimeDesc bool   `form:"time_desc,default=true" json:"time_desc"`
}

// ListProjects returns a page of projects ordered by creation time.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	req := ListProjectsReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.List(c.Request.Context(), service.ListProjectsInput{
		Limit:    req.Limit,
		Cursor:   req.Cursor,
		TimeDesc: req.TimeDesc,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.StoreErr("", err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

// GetProject returns one project by id.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: p})
}

type CreateProjectReq struct {
	ID         string         `json:"id"`
	Name       string         `json:"name" binding:"required"`
	Location   string         `json:"location"`
	Contractor string         `json:"contractor"`
	Engineer   string         `json:"engineer"`
	Contacts   map[string]any `json:"contacts"`
	StartDate  any            `json:"start_date"`
	Deadline   any            `json:"deadline"`
	Budget     any            `json:"budget"`
}

// CreateProject creates a project and seeds its workflow. A partially
// seeded workflow still creates the project; the response carries a
// warning so the client can retry the seed.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	req := CreateProjectReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	p, err := h.svc.Create(c.Request.Context(), service.CreateProjectInput{
		ID:         req.ID,
		Name:       req.Name,
		Location:   req.Location,
		Contractor: req.Contractor,
		Engineer:   req.Engineer,
		Contacts:   req.Contacts,
		StartDate:  req.StartDate,
		Deadline:   req.Deadline,
		Budget:     req.Budget,
	})
	if err != nil {
		var pf *service.PartialFailure
		if errors.As(err, &pf) && p != nil {
			c.JSON(http.StatusCreated, serializer.Response{
				Code: http.StatusCreated,
				Data: p,
				Msg:  pf.Error(),
			})
			return
		}
		if errors.Is(err, service.ErrDuplicateID) {
			c.JSON(http.StatusConflict, serializer.Err(http.StatusConflict, "project id already exists", err))
			return
		}
		respondServiceErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: p})
}

type UpdateProjectReq struct {
	Name       string         `json:"name" binding:"required"`
	Location   string         `json:"location"`
	Contractor string         `json:"contractor"`
	Engineer   string         `json:"engineer"`
	Contacts   map[string]any `json:"contacts"`
	StartDate  any            `json:"start_date"`
	Deadline   any            `json:"deadline"`
	Budget     any            `json:"budget"`
}

// UpdateProject replaces a project's editable fields wholesale.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	req := UpdateProjectReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	id := c.Param("id")
	p, err := h.svc.Update(c.Request.Context(), id, service.UpdateProjectInput{
		Name:       req.Name,
		Location:   req.Location,
		Contractor: req.Contractor,
		Engineer:   req.Engineer,
		Contacts:   req.Contacts,
		StartDate:  req.StartDate,
		Deadline:   req.Deadline,
		Budget:     req.Budget,
	})
	if err != nil {
		respondServiceErr(c, err)
		return
	}

	h.dashboard.Invalidate(c.Request.Context(), id)
	c.JSON(http.StatusOK, serializer.Response{Data: p})
}

// DeleteProject removes a project and everything recorded against it.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		var pf *service.PartialFailure
		if errors.As(err, &pf) {
			c.JSON(http.StatusInternalServerError, serializer.Err(http.StatusInternalServerError, pf.Error(), err))
			return
		}
		respondServiceErr(c, err)
		return
	}

	h.dashboard.Invalidate(c.Request.Context(), id)
	c.JSON(http.StatusOK, serializer.Response{Msg: "deleted"})
}

// respondServiceErr maps common service errors onto HTTP responses.
func respondServiceErr(c *gin.Context, err error) {
	if errors.Is(err, service.ErrValidation) {
		c.JSON(http.StatusBadRequest, serializer.ParamErr(err.Error(), err))
		return
	}
	resp := serializer.StoreErr("", err)
	c.JSON(resp.Code, resp)
}
