package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sitedash-io/sitedash/internal/modules/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	svc service.ReportService
}

func NewReportHandler(svc service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// GenerateReport renders the project workbook and streams it as a
// download. When the report was archived, X-Archive-Url carries a
// presigned link to the stored copy.
func (h *ReportHandler) GenerateReport(c *gin.Context) {
	report, err := h.svc.Generate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceErr(c, err)
		return
	}

	if report.ArchiveURL != "" {
		c.Header("X-Archive-Url", report.ArchiveURL)
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", report.Filename))
	c.Data(http.StatusOK, xlsxContentType, report.Content)
}
