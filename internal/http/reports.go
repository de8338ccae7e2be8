package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/metrics"
	"github.com/mrlokans/bookshelf/internal/reports"
)

const pdfContentType = "application/pdf"

// ReportsController generates and serves PDF reports.
type ReportsController struct {
	reports *reports.Service
	audit   *audit.Service
	metrics *metrics.Metrics
}

func NewReportsController(reportService *reports.Service, auditService *audit.Service, m *metrics.Metrics) *ReportsController {
	return &ReportsController{reports: reportService, audit: auditService, metrics: m}
}

// Generate handles POST /api/reports/generate. The stored PDF is streamed back
// as an attachment.
func (rc *ReportsController) Generate(c *gin.Context) {
	var in reports.GenerateInput
	if !bindJSON(c, &in) {
		return
	}
	userID := auth.GetUserID(c)
	if user := auth.GetUser(c); user != nil {
		in.Owner = user.Name
	}

	generated, err := rc.reports.Generate(c.Request.Context(), userID, in)
	rc.metrics.ReportGenerated(string(in.ReportType), err)
	if err != nil {
		rc.audit.LogReport(userID, in.ReportType, 0, err)
		respondAppError(c, err)
		return
	}
	rc.audit.LogReport(userID, in.ReportType, generated.Report.ID, nil)

	c.Header("Content-Disposition", `attachment; filename="`+generated.Report.FileName+`"`)
	c.Data(http.StatusOK, pdfContentType, generated.Content)
}

// List handles GET /api/reports
func (rc *ReportsController) List(c *gin.Context) {
	offset, limit, ok := parsePagination(c)
	if !ok {
		return
	}
	list, err := rc.reports.List(c.Request.Context(), auth.GetUserID(c), offset, limit)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Download handles GET /api/reports/:id/download
func (rc *ReportsController) Download(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	report, err := rc.reports.Get(c.Request.Context(), auth.GetUserID(c), id)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.FileAttachment(report.FilePath, report.FileName)
}
