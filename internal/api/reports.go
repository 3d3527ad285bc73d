package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hearthforum/hearth/internal/auth"
	"github.com/hearthforum/hearth/internal/forum"
)

// ReportAPI serves report submission and the admin review queue.
type ReportAPI struct {
	reports *forum.ReportService
}

// NewReportAPI creates a new report API
func NewReportAPI(reports *forum.ReportService) *ReportAPI {
	return &ReportAPI{reports: reports}
}

type submitReportRequest struct {
	TargetType string `json:"targetType" binding:"required"`
	TargetID   string `json:"targetId" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
}

// SubmitReport handles POST /api/reports. A duplicate of a still pending
// report answers 200 with alreadyReported set rather than an error, so the
// reporting UI stays friendly.
func (a *ReportAPI) SubmitReport(c *gin.Context) {
	var req submitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "targetType, targetId and reason are required")
		return
	}

	result, err := a.reports.Submit(c.Request.Context(), auth.FromContext(c), req.TargetType, req.TargetID, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	if result.AlreadyReported {
		c.JSON(http.StatusOK, result)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListReports handles GET /api/admin/reports
func (a *ReportAPI) ListReports(c *gin.Context) {
	views, err := a.reports.List(c.Request.Context(), auth.FromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": views})
}

type setReportStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetReportStatus handles PUT /api/admin/reports/:id
func (a *ReportAPI) SetReportStatus(c *gin.Context) {
	var req setReportStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "status is required")
		return
	}

	err := a.reports.SetStatus(c.Request.Context(), auth.FromContext(c), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": req.Status})
}
