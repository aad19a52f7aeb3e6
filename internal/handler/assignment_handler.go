package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-admissions-api/internal/dto"
	"github.com/noah-isme/uni-admissions-api/internal/models"
	"github.com/noah-isme/uni-admissions-api/internal/service"
	appErrors "github.com/noah-isme/uni-admissions-api/pkg/errors"
	"github.com/noah-isme/uni-admissions-api/pkg/response"
)

// AssignmentHandler exposes the distribution endpoints.
type AssignmentHandler struct {
	assignments *service.AssignmentService
	exports     *service.ExportService
}

// NewAssignmentHandler creates a new handler.
func NewAssignmentHandler(assignments *service.AssignmentService, exports *service.ExportService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments, exports: exports}
}

// Preview godoc
// @Summary Preview a distribution scope
// @Description Count available and unassigned applications in a scope without claiming any
// @Tags Assignments
// @Produce json
// @Param scope_type query string true "Scope type (FACULTY, DEPARTMENT, PROGRAM, RANDOM)"
// @Param scope_target_id query string false "Scope target ID"
// @Param session_id query string false "Admission session ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assignments/preview [get]
func (h *AssignmentHandler) Preview(c *gin.Context) {
	query := dto.PreviewQuery{
		ScopeType:     c.Query("scope_type"),
		ScopeTargetID: c.Query("scope_target_id"),
		SessionID:     c.Query("session_id"),
	}

	preview, err := h.assignments.Preview(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, preview, nil)
}

// Distribute godoc
// @Summary Distribute applications to an officer
// @Description Assign a batch of unassigned applications to an officer, oldest submissions first
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body dto.DistributeRequest true "Distribution payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assignments/distribute [post]
func (h *AssignmentHandler) Distribute(c *gin.Context) {
	var req dto.DistributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid distribution payload"))
		return
	}

	result, err := h.assignments.Distribute(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// OfficerApplications godoc
// @Summary List an officer's applications
// @Description Applications currently assigned to the officer, most recently assigned first
// @Tags Assignments
// @Produce json
// @Param id path string true "Officer ID"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /officers/{id}/applications [get]
func (h *AssignmentHandler) OfficerApplications(c *gin.Context) {
	page, pageSize := parsePagination(c)
	apps, total, err := h.assignments.OfficerApplications(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, apps, &models.Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	})
}

// WorkloadReport godoc
// @Summary Export an officer workload report
// @Description Download the officer's assigned applications as CSV or PDF
// @Tags Assignments
// @Produce octet-stream
// @Param id path string true "Officer ID"
// @Param format query string false "Report format (csv, pdf)"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /officers/{id}/workload-report [get]
func (h *AssignmentHandler) WorkloadReport(c *gin.Context) {
	file, err := h.exports.OfficerWorkloadReport(c.Request.Context(), c.Param("id"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Blob(c, file.ContentType, file.Filename, file.Payload)
}
