package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-admissions-api/internal/dto"
	"github.com/noah-isme/uni-admissions-api/internal/models"
	"github.com/noah-isme/uni-admissions-api/internal/service"
	appErrors "github.com/noah-isme/uni-admissions-api/pkg/errors"
	"github.com/noah-isme/uni-admissions-api/pkg/response"
)

// ApplicationHandler exposes the application workflow endpoints.
type ApplicationHandler struct {
	workflow *service.WorkflowService
}

// NewApplicationHandler creates a new handler.
func NewApplicationHandler(workflow *service.WorkflowService) *ApplicationHandler {
	return &ApplicationHandler{workflow: workflow}
}

// Submit godoc
// @Summary Submit a draft application
// @Description Move a draft application into SUBMITTED
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /applications/{id}/submit [post]
func (h *ApplicationHandler) Submit(c *gin.Context) {
	app, err := h.workflow.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// Decide godoc
// @Summary Record a reviewer decision
// @Description Approve or reject an application under review
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.DecisionRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /applications/{id}/decision [post]
func (h *ApplicationHandler) Decide(c *gin.Context) {
	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid decision payload"))
		return
	}

	app, err := h.workflow.Decide(c.Request.Context(), c.Param("id"),
		models.DecisionOutcome(strings.ToUpper(req.Outcome)), req.Reason, req.Comments, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// Admit godoc
// @Summary Admit an approved application
// @Description Finalize an approved application as ADMITTED
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /applications/{id}/admit [post]
func (h *ApplicationHandler) Admit(c *gin.Context) {
	app, err := h.workflow.Admit(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// Reassign godoc
// @Summary Reassign an application
// @Description Move an assigned application to another officer
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.ReassignRequest true "Reassign payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /applications/{id}/reassign [post]
func (h *ApplicationHandler) Reassign(c *gin.Context) {
	var req dto.ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reassign payload"))
		return
	}

	app, err := h.workflow.Reassign(c.Request.Context(), c.Param("id"), req.OfficerID, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return page, pageSize
}
