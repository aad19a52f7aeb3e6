package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-admissions-api/internal/dto"
	"github.com/noah-isme/uni-admissions-api/internal/service"
	appErrors "github.com/noah-isme/uni-admissions-api/pkg/errors"
	"github.com/noah-isme/uni-admissions-api/pkg/response"
)

// QualificationHandler exposes SSC qualification endpoints.
type QualificationHandler struct {
	qualifications *service.QualificationService
}

// NewQualificationHandler creates a new handler.
func NewQualificationHandler(qualifications *service.QualificationService) *QualificationHandler {
	return &QualificationHandler{qualifications: qualifications}
}

// Get godoc
// @Summary Get an application's SSC qualification
// @Tags Qualifications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applications/{id}/qualification [get]
func (h *QualificationHandler) Get(c *gin.Context) {
	q, err := h.qualifications.GetByApplication(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, q, nil)
}

// Update godoc
// @Summary Update an application's SSC qualification
// @Description Rewrite the qualification record and return a fresh evaluation
// @Tags Qualifications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.UpdateQualificationRequest true "Qualification payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /applications/{id}/qualification [put]
func (h *QualificationHandler) Update(c *gin.Context) {
	var req dto.UpdateQualificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid qualification payload"))
		return
	}

	report, err := h.qualifications.Update(c.Request.Context(), c.Param("id"), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Evaluate godoc
// @Summary Evaluate an application's SSC qualification
// @Description Run completion, passing-subject, performance and minimum-requirement checks
// @Tags Qualifications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applications/{id}/qualification/evaluation [get]
func (h *QualificationHandler) Evaluate(c *gin.Context) {
	report, err := h.qualifications.Evaluate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
