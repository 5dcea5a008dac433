package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ksys/admission-service/internal/services"
	"github.com/ksys/admission-service/internal/utils"
	"github.com/ksys/admission-service/internal/validator"
)

// AdmissionHandler serves the public admission form and the reprint lookup
type AdmissionHandler struct {
	BaseHandler
	candidateService services.CandidateService
}

func NewAdmissionHandler(candidateService services.CandidateService, logger utils.Logger) *AdmissionHandler {
	return &AdmissionHandler{
		BaseHandler:      NewBaseHandler(logger),
		candidateService: candidateService,
	}
}

// Submit registers a new application
// @Summary Submit admission form
// @Tags admissions
// @Accept json
// @Produce json
// @Param form body services.AdmissionSubmitRequest true "Admission form"
// @Success 201 {object} services.SubmissionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} map[string]interface{} "mobile_already_registered with admission_id"
// @Router /admissions [post]
func (h *AdmissionHandler) Submit(c *gin.Context) {
	var req services.AdmissionSubmitRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting admission")

	resp, err := h.candidateService.Submit(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Reprint looks up an application by mobile number
// @Summary Reprint lookup
// @Tags admissions
// @Accept json
// @Produce json
// @Param request body validator.ReprintRequest true "Mobile number"
// @Success 200 {object} services.LookupResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} services.LookupResult
// @Failure 503 {object} services.LookupResult
// @Router /reprint [post]
func (h *AdmissionHandler) Reprint(c *gin.Context) {
	var req validator.ReprintRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.candidateService.LookupByMobile(c.Request.Context(), req.Mobile)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	switch result.State {
	case services.LookupFound:
		c.JSON(http.StatusOK, result)
	case services.LookupNotFound:
		c.JSON(http.StatusNotFound, result)
	default:
		c.JSON(http.StatusServiceUnavailable, result)
	}
}
