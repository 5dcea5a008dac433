package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ksys/admission-service/internal/models"
	"github.com/ksys/admission-service/internal/services"
	"github.com/ksys/admission-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CandidateHandler serves the admin review endpoints
type CandidateHandler struct {
	BaseHandler
	candidateService services.CandidateService
	exportService    services.ExportService
}

func NewCandidateHandler(candidateService services.CandidateService, exportService services.ExportService, logger utils.Logger) *CandidateHandler {
	return &CandidateHandler{
		BaseHandler:      NewBaseHandler(logger),
		candidateService: candidateService,
		exportService:    exportService,
	}
}

// ListCandidates lists all applications. Supports q, status, date_from, date_to, page, size, sort_by, sort_order.
// @Summary List candidates
// @Tags candidates
// @Produce json
// @Success 200 {object} services.CandidateListResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/candidates [get]
func (h *CandidateHandler) ListCandidates(c *gin.Context) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	filters := h.parseCandidateFilters(c)
	h.LogRequest(c, "Listing candidates", "query", filters.Query)

	resp, err := h.candidateService.List(c.Request.Context(), filters, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListPending returns the review queue
// @Summary List pending candidates
// @Tags candidates
// @Produce json
// @Success 200 {object} services.CandidateListResponse
// @Router /admin/candidates/pending [get]
func (h *CandidateHandler) ListPending(c *gin.Context) {
	h.listByStatus(c, models.CandidatePending)
}

// ListByStatus returns candidates in the status named by the path
// @Summary List candidates by status
// @Tags candidates
// @Produce json
// @Param status path string true "pending, approved or rejected"
// @Success 200 {object} services.CandidateListResponse
// @Router /admin/candidates/status/{status} [get]
func (h *CandidateHandler) ListByStatus(c *gin.Context) {
	status, ok := h.parseStringParam(c, "status")
	if !ok {
		return
	}
	h.listByStatus(c, models.CandidateStatus(status))
}

func (h *CandidateHandler) listByStatus(c *gin.Context, status models.CandidateStatus) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	filters := h.parseCandidateFilters(c)
	resp, err := h.candidateService.ListByStatus(c.Request.Context(), status, filters, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetCandidate returns one application
// @Summary Get candidate
// @Tags candidates
// @Produce json
// @Param id path string true "Admission ID"
// @Success 200 {object} models.Candidate
// @Failure 404 {object} ErrorResponse
// @Router /admin/candidates/{id} [get]
func (h *CandidateHandler) GetCandidate(c *gin.Context) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}
	admissionID, ok := h.parseStringParam(c, "id")
	if !ok {
		return
	}

	candidate, err := h.candidateService.GetByAdmissionID(c.Request.Context(), admissionID, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, candidate)
}

// GetIDCard returns the data for the printable card
// @Summary Get printable ID card data
// @Tags candidates
// @Produce json
// @Param id path string true "Admission ID"
// @Success 200 {object} models.IDCard
// @Failure 404 {object} ErrorResponse
// @Router /admin/candidates/{id}/card [get]
func (h *CandidateHandler) GetIDCard(c *gin.Context) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}
	admissionID, ok := h.parseStringParam(c, "id")
	if !ok {
		return
	}

	card, err := h.candidateService.GetIDCard(c.Request.Context(), admissionID, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, card)
}

// GetHistory returns the review audit trail
// @Summary Get status history
// @Tags candidates
// @Produce json
// @Param id path string true "Admission ID"
// @Success 200 {array} models.CandidateStatusChange
// @Router /admin/candidates/{id}/history [get]
func (h *CandidateHandler) GetHistory(c *gin.Context) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}
	admissionID, ok := h.parseStringParam(c, "id")
	if !ok {
		return
	}

	history, err := h.candidateService.History(c.Request.Context(), admissionID, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

// UpdateStatus approves or rejects a pending application
// @Summary Update candidate status
// @Tags candidates
// @Accept json
// @Produce json
// @Param id path string true "Admission ID"
// @Param request body services.StatusUpdateRequest true "New status"
// @Success 200 {object} services.StatusUpdateResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/candidates/{id}/status [put]
func (h *CandidateHandler) UpdateStatus(c *gin.Context) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}
	admissionID, ok := h.parseStringParam(c, "id")
	if !ok {
		return
	}

	var req services.StatusUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.candidateService.UpdateStatus(c.Request.Context(), admissionID, &req, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteCandidate removes an application
// @Summary Delete candidate
// @Tags candidates
// @Produce json
// @Param id path string true "Admission ID"
// @Success 200 {object} map[string]bool
// @Router /admin/candidates/{id} [delete]
func (h *CandidateHandler) DeleteCandidate(c *gin.Context) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}
	admissionID, ok := h.parseStringParam(c, "id")
	if !ok {
		return
	}

	deleted, err := h.candidateService.Delete(c.Request.Context(), admissionID, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// GetStats returns counts per status
// @Summary Candidate statistics
// @Tags candidates
// @Produce json
// @Success 200 {object} models.CandidateStats
// @Router /admin/candidates/stats [get]
func (h *CandidateHandler) GetStats(c *gin.Context) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	stats, err := h.candidateService.Stats(c.Request.Context(), caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Export streams the roster as an XLSX workbook
// @Summary Export candidates
// @Tags candidates
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /admin/candidates/export [get]
func (h *CandidateHandler) Export(c *gin.Context) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	filters := h.parseCandidateFilters(c)

	var buf bytes.Buffer
	if err := h.exportService.ExportCandidates(c.Request.Context(), &buf, filters, caller); err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("candidates-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
