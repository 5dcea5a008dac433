package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ksys/admission-service/internal/models"
	"github.com/ksys/admission-service/internal/repositories"
	"github.com/ksys/admission-service/internal/services"
	"github.com/ksys/admission-service/internal/utils"
)

type ErrorResponse = models.ErrorResponse
type SuccessResponse = models.SuccessResponse

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// BaseHandler carries the helpers every handler shares
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) requestLogger(c *gin.Context) utils.Logger {
	return utils.FromContext(c.Request.Context(), h.logger)
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	h.requestLogger(c).Debug(msg, append(args, "path", c.FullPath())...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	h.requestLogger(c).Error(msg, append(args, "error", err, "path", c.FullPath())...)
}

func (h *BaseHandler) respondError(c *gin.Context, status int, code, message string, details interface{}) {
	c.JSON(status, ErrorResponse{
		Error:     strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_")),
		Message:   message,
		Code:      code,
		Details:   details,
		Timestamp: time.Now().UTC(),
		Path:      c.Request.URL.Path,
	})
}

func (h *BaseHandler) respondSuccess(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, SuccessResponse{
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

func (h *BaseHandler) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid_payload", "Invalid request payload", err.Error())
		return false
	}
	return true
}

// callerID returns the authenticated principal or an empty string
func (h *BaseHandler) callerID(c *gin.Context) string {
	id, err := GetUserIDFromContext(c)
	if err != nil {
		return ""
	}
	return id
}

func (h *BaseHandler) requireCaller(c *gin.Context) (string, bool) {
	id := h.callerID(c)
	if id == "" {
		h.respondError(c, http.StatusUnauthorized, "unauthenticated", "User not authenticated", nil)
		return "", false
	}
	return id, true
}

func (h *BaseHandler) parseStringParam(c *gin.Context, param string) (string, bool) {
	value := strings.TrimSpace(c.Param(param))
	if value == "" {
		h.respondError(c, http.StatusBadRequest, "invalid_parameter", "Invalid "+param, param+" cannot be empty")
		return "", false
	}
	return value, true
}

// parseStringQuery reads a required free-text key from the query string.
// Keys may contain slashes, so they never travel as path segments.
func (h *BaseHandler) parseStringQuery(c *gin.Context, param string) (string, bool) {
	value := strings.TrimSpace(c.Query(param))
	if value == "" {
		h.respondError(c, http.StatusBadRequest, "invalid_parameter", "Invalid "+param, param+" query parameter is required")
		return "", false
	}
	return value, true
}

func (h *BaseHandler) parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	valueStr := c.Query(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func (h *BaseHandler) parseTimeQuery(c *gin.Context, param string) *time.Time {
	valueStr := c.Query(param)
	if valueStr == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, valueStr); err == nil {
			return &t
		}
	}
	return nil
}

func (h *BaseHandler) parseCandidateFilters(c *gin.Context) repositories.CandidateFilters {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", defaultPageSize)
	if page < 1 {
		page = 1
	}
	if size < 1 || size > maxPageSize {
		size = defaultPageSize
	}

	filters := repositories.CandidateFilters{
		Query:     strings.TrimSpace(c.Query("q")),
		DateFrom:  h.parseTimeQuery(c, "date_from"),
		DateTo:    h.parseTimeQuery(c, "date_to"),
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if status := c.Query("status"); status != "" {
		candidateStatus := models.CandidateStatus(status)
		filters.Status = &candidateStatus
	}

	return filters
}

func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.respondError(c, http.StatusBadRequest, "validation_failed", "Validation failed", validationErrors)
		return
	}

	var registered *services.MobileAlreadyRegisteredError
	if errors.As(err, &registered) {
		c.JSON(http.StatusConflict, gin.H{
			"error":        "conflict",
			"code":         services.ErrMobileAlreadyRegistered.Error(),
			"message":      "Mobile number is already registered",
			"admission_id": registered.AdmissionID,
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		h.respondError(c, http.StatusUnprocessableEntity, businessRuleError.Rule, businessRuleError.Message, businessRuleError.Context)
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		h.respondError(c, http.StatusForbidden, "forbidden", "Access denied", map[string]interface{}{
			"resource": permissionError.Resource,
			"action":   permissionError.Action,
			"reason":   permissionError.Reason,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrInvalidMobile):
		h.respondError(c, http.StatusBadRequest, services.ErrInvalidMobile.Error(), "Mobile number must have 10 digits", nil)
	case errors.Is(err, services.ErrInvalidStatus), errors.Is(err, services.ErrInvalidRole), errors.Is(err, services.ErrEmptyFile):
		h.respondError(c, http.StatusBadRequest, "bad_request", err.Error(), nil)
	case errors.Is(err, services.ErrUnauthenticated):
		h.respondError(c, http.StatusUnauthorized, "unauthenticated", "User not authenticated", nil)
	case errors.Is(err, services.ErrNotAdmin), errors.Is(err, services.ErrNotSuperAdmin):
		h.respondError(c, http.StatusForbidden, "forbidden", err.Error(), nil)
	case errors.Is(err, services.ErrCandidateNotFound),
		errors.Is(err, services.ErrGalleryItemNotFound),
		errors.Is(err, services.ErrNewsItemNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrProfileNotFound):
		h.respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, services.ErrInvalidStatusTransition):
		h.respondError(c, http.StatusConflict, "invalid_status_transition", "Invalid candidate status transition", nil)
	case errors.Is(err, services.ErrGalleryItemExists),
		errors.Is(err, services.ErrNewsItemExists),
		errors.Is(err, services.ErrCannotRemoveSuperAdmin):
		h.respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	case errors.Is(err, services.ErrFileTooLarge):
		h.respondError(c, http.StatusRequestEntityTooLarge, "file_too_large", "File too large", nil)
	case errors.Is(err, services.ErrUnsupportedContentType):
		h.respondError(c, http.StatusUnsupportedMediaType, "unsupported_content_type", "Only JPEG, PNG and WebP images are accepted", nil)
	case errors.Is(err, services.ErrServiceUnavailable):
		h.LogError(c, err, "Dependency unavailable")
		h.respondError(c, http.StatusServiceUnavailable, "service_unavailable", "Service temporarily unavailable", nil)
	default:
		h.LogError(c, err, "Unexpected service error")
		h.respondError(c, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
	}
}
