package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ksys/admission-service/internal/services"
	"github.com/ksys/admission-service/internal/utils"
	"github.com/ksys/admission-service/internal/validator"
)

// AdminHandler serves roster, role and profile endpoints
type AdminHandler struct {
	BaseHandler
	adminService   services.AdminService
	profileService services.ProfileService
}

func NewAdminHandler(adminService services.AdminService, profileService services.ProfileService, logger utils.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:    NewBaseHandler(logger),
		adminService:   adminService,
		profileService: profileService,
	}
}

// GetCallerRole reports admin, user or guest. Works without a token.
// @Summary Get caller role
// @Tags roles
// @Produce json
// @Success 200 {object} map[string]string
// @Router /me/role [get]
func (h *AdminHandler) GetCallerRole(c *gin.Context) {
	role, err := h.adminService.GetCallerUserRole(c.Request.Context(), h.callerID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"role": role})
}

// IsCallerAdmin reports whether the caller is on the roster
// @Summary Is caller admin
// @Tags roles
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /me/admin [get]
func (h *AdminHandler) IsCallerAdmin(c *gin.Context) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	isAdmin, err := h.adminService.IsAdmin(c.Request.Context(), caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_admin": isAdmin})
}

// InitializeSuperAdmin makes the caller super admin when none exists
// @Summary Initialize super admin
// @Tags admins
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /admins/initialize [post]
func (h *AdminHandler) InitializeSuperAdmin(c *gin.Context) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	initialized, err := h.adminService.InitializeSuperAdmin(c.Request.Context(), caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"initialized": initialized})
}

// ResetAdminSystem clears the roster
// @Summary Force reset admin roster
// @Tags admins
// @Produce json
// @Success 200 {object} map[string]int64
// @Failure 403 {object} ErrorResponse
// @Router /admins/reset [post]
func (h *AdminHandler) ResetAdminSystem(c *gin.Context) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	removed, err := h.adminService.ResetAdminSystemForce(c.Request.Context(), caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.requestLogger(c).Warn("Admin roster reset", "caller", caller, "removed", removed)
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// ListAdmins returns the roster
// @Summary List admins
// @Tags admins
// @Produce json
// @Success 200 {array} models.AdminResponse
// @Router /admin/admins [get]
func (h *AdminHandler) ListAdmins(c *gin.Context) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	admins, err := h.adminService.GetAdmins(c.Request.Context(), caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, admins)
}

// AddAdmin grants admin to a principal
// @Summary Add admin
// @Tags admins
// @Accept json
// @Produce json
// @Param request body validator.AdminPrincipalRequest true "Principal"
// @Success 200 {object} map[string]bool
// @Router /admin/admins [post]
func (h *AdminHandler) AddAdmin(c *gin.Context) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	var req validator.AdminPrincipalRequest
	if !h.bindJSON(c, &req) {
		return
	}

	added, err := h.adminService.AddAdmin(c.Request.Context(), caller, req.Principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"added": added})
}

// RemoveAdmin revokes admin from a principal
// @Summary Remove admin
// @Tags admins
// @Produce json
// @Param principal path string true "Principal"
// @Success 200 {object} map[string]bool
// @Failure 409 {object} ErrorResponse
// @Router /admin/admins/{principal} [delete]
func (h *AdminHandler) RemoveAdmin(c *gin.Context) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}
	principal, ok := h.parseStringParam(c, "principal")
	if !ok {
		return
	}

	removed, err := h.adminService.RemoveAdmin(c.Request.Context(), caller, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// AssignRole grants or revokes admin through a role name
// @Summary Assign user role
// @Tags roles
// @Accept json
// @Produce json
// @Param request body validator.RoleAssignRequest true "Role assignment"
// @Success 200 {object} SuccessResponse
// @Router /admin/roles [put]
func (h *AdminHandler) AssignRole(c *gin.Context) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	var req validator.RoleAssignRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.adminService.AssignUserRole(c.Request.Context(), caller, req.Principal, req.Role); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondSuccess(c, http.StatusOK, "Role assigned successfully", gin.H{
		"principal": req.Principal,
		"role":      req.Role,
	})
}

// ===== PROFILES =====

// GetCallerProfile returns the caller's profile
// @Summary Get own profile
// @Tags profiles
// @Produce json
// @Success 200 {object} models.UserProfile
// @Failure 404 {object} ErrorResponse
// @Router /me/profile [get]
func (h *AdminHandler) GetCallerProfile(c *gin.Context) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetCallerProfile(c.Request.Context(), caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// SaveCallerProfile creates or renames the caller's profile
// @Summary Save own profile
// @Tags profiles
// @Accept json
// @Produce json
// @Param request body services.ProfileRequest true "Profile"
// @Success 200 {object} models.UserProfile
// @Router /me/profile [put]
func (h *AdminHandler) SaveCallerProfile(c *gin.Context) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	var req services.ProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	profile, err := h.profileService.SaveCallerProfile(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetUserProfile returns another principal's profile. Self or admin only.
// @Summary Get user profile
// @Tags profiles
// @Produce json
// @Param principal path string true "Principal"
// @Success 200 {object} models.UserProfile
// @Router /users/{principal}/profile [get]
func (h *AdminHandler) GetUserProfile(c *gin.Context) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}
	principal, ok := h.parseStringParam(c, "principal")
	if !ok {
		return
	}

	profile, err := h.profileService.GetUserProfile(c.Request.Context(), caller, principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
