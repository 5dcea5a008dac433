package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ksys/admission-service/internal/repositories"
	"github.com/ksys/admission-service/internal/services"
	"github.com/ksys/admission-service/internal/utils"
)

type HandlerManager struct {
	admissionHandler *AdmissionHandler
	candidateHandler *CandidateHandler
	contentHandler   *ContentHandler
	adminHandler     *AdminHandler
	uploadHandler    *UploadHandler
	authMiddleware   *CasdoorAuthMiddleware
	serviceManager   services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	parser TokenParser,
	userRepo repositories.UserRepository,
	uploadMaxBytes int64,
) *HandlerManager {
	return &HandlerManager{
		admissionHandler: NewAdmissionHandler(serviceManager.Candidate(), logger),
		candidateHandler: NewCandidateHandler(serviceManager.Candidate(), serviceManager.Export(), logger),
		contentHandler:   NewContentHandler(serviceManager.Gallery(), serviceManager.News(), logger),
		adminHandler:     NewAdminHandler(serviceManager.Admin(), serviceManager.Profile(), logger),
		uploadHandler:    NewUploadHandler(serviceManager.Upload(), uploadMaxBytes, logger),
		authMiddleware:   NewCasdoorAuthMiddleware(parser, userRepo, serviceManager.Admin(), logger),
		serviceManager:   serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		// Public routes
		v1.POST("/admissions", hm.admissionHandler.Submit)
		v1.POST("/reprint", hm.admissionHandler.Reprint)
		v1.POST("/uploads", hm.uploadHandler.Upload)
		v1.GET("/gallery", hm.contentHandler.ListGallery)
		v1.GET("/news", hm.contentHandler.ListNews)
		v1.GET("/me/role", hm.authMiddleware.OptionalAuthMiddleware(), hm.adminHandler.GetCallerRole)

		// Authenticated routes
		authed := v1.Group("")
		authed.Use(hm.authMiddleware.AuthMiddleware())
		{
			authed.GET("/me/admin", hm.adminHandler.IsCallerAdmin)
			authed.GET("/me/profile", hm.adminHandler.GetCallerProfile)
			authed.PUT("/me/profile", hm.adminHandler.SaveCallerProfile)
			authed.GET("/users/:principal/profile", hm.adminHandler.GetUserProfile)

			authed.POST("/admins/initialize", hm.adminHandler.InitializeSuperAdmin)
			authed.POST("/admins/reset", hm.adminHandler.ResetAdminSystem)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireAdminMiddleware())
		{
			candidates := admin.Group("/candidates")
			{
				candidates.GET("", hm.candidateHandler.ListCandidates)
				candidates.GET("/pending", hm.candidateHandler.ListPending)
				candidates.GET("/status/:status", hm.candidateHandler.ListByStatus)
				candidates.GET("/stats", hm.candidateHandler.GetStats)
				candidates.GET("/export", hm.candidateHandler.Export)
				candidates.GET("/:id", hm.candidateHandler.GetCandidate)
				candidates.GET("/:id/card", hm.candidateHandler.GetIDCard)
				candidates.GET("/:id/history", hm.candidateHandler.GetHistory)
				candidates.PUT("/:id/status", hm.candidateHandler.UpdateStatus)
				candidates.DELETE("/:id", hm.candidateHandler.DeleteCandidate)
			}

			// Descriptions and titles are free text and travel in the query string
			admin.POST("/gallery", hm.contentHandler.AddGalleryItem)
			admin.DELETE("/gallery", hm.contentHandler.DeleteGalleryItem)

			admin.POST("/news", hm.contentHandler.CreateNews)
			admin.PUT("/news", hm.contentHandler.EditNews)
			admin.DELETE("/news", hm.contentHandler.DeleteNews)

			// Super admin checks happen in the service
			admin.GET("/admins", hm.adminHandler.ListAdmins)
			admin.POST("/admins", hm.adminHandler.AddAdmin)
			admin.DELETE("/admins/:principal", hm.adminHandler.RemoveAdmin)
			admin.PUT("/roles", hm.adminHandler.AssignRole)
		}
	}
}

// HealthCheck reports database and cache reachability
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "admission-service",
	})
}
