package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/gorm"

	"github.com/ksys/admission-service/internal/events"
	"github.com/ksys/admission-service/internal/repositories"
	"github.com/ksys/admission-service/internal/validator"
)

// ServiceManagerConfig holds service level settings
type ServiceManagerConfig struct {
	UploadMaxBytes         int64
	AdminForceResetEnabled bool
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	config    ServiceManagerConfig

	candidateService CandidateService
	galleryService   GalleryService
	newsService      NewsService
	adminService     AdminService
	profileService   ProfileService
	uploadService    UploadService
	exportService    ExportService

	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		db:        db,
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		config:    config,
	}
}

// Initialize sets up all services
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	sm.candidateService = NewCandidateService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher)
	sm.galleryService = NewGalleryService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.newsService = NewNewsService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.adminService = NewAdminService(sm.repo, sm.db, sm.logger, sm.publisher, sm.config.AdminForceResetEnabled)
	sm.profileService = NewProfileService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.uploadService = NewUploadService(sm.repo, sm.logger, sm.config.UploadMaxBytes)
	sm.exportService = NewExportService(sm.repo, sm.logger)

	if sm.config.AdminForceResetEnabled {
		sm.logger.Warn("Admin force reset is enabled for every authenticated caller")
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")
	return nil
}

func (sm *serviceManager) mustBeReady(name string) {
	if !sm.initialized {
		panic("service manager not initialized: " + name)
	}
}

func (sm *serviceManager) Candidate() CandidateService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("candidate")
	return sm.candidateService
}

func (sm *serviceManager) Gallery() GalleryService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("gallery")
	return sm.galleryService
}

func (sm *serviceManager) News() NewsService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("news")
	return sm.newsService
}

func (sm *serviceManager) Admin() AdminService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("admin")
	return sm.adminService
}

func (sm *serviceManager) Profile() ProfileService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("profile")
	return sm.profileService
}

func (sm *serviceManager) Upload() UploadService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("upload")
	return sm.uploadService
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("export")
	return sm.exportService
}

// HealthCheck reports repository health
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	return nil
}

// Shutdown closes the event publisher and repository connections
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.publisher != nil {
		if err := sm.publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	if err := sm.repo.Close(); err != nil {
		sm.logger.Error("Failed to close repositories", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")
	return nil
}
