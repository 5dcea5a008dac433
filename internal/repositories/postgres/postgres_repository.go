package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ksys/admission-service/internal/cache"
	"github.com/ksys/admission-service/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager

	candidate    repositories.CandidateRepository
	statusChange repositories.StatusChangeRepository
	counter      repositories.CounterRepository
	gallery      repositories.GalleryRepository
	news         repositories.NewsRepository
	admin        repositories.AdminRepository
	profile      repositories.ProfileRepository
	user         repositories.UserRepository
	blob         repositories.BlobRepository
}

// RepositoryConfig holds configuration for repository initialization.
// User and Blob are external collaborators and may be nil in tools that
// only touch the database.
type RepositoryConfig struct {
	DB    *gorm.DB
	Cache *cache.CacheManager
	User  repositories.UserRepository
	Blob  repositories.BlobRepository
}

// NewPostgreSQLRepository creates the repository aggregate
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cacheManager := config.Cache
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil, 0)
	}

	return &PostgreSQLRepository{
		db:           config.DB,
		cacheManager: cacheManager,
		candidate:    NewCandidateRepository(config.DB, cacheManager),
		statusChange: NewStatusChangeRepository(config.DB),
		counter:      NewCounterRepository(config.DB),
		gallery:      NewGalleryRepository(config.DB, cacheManager),
		news:         NewNewsRepository(config.DB, cacheManager),
		admin:        NewAdminRepository(config.DB),
		profile:      NewProfileRepository(config.DB),
		user:         config.User,
		blob:         config.Blob,
	}
}

func (r *PostgreSQLRepository) Candidate() repositories.CandidateRepository {
	return r.candidate
}

func (r *PostgreSQLRepository) StatusChange() repositories.StatusChangeRepository {
	return r.statusChange
}

func (r *PostgreSQLRepository) Counter() repositories.CounterRepository {
	return r.counter
}

func (r *PostgreSQLRepository) Gallery() repositories.GalleryRepository {
	return r.gallery
}

func (r *PostgreSQLRepository) News() repositories.NewsRepository {
	return r.news
}

func (r *PostgreSQLRepository) Admin() repositories.AdminRepository {
	return r.admin
}

func (r *PostgreSQLRepository) Profile() repositories.ProfileRepository {
	return r.profile
}

// User returns the identity provider backed user repository
func (r *PostgreSQLRepository) User() repositories.UserRepository {
	return r.user
}

// Blob returns the upload store
func (r *PostgreSQLRepository) Blob() repositories.BlobRepository {
	return r.blob
}

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.cacheManager.Enabled() {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	var errs []error

	sqlDB, err := r.db.DB()
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to get database instance: %w", err))
	} else if err := sqlDB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}

	if err := r.cacheManager.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
	}

	return errors.Join(errs...)
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{
		config: config,
	}
}

// Initialize verifies connections and builds the repository
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.Cache != nil && rm.config.Cache.Enabled() {
		if err := rm.config.Cache.HealthCheck(ctx); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)
	return nil
}

// GetRepository returns the repository instance
func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

// HealthCheck checks the health of all repository connections
func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}
	return rm.repo.Ping(ctx)
}

// Shutdown closes all repository connections
func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}
	return rm.repo.Close()
}
