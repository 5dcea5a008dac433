package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ksys/admission-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type CandidateFilters struct {
	Status    *models.CandidateStatus `json:"status"`
	Query     string                  `json:"query"` // name, mobile or admission ID
	DateFrom  *time.Time              `json:"date_from"`
	DateTo    *time.Time              `json:"date_to"`
	Limit     int                     `json:"limit"`
	Offset    int                     `json:"offset"`
	SortBy    string                  `json:"sort_by"`    // "created_at", "full_name", "admission_id"
	SortOrder string                  `json:"sort_order"` // "asc", "desc"
}

// StatusUpdate describes a guarded review transition
type StatusUpdate struct {
	AdmissionID string
	From        models.CandidateStatus
	To          models.CandidateStatus
	ReviewedBy  string
	ReviewedAt  time.Time
}

// ===== CANDIDATE DOMAIN =====

// CandidateRepository stores admission applications. Writes given a
// transaction leave the cache alone; the caller invalidates after commit.
type CandidateRepository interface {
	Create(ctx context.Context, tx *gorm.DB, candidate *models.Candidate) error
	GetByAdmissionID(ctx context.Context, tx *gorm.DB, admissionID string) (*models.Candidate, error)
	GetByMobile(ctx context.Context, tx *gorm.DB, mobile string) (*models.Candidate, error)
	List(ctx context.Context, tx *gorm.DB, filters CandidateFilters) ([]*models.Candidate, int64, error)

	// UpdateStatus applies the update only while the stored status equals
	// update.From and reports whether a row changed.
	UpdateStatus(ctx context.Context, tx *gorm.DB, update StatusUpdate) (bool, error)
	Delete(ctx context.Context, tx *gorm.DB, admissionID string) (bool, error)

	CountByStatus(ctx context.Context, tx *gorm.DB) (*models.CandidateStats, error)

	// InvalidateCache drops cached lookups for the candidate and the counters
	InvalidateCache(ctx context.Context, admissionID, mobile string)
}

// StatusChangeRepository keeps the review audit trail
type StatusChangeRepository interface {
	Create(ctx context.Context, tx *gorm.DB, change *models.CandidateStatusChange) error
	ListByAdmissionID(ctx context.Context, tx *gorm.DB, admissionID string) ([]*models.CandidateStatusChange, error)
	DeleteByAdmissionID(ctx context.Context, tx *gorm.DB, admissionID string) error
}

// CounterRepository issues per-year admission serials
type CounterRepository interface {
	// NextSerial must run inside a transaction; the counter row stays
	// locked until it commits.
	NextSerial(ctx context.Context, tx *gorm.DB, year int) (int, error)
}

// ===== CONTENT DOMAIN =====

type GalleryRepository interface {
	Create(ctx context.Context, tx *gorm.DB, item *models.GalleryItem) error
	GetByDescription(ctx context.Context, tx *gorm.DB, description string) (*models.GalleryItem, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.GalleryItem, error)
	DeleteByDescription(ctx context.Context, tx *gorm.DB, description string) (bool, error)
	InvalidateCache(ctx context.Context)
}

type NewsRepository interface {
	Create(ctx context.Context, tx *gorm.DB, item *models.NewsItem) error
	GetByTitle(ctx context.Context, tx *gorm.DB, title string) (*models.NewsItem, error)
	Update(ctx context.Context, tx *gorm.DB, item *models.NewsItem) error
	List(ctx context.Context, tx *gorm.DB) ([]*models.NewsItem, error)
	DeleteByTitle(ctx context.Context, tx *gorm.DB, title string) (bool, error)
	InvalidateCache(ctx context.Context)
}

// ===== ADMIN DOMAIN =====

type AdminRepository interface {
	Create(ctx context.Context, tx *gorm.DB, admin *models.Admin) error
	GetByPrincipal(ctx context.Context, tx *gorm.DB, principal string) (*models.Admin, error)
	GetSuperAdmin(ctx context.Context, tx *gorm.DB) (*models.Admin, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.Admin, error)
	Delete(ctx context.Context, tx *gorm.DB, principal string) (bool, error)
	DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error)
}

type ProfileRepository interface {
	GetByPrincipal(ctx context.Context, tx *gorm.DB, principal string) (*models.UserProfile, error)
	Upsert(ctx context.Context, tx *gorm.DB, profile *models.UserProfile) error
}
