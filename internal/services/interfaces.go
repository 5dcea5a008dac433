package services

import (
	"context"
	"io"

	"github.com/ksys/admission-service/internal/models"
	"github.com/ksys/admission-service/internal/repositories"
	"github.com/ksys/admission-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

type AdmissionSubmitRequest = validator.AdmissionSubmitRequest
type StatusUpdateRequest = validator.StatusUpdateRequest
type GalleryItemRequest = validator.GalleryItemRequest
type NewsCreateRequest = validator.NewsCreateRequest
type NewsEditRequest = validator.NewsEditRequest
type ProfileRequest = validator.ProfileRequest

type SubmissionResponse struct {
	AdmissionID string                 `json:"admission_id"`
	Status      models.CandidateStatus `json:"status"`
}

type StatusUpdateResponse struct {
	AdmissionID string                 `json:"admission_id"`
	Status      models.CandidateStatus `json:"status"`
	PrintURL    string                 `json:"print_url,omitempty"`
}

type CandidateListResponse struct {
	Candidates []*models.Candidate `json:"candidates"`
	Total      int64               `json:"total"`
	Limit      int                 `json:"limit"`
	Offset     int                 `json:"offset"`
}

// LookupState is the outcome of a reprint lookup
type LookupState string

const (
	LookupFound       LookupState = "found"
	LookupNotFound    LookupState = "not_found"
	LookupUnavailable LookupState = "unavailable"
)

type LookupResult struct {
	State     LookupState    `json:"state"`
	Candidate *models.IDCard `json:"candidate,omitempty"`
}

type UploadRequest struct {
	Filename string
	Data     []byte
}

// ===== SERVICE INTERFACES =====

type CandidateService interface {
	Submit(ctx context.Context, req *AdmissionSubmitRequest) (*SubmissionResponse, error)
	LookupByMobile(ctx context.Context, mobile string) (*LookupResult, error)

	// Admin operations
	UpdateStatus(ctx context.Context, admissionID string, req *StatusUpdateRequest, actor string) (*StatusUpdateResponse, error)
	GetByAdmissionID(ctx context.Context, admissionID, actor string) (*models.Candidate, error)
	GetIDCard(ctx context.Context, admissionID, actor string) (*models.IDCard, error)
	ListByStatus(ctx context.Context, status models.CandidateStatus, filters repositories.CandidateFilters, actor string) (*CandidateListResponse, error)
	List(ctx context.Context, filters repositories.CandidateFilters, actor string) (*CandidateListResponse, error)
	History(ctx context.Context, admissionID, actor string) ([]*models.CandidateStatusChange, error)
	Delete(ctx context.Context, admissionID, actor string) (bool, error)
	Stats(ctx context.Context, actor string) (*models.CandidateStats, error)
}

type GalleryService interface {
	Add(ctx context.Context, req *GalleryItemRequest, actor string) (*models.GalleryItem, error)
	List(ctx context.Context) ([]*models.GalleryItem, error)
	Delete(ctx context.Context, description, actor string) error
}

type NewsService interface {
	Create(ctx context.Context, req *NewsCreateRequest, actor string) (*models.NewsItem, error)
	Edit(ctx context.Context, title string, req *NewsEditRequest, actor string) (*models.NewsItem, error)
	Delete(ctx context.Context, title, actor string) error
	List(ctx context.Context) ([]*models.NewsItem, error)
}

type AdminService interface {
	InitializeSuperAdmin(ctx context.Context, caller string) (bool, error)
	IsAdmin(ctx context.Context, principal string) (bool, error)
	IsSuperAdmin(ctx context.Context, principal string) (bool, error)
	GetCallerUserRole(ctx context.Context, caller string) (models.UserRole, error)
	GetAdmins(ctx context.Context, caller string) ([]models.AdminResponse, error)
	AddAdmin(ctx context.Context, caller, principal string) (bool, error)
	RemoveAdmin(ctx context.Context, caller, principal string) (bool, error)
	AssignUserRole(ctx context.Context, caller, principal string, role models.UserRole) error
	ResetAdminSystemForce(ctx context.Context, caller string) (int64, error)
}

type ProfileService interface {
	GetCallerProfile(ctx context.Context, caller string) (*models.UserProfile, error)
	SaveCallerProfile(ctx context.Context, caller string, req *ProfileRequest) (*models.UserProfile, error)
	GetUserProfile(ctx context.Context, caller, principal string) (*models.UserProfile, error)
}

type UploadService interface {
	Upload(ctx context.Context, req *UploadRequest) (*repositories.BlobObject, error)
}

type ExportService interface {
	ExportCandidates(ctx context.Context, w io.Writer, filters repositories.CandidateFilters, actor string) error
}

// ServiceManager owns service lifecycle
type ServiceManager interface {
	Candidate() CandidateService
	Gallery() GalleryService
	News() NewsService
	Admin() AdminService
	Profile() ProfileService
	Upload() UploadService
	Export() ExportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
