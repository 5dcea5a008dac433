package validator

import (
	"time"

	"github.com/ksys/admission-service/internal/models"
)

// AdmissionSubmitRequest is the public admission form
type AdmissionSubmitRequest struct {
	FullName          string  `json:"full_name" validate:"required,not_blank,max=150"`
	FatherName        string  `json:"father_name" validate:"required,not_blank,max=150"`
	DateOfBirth       string  `json:"date_of_birth" validate:"required,birth_date"`
	Mobile            string  `json:"mobile" validate:"required,max=20"`
	LastQualification string  `json:"last_qualification" validate:"omitempty,max=150"`
	Address           string  `json:"address" validate:"required,not_blank,max=1000"`
	PhotoURL          *string `json:"photo_url" validate:"omitempty,url,max=500"`
}

// StatusUpdateRequest is an admin review decision
type StatusUpdateRequest struct {
	Status models.CandidateStatus `json:"status" validate:"required,candidate_status"`
	Reason *string                `json:"reason" validate:"omitempty,max=500"`
}

type ReprintRequest struct {
	Mobile string `json:"mobile" validate:"required,max=20"`
}

type GalleryItemRequest struct {
	ImageURL    string `json:"image_url" validate:"required,url,max=500"`
	Description string `json:"description" validate:"required,not_blank,max=500"`
}

type NewsCreateRequest struct {
	Title     string     `json:"title" validate:"required,not_blank,max=300"`
	Content   string     `json:"content" validate:"required,not_blank"`
	CreatedAt *time.Time `json:"created_at"`
}

type NewsEditRequest struct {
	Content   string     `json:"content" validate:"required,not_blank"`
	CreatedAt *time.Time `json:"created_at"`
}

type ProfileRequest struct {
	Name string `json:"name" validate:"required,not_blank,max=100"`
}

type AdminPrincipalRequest struct {
	Principal string `json:"principal" validate:"required,not_blank,max=255"`
}

type RoleAssignRequest struct {
	Principal string          `json:"principal" validate:"required,not_blank,max=255"`
	Role      models.UserRole `json:"role" validate:"required,oneof=admin user guest"`
}
