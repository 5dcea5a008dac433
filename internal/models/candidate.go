package models

import (
	"time"

	"gorm.io/datatypes"
)

type CandidateStatus string

const (
	CandidatePending  CandidateStatus = "pending"
	CandidateApproved CandidateStatus = "approved"
	CandidateRejected CandidateStatus = "rejected"
)

// IsValid reports whether s is a known status
func (s CandidateStatus) IsValid() bool {
	switch s {
	case CandidatePending, CandidateApproved, CandidateRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from s
func (s CandidateStatus) IsTerminal() bool {
	return s == CandidateApproved || s == CandidateRejected
}

// CanTransitionTo reports whether a review may move a candidate from s to next
func (s CandidateStatus) CanTransitionTo(next CandidateStatus) bool {
	return s == CandidatePending && next.IsTerminal()
}

type Candidate struct {
	ID                uint            `json:"-" gorm:"primaryKey"`
	AdmissionID       string          `json:"admission_id" gorm:"uniqueIndex;not null;size:20"`
	FullName          string          `json:"full_name" gorm:"not null;size:150"`
	FatherName        string          `json:"father_name" gorm:"not null;size:150"`
	DateOfBirth       string          `json:"date_of_birth" gorm:"not null;size:10"`
	Mobile            string          `json:"mobile" gorm:"uniqueIndex;not null;size:10"`
	LastQualification string          `json:"last_qualification" gorm:"size:150"`
	Address           string          `json:"address" gorm:"type:text;not null"`
	PhotoURL          *string         `json:"photo_url,omitempty" gorm:"size:500"`
	Status            CandidateStatus `json:"status" gorm:"not null;default:pending;index;size:20"`

	ReviewedBy *string    `json:"reviewed_by,omitempty" gorm:"size:255"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Candidate) TableName() string {
	return "candidates"
}

// CandidateStatusChange is the audit trail of review decisions
type CandidateStatusChange struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	AdmissionID string          `json:"admission_id" gorm:"not null;index;size:20"`
	FromStatus  CandidateStatus `json:"from_status" gorm:"not null;size:20"`
	ToStatus    CandidateStatus `json:"to_status" gorm:"not null;size:20"`
	ChangedBy   string          `json:"changed_by" gorm:"not null;size:255"`
	Metadata    datatypes.JSON  `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (CandidateStatusChange) TableName() string {
	return "candidate_status_changes"
}

// AdmissionCounter holds the last serial issued for a year
type AdmissionCounter struct {
	Year      int       `gorm:"primaryKey;autoIncrement:false"`
	LastValue int       `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

func (AdmissionCounter) TableName() string {
	return "admission_counters"
}
