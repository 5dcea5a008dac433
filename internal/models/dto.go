package models

import "time"

// ===== ERROR RESPONSES =====

type ErrorResponse struct {
	Error     string      `json:"error,omitempty"`
	Message   string      `json:"message"`
	Code      string      `json:"code,omitempty"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Path      string      `json:"path,omitempty"`
}

type SuccessResponse struct {
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ===== STATS =====

type CandidateStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// IDCard is the data needed to render a printable admission card
type IDCard struct {
	AdmissionID       string          `json:"admission_id"`
	FullName          string          `json:"full_name"`
	FatherName        string          `json:"father_name"`
	DateOfBirth       string          `json:"date_of_birth"`
	Mobile            string          `json:"mobile"`
	LastQualification string          `json:"last_qualification"`
	Address           string          `json:"address"`
	PhotoURL          *string         `json:"photo_url,omitempty"`
	Status            CandidateStatus `json:"status"`
	IssuedAt          time.Time       `json:"issued_at"`
}

// NewIDCard builds the card view of a candidate
func NewIDCard(c *Candidate) *IDCard {
	return &IDCard{
		AdmissionID:       c.AdmissionID,
		FullName:          c.FullName,
		FatherName:        c.FatherName,
		DateOfBirth:       c.DateOfBirth,
		Mobile:            c.Mobile,
		LastQualification: c.LastQualification,
		Address:           c.Address,
		PhotoURL:          c.PhotoURL,
		Status:            c.Status,
		IssuedAt:          c.CreatedAt,
	}
}
