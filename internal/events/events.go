package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/ksys/admission-service/internal/models"
)

const (
	EventSource  = "admission-service"
	EventVersion = "1.0"
)

// Event types
const (
	CandidateSubmitted     = "candidate.submitted"
	CandidateStatusChanged = "candidate.status_changed"
	CandidateDeleted       = "candidate.deleted"
	AdminRosterChanged     = "admin.roster_changed"
)

// Event is the envelope published for every domain change
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent wraps data in an envelope with a fresh ID
func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        watermill.NewUUID(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

type CandidateSubmittedEvent struct {
	AdmissionID string    `json:"admission_id"`
	FullName    string    `json:"full_name"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type CandidateStatusChangedEvent struct {
	AdmissionID string                 `json:"admission_id"`
	FromStatus  models.CandidateStatus `json:"from_status"`
	ToStatus    models.CandidateStatus `json:"to_status"`
	ChangedBy   string                 `json:"changed_by"`
	ChangedAt   time.Time              `json:"changed_at"`
}

type CandidateDeletedEvent struct {
	AdmissionID string `json:"admission_id"`
	DeletedBy   string `json:"deleted_by"`
}

type AdminRosterChangedEvent struct {
	Action    string `json:"action"` // "added", "removed", "reset", "initialized"
	Principal string `json:"principal,omitempty"`
	ChangedBy string `json:"changed_by"`
}
