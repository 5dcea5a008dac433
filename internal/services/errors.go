package services

import (
	"errors"
	"fmt"

	"github.com/ksys/admission-service/internal/validator"
)

type ValidationError = validator.ValidationError
type ValidationErrors = validator.ValidationErrors

// Candidate errors
var (
	ErrCandidateNotFound       = errors.New("candidate not found")
	ErrMobileAlreadyRegistered = errors.New("mobile_already_registered")
	ErrInvalidMobile           = errors.New("invalid_mobile_number")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrInvalidStatus           = errors.New("invalid candidate status")
)

// Content errors
var (
	ErrGalleryItemExists   = errors.New("gallery item with this description already exists")
	ErrGalleryItemNotFound = errors.New("gallery item not found")
	ErrNewsItemExists      = errors.New("news item with this title already exists")
	ErrNewsItemNotFound    = errors.New("news item not found")
)

// Roster and profile errors
var (
	ErrNotAdmin               = errors.New("caller is not an admin")
	ErrNotSuperAdmin          = errors.New("caller is not the super admin")
	ErrUnauthenticated        = errors.New("authentication required")
	ErrCannotRemoveSuperAdmin = errors.New("super admin cannot be removed")
	ErrUserNotFound           = errors.New("user not found")
	ErrProfileNotFound        = errors.New("profile not found")
	ErrInvalidRole            = errors.New("invalid role")
)

// Upload errors
var (
	ErrFileTooLarge           = errors.New("file too large")
	ErrUnsupportedContentType = errors.New("unsupported content type")
	ErrEmptyFile              = errors.New("empty file")
)

// ErrServiceUnavailable marks storage or transport failures
var ErrServiceUnavailable = errors.New("service unavailable")

// MobileAlreadyRegisteredError carries the admission ID issued earlier for the mobile
type MobileAlreadyRegisteredError struct {
	AdmissionID string
}

func (e *MobileAlreadyRegisteredError) Error() string {
	return fmt.Sprintf("mobile already registered with admission %s", e.AdmissionID)
}

func (e *MobileAlreadyRegisteredError) Unwrap() error {
	return ErrMobileAlreadyRegistered
}

// PermissionError reports a denied action
type PermissionError struct {
	Principal string `json:"principal"`
	Resource  string `json:"resource"`
	Action    string `json:"action"`
	Reason    string `json:"reason"`
}

func NewPermissionError(principal, resource, action, reason string) *PermissionError {
	return &PermissionError{
		Principal: principal,
		Resource:  resource,
		Action:    action,
		Reason:    reason,
	}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s on %s: %s", e.Action, e.Resource, e.Reason)
}

// BusinessRuleError reports a violated domain rule
type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message, Context: context}
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule %s violated: %s", e.Rule, e.Message)
}

func NewValidationError(field, message string, value interface{}) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message, Value: value}}
}
