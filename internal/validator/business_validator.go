package validator

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ksys/admission-service/internal/models"
)

// BirthDateLayout is the accepted date of birth format
const BirthDateLayout = "2006-01-02"

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	bv := &BusinessValidator{
		validate: validator.New(),
		now:      time.Now,
	}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateAdmissionSubmit validates the admission form. Mobile number format
// is checked by the admission service after normalization.
func (bv *BusinessValidator) ValidateAdmissionSubmit(req *AdmissionSubmitRequest) ValidationErrors {
	return bv.Validate(req)
}

// ValidateStatusTransition validates a review decision against the current status
func (bv *BusinessValidator) ValidateStatusTransition(current, next models.CandidateStatus) ValidationErrors {
	if current.CanTransitionTo(next) {
		return nil
	}
	return ValidationErrors{{
		Field:   "status",
		Message: "cannot transition from " + string(current) + " to " + string(next),
		Value:   next,
		Rule:    "status_transition",
	}}
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Rejects whitespace-only strings
	bv.validate.RegisterValidation("not_blank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	// Date of birth: YYYY-MM-DD, not in the future
	bv.validate.RegisterValidation("birth_date", func(fl validator.FieldLevel) bool {
		dob, err := time.Parse(BirthDateLayout, fl.Field().String())
		if err != nil {
			return false
		}
		return !dob.After(bv.now())
	})

	// Review decisions only
	bv.validate.RegisterValidation("candidate_status", func(fl validator.FieldLevel) bool {
		return models.CandidateStatus(fl.Field().String()).IsTerminal()
	})
}
