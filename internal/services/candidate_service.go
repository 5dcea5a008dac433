package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ksys/admission-service/internal/events"
	"github.com/ksys/admission-service/internal/models"
	"github.com/ksys/admission-service/internal/repositories"
	"github.com/ksys/admission-service/internal/utils"
	"github.com/ksys/admission-service/internal/validator"
)

const defaultListLimit = 50

type candidateService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher

	lookups singleflight.Group
	now     func() time.Time
}

func NewCandidateService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) CandidateService {
	return &candidateService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		now:       time.Now,
	}
}

// ===== SUBMISSION =====

func (s *candidateService) Submit(ctx context.Context, req *AdmissionSubmitRequest) (*SubmissionResponse, error) {
	if errs := s.validator.GetBusinessValidator().ValidateAdmissionSubmit(req); len(errs) > 0 {
		return nil, errs
	}

	mobile := utils.NormalizeMobile(req.Mobile)
	if !utils.IsValidMobile(mobile) {
		return nil, ErrInvalidMobile
	}

	s.logger.Info("Submitting admission form", "mobile_suffix", maskMobile(mobile))

	if existing, err := s.findByMobile(ctx, mobile); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, &MobileAlreadyRegisteredError{AdmissionID: existing.AdmissionID}
	}

	submittedAt := s.now()
	candidate := &models.Candidate{
		FullName:          strings.TrimSpace(req.FullName),
		FatherName:        strings.TrimSpace(req.FatherName),
		DateOfBirth:       req.DateOfBirth,
		Mobile:            mobile,
		LastQualification: strings.TrimSpace(req.LastQualification),
		Address:           strings.TrimSpace(req.Address),
		PhotoURL:          req.PhotoURL,
		Status:            models.CandidatePending,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		serial, err := s.repo.Counter().NextSerial(ctx, tx, submittedAt.Year())
		if err != nil {
			return fmt.Errorf("failed to allocate admission serial: %w", err)
		}
		candidate.AdmissionID = FormatAdmissionID(submittedAt.Year(), serial)

		return s.repo.Candidate().Create(ctx, tx, candidate)
	})
	if err != nil {
		if repositories.IsDuplicateError(err) {
			// Lost a race with a concurrent submission for the same mobile
			if existing, findErr := s.findByMobile(ctx, mobile); findErr == nil && existing != nil {
				return nil, &MobileAlreadyRegisteredError{AdmissionID: existing.AdmissionID}
			}
		}
		return nil, fmt.Errorf("failed to create candidate: %w", err)
	}
	s.repo.Candidate().InvalidateCache(ctx, candidate.AdmissionID, candidate.Mobile)

	s.logger.Info("Admission form submitted", "admission_id", candidate.AdmissionID)

	events.PublishBestEffort(ctx, s.publisher, s.logger, events.NewEvent(events.CandidateSubmitted, events.CandidateSubmittedEvent{
		AdmissionID: candidate.AdmissionID,
		FullName:    candidate.FullName,
		SubmittedAt: submittedAt,
	}))

	return &SubmissionResponse{
		AdmissionID: candidate.AdmissionID,
		Status:      candidate.Status,
	}, nil
}

// FormatAdmissionID renders the year followed by a zero and the five digit serial
func FormatAdmissionID(year, serial int) string {
	return fmt.Sprintf("%d0%05d", year, serial)
}

func (s *candidateService) findByMobile(ctx context.Context, mobile string) (*models.Candidate, error) {
	candidate, err := s.repo.Candidate().GetByMobile(ctx, nil, mobile)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to check mobile: %v", ErrServiceUnavailable, err)
	}
	return candidate, nil
}

// ===== REPRINT LOOKUP =====

func (s *candidateService) LookupByMobile(ctx context.Context, raw string) (*LookupResult, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, NewValidationError("mobile", "is required", raw)
	}

	mobile := utils.NormalizeMobile(raw)
	if !utils.IsValidMobile(mobile) {
		// A malformed number cannot be registered
		return &LookupResult{State: LookupNotFound}, nil
	}

	v, err, shared := s.lookups.Do(mobile, func() (interface{}, error) {
		return s.repo.Candidate().GetByMobile(context.WithoutCancel(ctx), nil, mobile)
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return &LookupResult{State: LookupNotFound}, nil
		}
		s.logger.Error("Reprint lookup failed", "error", err, "shared", shared)
		return &LookupResult{State: LookupUnavailable}, nil
	}

	return &LookupResult{
		State:     LookupFound,
		Candidate: models.NewIDCard(v.(*models.Candidate)),
	}, nil
}

// ===== STATUS WORKFLOW =====

func (s *candidateService) UpdateStatus(ctx context.Context, admissionID string, req *StatusUpdateRequest, actor string) (*StatusUpdateResponse, error) {
	if err := requireAdmin(ctx, s.repo, actor, "candidate", "update_status"); err != nil {
		return nil, err
	}
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	s.logger.Info("Updating candidate status", "admission_id", admissionID, "status", req.Status, "actor", actor)

	var from models.CandidateStatus
	var mobile string
	changedAt := s.now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		candidate, err := s.repo.Candidate().GetByAdmissionID(ctx, tx, admissionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrCandidateNotFound
			}
			return err
		}
		from, mobile = candidate.Status, candidate.Mobile

		if errs := s.validator.GetBusinessValidator().ValidateStatusTransition(from, req.Status); len(errs) > 0 {
			return fmt.Errorf("%w: %s", ErrInvalidStatusTransition, errs[0].Message)
		}

		changed, err := s.repo.Candidate().UpdateStatus(ctx, tx, repositories.StatusUpdate{
			AdmissionID: admissionID,
			From:        from,
			To:          req.Status,
			ReviewedBy:  actor,
			ReviewedAt:  changedAt,
		})
		if err != nil {
			return err
		}
		if !changed {
			return fmt.Errorf("%w: candidate was reviewed concurrently", ErrInvalidStatusTransition)
		}

		return s.repo.StatusChange().Create(ctx, tx, &models.CandidateStatusChange{
			AdmissionID: admissionID,
			FromStatus:  from,
			ToStatus:    req.Status,
			ChangedBy:   actor,
			Metadata:    statusMetadata(req.Reason),
		})
	})
	if err != nil {
		return nil, err
	}
	// Readers may have cached the old row while the transaction was open
	s.repo.Candidate().InvalidateCache(ctx, admissionID, mobile)

	s.logger.Info("Candidate status updated", "admission_id", admissionID, "from", from, "to", req.Status)

	events.PublishBestEffort(ctx, s.publisher, s.logger, events.NewEvent(events.CandidateStatusChanged, events.CandidateStatusChangedEvent{
		AdmissionID: admissionID,
		FromStatus:  from,
		ToStatus:    req.Status,
		ChangedBy:   actor,
		ChangedAt:   changedAt,
	}))

	resp := &StatusUpdateResponse{AdmissionID: admissionID, Status: req.Status}
	if req.Status == models.CandidateApproved {
		resp.PrintURL = PrintURL(admissionID)
	}
	return resp, nil
}

// PrintURL is the admin endpoint serving the printable card
func PrintURL(admissionID string) string {
	return "/api/v1/admin/candidates/" + admissionID + "/card"
}

func statusMetadata(reason *string) datatypes.JSON {
	if reason == nil || strings.TrimSpace(*reason) == "" {
		return nil
	}
	data, err := json.Marshal(map[string]string{"reason": strings.TrimSpace(*reason)})
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}

// ===== ADMIN QUERIES =====

func (s *candidateService) GetByAdmissionID(ctx context.Context, admissionID, actor string) (*models.Candidate, error) {
	if err := requireAdmin(ctx, s.repo, actor, "candidate", "read"); err != nil {
		return nil, err
	}

	candidate, err := s.repo.Candidate().GetByAdmissionID(ctx, nil, admissionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCandidateNotFound
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return candidate, nil
}

func (s *candidateService) GetIDCard(ctx context.Context, admissionID, actor string) (*models.IDCard, error) {
	candidate, err := s.GetByAdmissionID(ctx, admissionID, actor)
	if err != nil {
		return nil, err
	}
	return models.NewIDCard(candidate), nil
}

func (s *candidateService) ListByStatus(ctx context.Context, status models.CandidateStatus, filters repositories.CandidateFilters, actor string) (*CandidateListResponse, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	filters.Status = &status
	return s.List(ctx, filters, actor)
}

func (s *candidateService) List(ctx context.Context, filters repositories.CandidateFilters, actor string) (*CandidateListResponse, error) {
	if err := requireAdmin(ctx, s.repo, actor, "candidate", "list"); err != nil {
		return nil, err
	}

	if filters.Limit <= 0 || filters.Limit > 500 {
		filters.Limit = defaultListLimit
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	candidates, total, err := s.repo.Candidate().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}

	return &CandidateListResponse{
		Candidates: candidates,
		Total:      total,
		Limit:      filters.Limit,
		Offset:     filters.Offset,
	}, nil
}

func (s *candidateService) History(ctx context.Context, admissionID, actor string) ([]*models.CandidateStatusChange, error) {
	if _, err := s.GetByAdmissionID(ctx, admissionID, actor); err != nil {
		return nil, err
	}

	changes, err := s.repo.StatusChange().ListByAdmissionID(ctx, nil, admissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list status changes: %w", err)
	}
	return changes, nil
}

func (s *candidateService) Delete(ctx context.Context, admissionID, actor string) (bool, error) {
	if err := requireAdmin(ctx, s.repo, actor, "candidate", "delete"); err != nil {
		return false, err
	}

	var deleted bool
	var mobile string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		candidate, err := s.repo.Candidate().GetByAdmissionID(ctx, tx, admissionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil
			}
			return err
		}
		mobile = candidate.Mobile

		deleted, err = s.repo.Candidate().Delete(ctx, tx, admissionID)
		if err != nil || !deleted {
			return err
		}
		return s.repo.StatusChange().DeleteByAdmissionID(ctx, tx, admissionID)
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete candidate: %w", err)
	}

	if deleted {
		s.repo.Candidate().InvalidateCache(ctx, admissionID, mobile)
		s.logger.Info("Candidate deleted", "admission_id", admissionID, "actor", actor)
		events.PublishBestEffort(ctx, s.publisher, s.logger, events.NewEvent(events.CandidateDeleted, events.CandidateDeletedEvent{
			AdmissionID: admissionID,
			DeletedBy:   actor,
		}))
	}
	return deleted, nil
}

func (s *candidateService) Stats(ctx context.Context, actor string) (*models.CandidateStats, error) {
	if err := requireAdmin(ctx, s.repo, actor, "candidate", "stats"); err != nil {
		return nil, err
	}

	stats, err := s.repo.Candidate().CountByStatus(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count candidates: %w", err)
	}
	return stats, nil
}

// maskMobile keeps the last four digits for logs
func maskMobile(mobile string) string {
	if len(mobile) <= 4 {
		return mobile
	}
	return mobile[len(mobile)-4:]
}

