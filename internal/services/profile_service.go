package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/ksys/admission-service/internal/models"
	"github.com/ksys/admission-service/internal/repositories"
	"github.com/ksys/admission-service/internal/validator"
)

type profileService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewProfileService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) ProfileService {
	return &profileService{repo: repo, db: db, logger: logger, validator: validator}
}

func (s *profileService) GetCallerProfile(ctx context.Context, caller string) (*models.UserProfile, error) {
	if caller == "" {
		return nil, ErrUnauthenticated
	}
	return s.get(ctx, caller)
}

func (s *profileService) SaveCallerProfile(ctx context.Context, caller string, req *ProfileRequest) (*models.UserProfile, error) {
	if caller == "" {
		return nil, ErrUnauthenticated
	}
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	profile := &models.UserProfile{Principal: caller, Name: strings.TrimSpace(req.Name)}
	if err := s.repo.Profile().Upsert(ctx, s.db, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	s.logger.Info("User profile saved", "principal", caller)
	return s.get(ctx, caller)
}

// GetUserProfile reads another user's profile; only the user or an admin may
func (s *profileService) GetUserProfile(ctx context.Context, caller, principal string) (*models.UserProfile, error) {
	if caller == "" {
		return nil, ErrUnauthenticated
	}
	if caller != principal {
		if err := requireAdmin(ctx, s.repo, caller, "profile", "read"); err != nil {
			return nil, err
		}
	}
	return s.get(ctx, principal)
}

func (s *profileService) get(ctx context.Context, principal string) (*models.UserProfile, error) {
	profile, err := s.repo.Profile().GetByPrincipal(ctx, nil, principal)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}
