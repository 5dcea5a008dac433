package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/ksys/admission-service/internal/events"
	"github.com/ksys/admission-service/internal/models"
	"github.com/ksys/admission-service/internal/repositories"
)

type adminService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	publisher events.EventPublisher

	forceResetEnabled bool
}

func NewAdminService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, publisher events.EventPublisher, forceResetEnabled bool) AdminService {
	return &adminService{
		repo:              repo,
		db:                db,
		logger:            logger,
		publisher:         publisher,
		forceResetEnabled: forceResetEnabled,
	}
}

// errSuperAdminTaken rolls back an initialization that lost the race to
// another caller
var errSuperAdminTaken = errors.New("super admin initialized concurrently")

// InitializeSuperAdmin makes the caller super admin while the roster has none
func (s *adminService) InitializeSuperAdmin(ctx context.Context, caller string) (bool, error) {
	if caller == "" {
		return false, ErrUnauthenticated
	}

	var initialized bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.repo.Admin().GetSuperAdmin(ctx, tx)
		if err == nil {
			return nil
		}
		if !repositories.IsNotFoundError(err) {
			return err
		}

		existing, err := s.repo.Admin().GetByPrincipal(ctx, tx, caller)
		switch {
		case err == nil:
			// Promote an existing admin
			if _, err := s.repo.Admin().Delete(ctx, tx, existing.Principal); err != nil {
				return err
			}
		case !repositories.IsNotFoundError(err):
			return err
		}

		if err := s.repo.Admin().Create(ctx, tx, &models.Admin{
			Principal:    caller,
			IsSuperAdmin: true,
			AddedBy:      caller,
		}); err != nil {
			if repositories.IsDuplicateError(err) {
				return errSuperAdminTaken
			}
			return err
		}
		initialized = true
		return nil
	})
	if errors.Is(err, errSuperAdminTaken) {
		s.logger.Info("Super admin already initialized by a concurrent request", "principal", caller)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to initialize super admin: %w", err)
	}

	if initialized {
		s.logger.Info("Super admin initialized", "principal", caller)
		s.publishRosterChange(ctx, "initialized", caller, caller)
	}
	return initialized, nil
}

func (s *adminService) IsAdmin(ctx context.Context, principal string) (bool, error) {
	if principal == "" {
		return false, nil
	}
	_, err := s.repo.Admin().GetByPrincipal(ctx, nil, principal)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check admin: %w", err)
	}
	return true, nil
}

func (s *adminService) IsSuperAdmin(ctx context.Context, principal string) (bool, error) {
	if principal == "" {
		return false, nil
	}
	admin, err := s.repo.Admin().GetByPrincipal(ctx, nil, principal)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check super admin: %w", err)
	}
	return admin.IsSuperAdmin, nil
}

func (s *adminService) GetCallerUserRole(ctx context.Context, caller string) (models.UserRole, error) {
	if caller == "" {
		return models.RoleGuest, nil
	}
	isAdmin, err := s.IsAdmin(ctx, caller)
	if err != nil {
		return "", err
	}
	if isAdmin {
		return models.RoleAdmin, nil
	}
	return models.RoleUser, nil
}

func (s *adminService) GetAdmins(ctx context.Context, caller string) ([]models.AdminResponse, error) {
	if err := requireAdmin(ctx, s.repo, caller, "admin", "list"); err != nil {
		return nil, err
	}

	admins, err := s.repo.Admin().List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}

	out := make([]models.AdminResponse, 0, len(admins))
	for _, a := range admins {
		out = append(out, models.AdminResponse{Principal: a.Principal, IsSuperAdmin: a.IsSuperAdmin})
	}
	return out, nil
}

// AddAdmin returns false when principal is already an admin
func (s *adminService) AddAdmin(ctx context.Context, caller, principal string) (bool, error) {
	if err := requireSuperAdmin(ctx, s.repo, caller, "admin", "add"); err != nil {
		return false, err
	}

	principal = strings.TrimSpace(principal)
	if principal == "" {
		return false, NewValidationError("principal", "is required", principal)
	}

	if err := s.verifyPrincipal(ctx, principal); err != nil {
		return false, err
	}

	err := s.repo.Admin().Create(ctx, s.db, &models.Admin{Principal: principal, AddedBy: caller})
	if err != nil {
		if repositories.IsDuplicateError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to add admin: %w", err)
	}

	s.logger.Info("Admin added", "principal", principal, "actor", caller)
	s.publishRosterChange(ctx, "added", principal, caller)
	return true, nil
}

// verifyPrincipal rejects identities the provider does not know. An
// unreachable provider is logged and skipped.
func (s *adminService) verifyPrincipal(ctx context.Context, principal string) error {
	users := s.repo.User()
	if users == nil {
		return nil
	}

	exists, err := users.ExistsByID(ctx, principal)
	if err != nil {
		s.logger.Warn("Identity provider unavailable, skipping principal check", "principal", principal, "error", err)
		return nil
	}
	if !exists {
		return ErrUserNotFound
	}
	return nil
}

// RemoveAdmin returns false when principal was not an admin
func (s *adminService) RemoveAdmin(ctx context.Context, caller, principal string) (bool, error) {
	if err := requireSuperAdmin(ctx, s.repo, caller, "admin", "remove"); err != nil {
		return false, err
	}

	target, err := s.repo.Admin().GetByPrincipal(ctx, nil, principal)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get admin: %w", err)
	}
	if target.IsSuperAdmin {
		return false, ErrCannotRemoveSuperAdmin
	}

	removed, err := s.repo.Admin().Delete(ctx, s.db, principal)
	if err != nil {
		return false, fmt.Errorf("failed to remove admin: %w", err)
	}

	if removed {
		s.logger.Info("Admin removed", "principal", principal, "actor", caller)
		s.publishRosterChange(ctx, "removed", principal, caller)
	}
	return removed, nil
}

func (s *adminService) AssignUserRole(ctx context.Context, caller, principal string, role models.UserRole) error {
	switch role {
	case models.RoleAdmin:
		_, err := s.AddAdmin(ctx, caller, principal)
		return err
	case models.RoleUser, models.RoleGuest:
		_, err := s.RemoveAdmin(ctx, caller, principal)
		return err
	default:
		return fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}
}

// ResetAdminSystemForce clears the roster. Allowed for the super admin, or
// for any authenticated caller when force reset is enabled.
func (s *adminService) ResetAdminSystemForce(ctx context.Context, caller string) (int64, error) {
	if caller == "" {
		return 0, ErrUnauthenticated
	}
	if !s.forceResetEnabled {
		if err := requireSuperAdmin(ctx, s.repo, caller, "admin", "reset"); err != nil {
			return 0, err
		}
	}

	removed, err := s.repo.Admin().DeleteAll(ctx, s.db)
	if err != nil {
		return 0, fmt.Errorf("failed to reset admin roster: %w", err)
	}

	s.logger.Warn("Admin roster reset", "actor", caller, "removed", removed)
	s.publishRosterChange(ctx, "reset", "", caller)
	return removed, nil
}

func (s *adminService) publishRosterChange(ctx context.Context, action, principal, actor string) {
	events.PublishBestEffort(ctx, s.publisher, s.logger, events.NewEvent(events.AdminRosterChanged, events.AdminRosterChangedEvent{
		Action:    action,
		Principal: principal,
		ChangedBy: actor,
	}))
}
