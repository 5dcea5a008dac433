package services

import (
	"context"
	"fmt"

	"github.com/ksys/admission-service/internal/repositories"
)

// requireAdmin returns a PermissionError unless principal is on the roster
func requireAdmin(ctx context.Context, repo repositories.Repository, principal, resource, action string) error {
	if principal == "" {
		return ErrUnauthenticated
	}

	_, err := repo.Admin().GetByPrincipal(ctx, nil, principal)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewPermissionError(principal, resource, action, ErrNotAdmin.Error())
		}
		return fmt.Errorf("admin check failed: %w", err)
	}
	return nil
}

// requireSuperAdmin returns a PermissionError unless principal is the super admin
func requireSuperAdmin(ctx context.Context, repo repositories.Repository, principal, resource, action string) error {
	if principal == "" {
		return ErrUnauthenticated
	}

	admin, err := repo.Admin().GetByPrincipal(ctx, nil, principal)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewPermissionError(principal, resource, action, ErrNotSuperAdmin.Error())
		}
		return fmt.Errorf("admin check failed: %w", err)
	}
	if !admin.IsSuperAdmin {
		return NewPermissionError(principal, resource, action, ErrNotSuperAdmin.Error())
	}
	return nil
}
