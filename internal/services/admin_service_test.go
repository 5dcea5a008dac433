package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ksys/admission-service/internal/events"
	"github.com/ksys/admission-service/internal/models"
	"github.com/ksys/admission-service/internal/repositories"
)

// staleRosterRepo hides the stored super admin from the existence check,
// as a concurrent initialization that has not committed yet would
type staleRosterRepo struct {
	repositories.Repository
}

func (r staleRosterRepo) Admin() repositories.AdminRepository {
	return staleAdminRepo{r.Repository.Admin()}
}

type staleAdminRepo struct {
	repositories.AdminRepository
}

func (r staleAdminRepo) GetSuperAdmin(ctx context.Context, tx *gorm.DB) (*models.Admin, error) {
	return nil, repositories.ErrNotFound
}

func TestAdminService_InitializeSuperAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.repo.Admin().DeleteAll(ctx, nil)
	require.NoError(t, err)

	svc := NewAdminService(env.repo, env.db, env.logger, env.publisher, false)

	ok, err := svc.InitializeSuperAdmin(ctx, "first-login")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.InitializeSuperAdmin(ctx, "second-login")
	require.NoError(t, err)
	assert.False(t, ok)

	isSuper, err := svc.IsSuperAdmin(ctx, "first-login")
	require.NoError(t, err)
	assert.True(t, isSuper)

	_, err = svc.InitializeSuperAdmin(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAdminService_InitializeSuperAdminLosesRace(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	svc := NewAdminService(staleRosterRepo{env.repo}, env.db, env.logger, env.publisher, false)

	ok, err := svc.InitializeSuperAdmin(ctx, "late-login")
	require.NoError(t, err)
	assert.False(t, ok)

	super, err := env.repo.Admin().GetSuperAdmin(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, superAdmin, super.Principal)

	_, err = env.repo.Admin().GetByPrincipal(ctx, nil, "late-login")
	assert.True(t, repositories.IsNotFoundError(err))
}

func TestAdminService_Roles(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAdminService(env.repo, env.db, env.logger, env.publisher, false)
	ctx := context.Background()

	tests := []struct {
		caller string
		want   models.UserRole
	}{
		{caller: "", want: models.RoleGuest},
		{caller: outsider, want: models.RoleUser},
		{caller: helperAdmin, want: models.RoleAdmin},
		{caller: superAdmin, want: models.RoleAdmin},
	}
	for _, tt := range tests {
		role, err := svc.GetCallerUserRole(ctx, tt.caller)
		require.NoError(t, err)
		assert.Equal(t, tt.want, role, tt.caller)
	}

	admins, err := svc.GetAdmins(ctx, helperAdmin)
	require.NoError(t, err)
	require.Len(t, admins, 2)
	assert.Equal(t, superAdmin, admins[0].Principal)
	assert.True(t, admins[0].IsSuperAdmin)

	_, err = svc.GetAdmins(ctx, outsider)
	assertPermissionError(t, err)
}

func TestAdminService_AddRemove(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAdminService(env.repo, env.db, env.logger, env.publisher, false)
	ctx := context.Background()

	_, err := svc.AddAdmin(ctx, helperAdmin, outsider)
	assertPermissionError(t, err)

	added, err := svc.AddAdmin(ctx, superAdmin, outsider)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = svc.AddAdmin(ctx, superAdmin, outsider)
	require.NoError(t, err)
	assert.False(t, added)

	_, err = svc.AddAdmin(ctx, superAdmin, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	// Unreachable identity provider does not block the roster
	env.users.err = errors.New("connection refused")
	added, err = svc.AddAdmin(ctx, superAdmin, "offline-user")
	require.NoError(t, err)
	assert.True(t, added)
	env.users.err = nil

	removed, err := svc.RemoveAdmin(ctx, superAdmin, outsider)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = svc.RemoveAdmin(ctx, superAdmin, outsider)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = svc.RemoveAdmin(ctx, superAdmin, superAdmin)
	assert.ErrorIs(t, err, ErrCannotRemoveSuperAdmin)

	assert.NotEmpty(t, env.publisher.EventsOfType(events.AdminRosterChanged))
}

func TestAdminService_AssignUserRole(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAdminService(env.repo, env.db, env.logger, env.publisher, false)
	ctx := context.Background()

	require.NoError(t, svc.AssignUserRole(ctx, superAdmin, outsider, models.RoleAdmin))
	isAdmin, err := svc.IsAdmin(ctx, outsider)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	require.NoError(t, svc.AssignUserRole(ctx, superAdmin, outsider, models.RoleGuest))
	isAdmin, err = svc.IsAdmin(ctx, outsider)
	require.NoError(t, err)
	assert.False(t, isAdmin)

	assert.ErrorIs(t, svc.AssignUserRole(ctx, superAdmin, outsider, "owner"), ErrInvalidRole)
}

func TestAdminService_ResetAdminSystemForce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	locked := NewAdminService(env.repo, env.db, env.logger, env.publisher, false)
	_, err := locked.ResetAdminSystemForce(ctx, helperAdmin)
	assertPermissionError(t, err)

	_, err = locked.ResetAdminSystemForce(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	open := NewAdminService(env.repo, env.db, env.logger, env.publisher, true)
	removed, err := open.ResetAdminSystemForce(ctx, outsider)
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	admins, err := env.repo.Admin().List(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, admins)
}

func TestProfileService(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProfileService(env.repo, env.db, env.logger, env.validator)
	ctx := context.Background()

	_, err := svc.GetCallerProfile(ctx, outsider)
	assert.ErrorIs(t, err, ErrProfileNotFound)

	profile, err := svc.SaveCallerProfile(ctx, outsider, &ProfileRequest{Name: " Ravi "})
	require.NoError(t, err)
	assert.Equal(t, "Ravi", profile.Name)

	_, err = svc.SaveCallerProfile(ctx, outsider, &ProfileRequest{Name: ""})
	var ve ValidationErrors
	assert.ErrorAs(t, err, &ve)

	got, err := svc.GetUserProfile(ctx, helperAdmin, outsider)
	require.NoError(t, err)
	assert.Equal(t, "Ravi", got.Name)

	_, err = svc.GetUserProfile(ctx, "another-user", outsider)
	assertPermissionError(t, err)

	got, err = svc.GetUserProfile(ctx, outsider, outsider)
	require.NoError(t, err)
	assert.Equal(t, outsider, got.Principal)
}
