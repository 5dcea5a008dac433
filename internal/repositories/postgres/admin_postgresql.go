package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ksys/admission-service/internal/models"
	"github.com/ksys/admission-service/internal/repositories"
)

type adminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) repositories.AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Create(ctx context.Context, tx *gorm.DB, admin *models.Admin) error {
	if err := pickDB(r.db, tx).WithContext(ctx).Create(admin).Error; err != nil {
		return handleDBError(err, "create admin")
	}
	return nil
}

func (r *adminRepository) GetByPrincipal(ctx context.Context, tx *gorm.DB, principal string) (*models.Admin, error) {
	var admin models.Admin
	if err := pickDB(r.db, tx).WithContext(ctx).Where("principal = ?", principal).First(&admin).Error; err != nil {
		return nil, handleDBError(err, "get admin")
	}
	return &admin, nil
}

func (r *adminRepository) GetSuperAdmin(ctx context.Context, tx *gorm.DB) (*models.Admin, error) {
	var admin models.Admin
	err := pickDB(r.db, tx).WithContext(ctx).
		Where("is_super_admin = ?", true).
		Order("created_at ASC").
		First(&admin).Error
	if err != nil {
		return nil, handleDBError(err, "get super admin")
	}
	return &admin, nil
}

func (r *adminRepository) List(ctx context.Context, tx *gorm.DB) ([]*models.Admin, error) {
	var admins []*models.Admin
	err := pickDB(r.db, tx).WithContext(ctx).
		Order("is_super_admin DESC").Order("created_at ASC").
		Find(&admins).Error
	if err != nil {
		return nil, handleDBError(err, "list admins")
	}
	return admins, nil
}

func (r *adminRepository) Delete(ctx context.Context, tx *gorm.DB, principal string) (bool, error) {
	result := pickDB(r.db, tx).WithContext(ctx).
		Where("principal = ?", principal).
		Delete(&models.Admin{})
	if result.Error != nil {
		return false, handleDBError(result.Error, "delete admin")
	}
	return result.RowsAffected > 0, nil
}

func (r *adminRepository) DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	result := pickDB(r.db, tx).WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.Admin{})
	if result.Error != nil {
		return 0, handleDBError(result.Error, "delete all admins")
	}
	return result.RowsAffected, nil
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) repositories.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByPrincipal(ctx context.Context, tx *gorm.DB, principal string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := pickDB(r.db, tx).WithContext(ctx).Where("principal = ?", principal).First(&profile).Error; err != nil {
		return nil, handleDBError(err, "get user profile")
	}
	return &profile, nil
}

func (r *profileRepository) Upsert(ctx context.Context, tx *gorm.DB, profile *models.UserProfile) error {
	err := pickDB(r.db, tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "principal"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
		}).
		Create(profile).Error
	if err != nil {
		return handleDBError(err, "save user profile")
	}
	return nil
}
