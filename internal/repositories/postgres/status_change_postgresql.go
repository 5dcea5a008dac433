package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/ksys/admission-service/internal/models"
	"github.com/ksys/admission-service/internal/repositories"
)

type statusChangeRepository struct {
	db *gorm.DB
}

func NewStatusChangeRepository(db *gorm.DB) repositories.StatusChangeRepository {
	return &statusChangeRepository{db: db}
}

func (r *statusChangeRepository) Create(ctx context.Context, tx *gorm.DB, change *models.CandidateStatusChange) error {
	if err := pickDB(r.db, tx).WithContext(ctx).Create(change).Error; err != nil {
		return handleDBError(err, "create status change")
	}
	return nil
}

func (r *statusChangeRepository) ListByAdmissionID(ctx context.Context, tx *gorm.DB, admissionID string) ([]*models.CandidateStatusChange, error) {
	var changes []*models.CandidateStatusChange
	err := pickDB(r.db, tx).WithContext(ctx).
		Where("admission_id = ?", admissionID).
		Order("created_at ASC").Order("id ASC").
		Find(&changes).Error
	if err != nil {
		return nil, handleDBError(err, "list status changes")
	}
	return changes, nil
}

func (r *statusChangeRepository) DeleteByAdmissionID(ctx context.Context, tx *gorm.DB, admissionID string) error {
	err := pickDB(r.db, tx).WithContext(ctx).
		Where("admission_id = ?", admissionID).
		Delete(&models.CandidateStatusChange{}).Error
	if err != nil {
		return handleDBError(err, "delete status changes")
	}
	return nil
}
