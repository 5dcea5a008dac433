package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/ksys/admission-service/internal/cache"
	"github.com/ksys/admission-service/internal/models"
	"github.com/ksys/admission-service/internal/repositories"
	"github.com/ksys/admission-service/internal/utils"
)

var candidateSortColumns = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"full_name":    true,
	"admission_id": true,
	"status":       true,
}

type candidateRepository struct {
	db    *gorm.DB
	cache *cache.CacheManager
}

func NewCandidateRepository(db *gorm.DB, cacheManager *cache.CacheManager) repositories.CandidateRepository {
	return &candidateRepository{db: db, cache: cacheManager}
}

func (r *candidateRepository) getDB(tx *gorm.DB) *gorm.DB {
	return pickDB(r.db, tx)
}

func (r *candidateRepository) Create(ctx context.Context, tx *gorm.DB, candidate *models.Candidate) error {
	if err := r.getDB(tx).WithContext(ctx).Create(candidate).Error; err != nil {
		return handleDBError(err, "create candidate")
	}
	if !inTx(tx) {
		r.InvalidateCache(ctx, candidate.AdmissionID, candidate.Mobile)
	}
	return nil
}

func (r *candidateRepository) GetByAdmissionID(ctx context.Context, tx *gorm.DB, admissionID string) (*models.Candidate, error) {
	return r.getOne(ctx, tx, cache.AdmissionKey(admissionID), "admission_id = ?", admissionID, "get candidate by admission id")
}

func (r *candidateRepository) GetByMobile(ctx context.Context, tx *gorm.DB, mobile string) (*models.Candidate, error) {
	return r.getOne(ctx, tx, cache.MobileKey(mobile), "mobile = ?", mobile, "get candidate by mobile")
}

// getOne serves reads outside a transaction from cache. Reads inside a
// transaction always hit the database.
func (r *candidateRepository) getOne(ctx context.Context, tx *gorm.DB, key, where, arg, op string) (*models.Candidate, error) {
	load := func() (interface{}, error) {
		var candidate models.Candidate
		if err := r.getDB(tx).WithContext(ctx).Where(where, arg).First(&candidate).Error; err != nil {
			return nil, handleDBError(err, op)
		}
		return &candidate, nil
	}

	if tx != nil {
		v, err := load()
		if err != nil {
			return nil, err
		}
		return v.(*models.Candidate), nil
	}

	var candidate models.Candidate
	if err := r.cache.Candidate.GetOrLoad(ctx, key, &candidate, load); err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (r *candidateRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.CandidateFilters) ([]*models.Candidate, int64, error) {
	var candidates []*models.Candidate
	var total int64

	query := r.applyFilters(r.getDB(tx).WithContext(ctx).Model(&models.Candidate{}), filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count candidates")
	}

	query = applyPaginationAndSort(query, candidateSortColumns, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&candidates).Error; err != nil {
		return nil, 0, handleDBError(err, "list candidates")
	}

	return candidates, total, nil
}

func (r *candidateRepository) applyFilters(query *gorm.DB, filters repositories.CandidateFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	if q := strings.TrimSpace(filters.Query); q != "" {
		pattern := likePattern(q)
		cond := r.db.Where("LOWER(full_name) LIKE ? ESCAPE '\\'", pattern).
			Or("LOWER(admission_id) LIKE ? ESCAPE '\\'", pattern)
		if digits := utils.NormalizeMobile(q); digits != "" {
			cond = cond.Or("mobile LIKE ?", "%"+digits+"%")
		}
		query = query.Where(cond)
	}
	return query
}

func (r *candidateRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, update repositories.StatusUpdate) (bool, error) {
	result := r.getDB(tx).WithContext(ctx).
		Model(&models.Candidate{}).
		Where("admission_id = ? AND status = ?", update.AdmissionID, update.From).
		Updates(map[string]interface{}{
			"status":      update.To,
			"reviewed_by": update.ReviewedBy,
			"reviewed_at": update.ReviewedAt,
		})
	if result.Error != nil {
		return false, handleDBError(result.Error, "update candidate status")
	}

	if result.RowsAffected > 0 && !inTx(tx) {
		r.InvalidateCache(ctx, update.AdmissionID, r.mobileFor(ctx, update.AdmissionID))
	}
	return result.RowsAffected > 0, nil
}

func (r *candidateRepository) Delete(ctx context.Context, tx *gorm.DB, admissionID string) (bool, error) {
	db := r.getDB(tx).WithContext(ctx)

	var candidate models.Candidate
	if err := db.Where("admission_id = ?", admissionID).First(&candidate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, handleDBError(err, "get candidate for delete")
	}

	result := db.Delete(&candidate)
	if result.Error != nil {
		return false, handleDBError(result.Error, "delete candidate")
	}

	if !inTx(tx) {
		r.InvalidateCache(ctx, candidate.AdmissionID, candidate.Mobile)
	}
	return result.RowsAffected > 0, nil
}

func (r *candidateRepository) InvalidateCache(ctx context.Context, admissionID, mobile string) {
	cache.InvalidateCandidateCache(ctx, r.cache, admissionID, mobile)
}

// mobileFor returns the stored mobile of a candidate, or "" when unknown
func (r *candidateRepository) mobileFor(ctx context.Context, admissionID string) string {
	var mobiles []string
	err := r.db.WithContext(ctx).
		Model(&models.Candidate{}).
		Where("admission_id = ?", admissionID).
		Pluck("mobile", &mobiles).Error
	if err != nil || len(mobiles) == 0 {
		return ""
	}
	return mobiles[0]
}

func (r *candidateRepository) CountByStatus(ctx context.Context, tx *gorm.DB) (*models.CandidateStats, error) {
	load := func() (interface{}, error) {
		var rows []struct {
			Status models.CandidateStatus
			Count  int64
		}
		err := r.getDB(tx).WithContext(ctx).
			Model(&models.Candidate{}).
			Select("status, COUNT(*) AS count").
			Group("status").
			Scan(&rows).Error
		if err != nil {
			return nil, handleDBError(err, "count candidates by status")
		}

		stats := &models.CandidateStats{}
		for _, row := range rows {
			switch row.Status {
			case models.CandidatePending:
				stats.Pending = row.Count
			case models.CandidateApproved:
				stats.Approved = row.Count
			case models.CandidateRejected:
				stats.Rejected = row.Count
			}
			stats.Total += row.Count
		}
		return stats, nil
	}

	var stats models.CandidateStats
	if err := r.cache.Stats.GetOrLoad(ctx, "candidates:counts", &stats, load); err != nil {
		return nil, err
	}
	return &stats, nil
}
