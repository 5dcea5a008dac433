package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ksys/admission-service/internal/models"
	"github.com/ksys/admission-service/internal/repositories"
)

type counterRepository struct {
	db *gorm.DB
}

func NewCounterRepository(db *gorm.DB) repositories.CounterRepository {
	return &counterRepository{db: db}
}

// NextSerial seeds the year row if missing, then increments it. The UPDATE
// holds the row lock so concurrent submissions serialize on the counter.
func (r *counterRepository) NextSerial(ctx context.Context, tx *gorm.DB, year int) (int, error) {
	db := pickDB(r.db, tx).WithContext(ctx)

	seed := &models.AdmissionCounter{Year: year}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(seed).Error; err != nil {
		return 0, handleDBError(err, "seed admission counter")
	}

	err := db.Model(&models.AdmissionCounter{}).
		Where("year = ?", year).
		Update("last_value", gorm.Expr("last_value + 1")).Error
	if err != nil {
		return 0, handleDBError(err, "increment admission counter")
	}

	var counter models.AdmissionCounter
	if err := db.Where("year = ?", year).First(&counter).Error; err != nil {
		return 0, handleDBError(err, "read admission counter")
	}
	return counter.LastValue, nil
}
