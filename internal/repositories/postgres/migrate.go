package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/ksys/admission-service/internal/models"
)

// AutoMigrate creates or updates every table owned by the service
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}
