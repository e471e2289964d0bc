package database

import (
	"fmt"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Parcel{},
		&models.TrackingStep{},
		&models.Transaction{},
		&models.PaymentMethod{},
		&models.PickupRequest{},
		&models.AuditLog{},
		&models.Snapshot{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
