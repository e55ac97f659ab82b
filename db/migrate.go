package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/meinhoongagan/booking-platform/models"
)

// activeSlotIndex keeps at most one live booking per service start time.
// Cancelled appointments drop out of the index, which frees the slot.
const activeSlotIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_active_slot
	ON appointments (service_id, start_time) WHERE status <> 'CANCELLED'`

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.Appointment{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec(activeSlotIndex).Error; err != nil {
		return fmt.Errorf("create slot index: %w", err)
	}
	return nil
}
