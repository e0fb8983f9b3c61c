package db

import (
	"fmt"

	"github.com/meinhoongagan/wellness-portal/models"
	"gorm.io/gorm"
)

// activeSlotIndex allows one live appointment per therapist slot; canceled
// and soft-deleted rows do not take part.
const activeSlotIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_active_slot
	ON appointments (therapist_id, appointment_date, appointment_time)
	WHERE status <> 'canceled' AND deleted_at IS NULL`

// AutoMigrate creates or updates every table of the portal.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Therapist{},
		&models.Service{},
		&models.Appointment{},
		&models.Inquiry{},
		&models.Notification{},
		&models.EmailLog{},
		&models.AdminLog{},
		&models.SystemSetting{},
	)
	if err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	if err := db.Exec(activeSlotIndex).Error; err != nil {
		return fmt.Errorf("create slot index: %w", err)
	}
	return nil
}
