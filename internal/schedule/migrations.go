package schedule

import (
	"fmt"

	"gorm.io/gorm"
)

// RunMigrations creates or updates the schedule tables
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return fmt.Errorf("failed to migrate schedule_entries: %w", err)
	}
	return nil
}
