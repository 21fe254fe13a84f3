package profile

import (
	"fmt"

	"gorm.io/gorm"
)

// RunMigrations creates or updates the profile tables
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&UserProfile{}); err != nil {
		return fmt.Errorf("failed to migrate user_profiles: %w", err)
	}
	return nil
}
