// database/migrate.go - Database Migration Runner
package database

import (
	"fmt"
	"log"

	"shelleylegion/models"

	"gorm.io/gorm"
)

// RunMigrations creates the content document table
func RunMigrations(db *gorm.DB) error {
	log.Println("🔄 Running database migrations...")

	if err := db.AutoMigrate(&models.StoredDocument{}); err != nil {
		return fmt.Errorf("migrate content documents: %w", err)
	}

	log.Println("✅ All migrations completed successfully")
	return nil
}
