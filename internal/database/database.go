package database

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"slimpdf/internal/models"
)

// Initialize opens the sqlite history database and migrates the schema.
func Initialize(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&models.CompressionRecord{}); err != nil {
		return nil, err
	}

	return db, nil
}
