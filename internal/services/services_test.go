package services_test

import (
	"testing"

	"github.com/enna-dta/incidentdb/internal/auth"
	"github.com/enna-dta/incidentdb/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Equipement{},
		&models.HardwareIncident{},
		&models.SoftwareIncident{},
		&models.Report{},
		&models.SchemaMigration{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// createTestUser inserts an account with a real bcrypt hash
func createTestUser(t *testing.T, db *gorm.DB, username, password, role string, active bool) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := &models.User{
		Username: username,
		Password: hash,
		Role:     role,
		IsActive: active,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func strPtr(s string) *string {
	return &s
}
