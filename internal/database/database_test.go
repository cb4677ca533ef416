package database_test

import (
	"testing"

	"github.com/enna-dta/incidentdb/internal/auth"
	"github.com/enna-dta/incidentdb/internal/database"
	"github.com/enna-dta/incidentdb/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}
	return db
}

func TestSeedIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	if err := database.Seed(db); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 6 {
		t.Fatalf("Expected 6 seeded accounts, got %d", count)
	}

	if err := database.Seed(db); err != nil {
		t.Fatalf("Second seed failed: %v", err)
	}
	db.Model(&models.User{}).Count(&count)
	if count != 6 {
		t.Errorf("Expected seed to be idempotent, got %d accounts", count)
	}

	var admin models.User
	if err := db.Where("username = ?", "admin").First(&admin).Error; err != nil {
		t.Fatalf("Failed to load admin: %v", err)
	}
	if admin.Role != models.RoleSuperadmin {
		t.Errorf("Expected admin to be superadmin, got %q", admin.Role)
	}
	if err := auth.VerifyPassword(database.DefaultSeedPassword, admin.Password); err != nil {
		t.Error("Expected seed password to verify")
	}
}

func TestMigrateRunsOnce(t *testing.T) {
	db := openTestDB(t)

	// Simulate a pre-link row: serial recorded, link column empty.
	equip := models.Equipement{
		NumSerie:      ptr("SN-1"),
		NomEquipement: "Serveur FDP",
		Partition:     "CCR",
		Etat:          models.EtatActuel,
	}
	if err := db.Create(&equip).Error; err != nil {
		t.Fatalf("Failed to create equipment: %v", err)
	}
	inc := models.HardwareIncident{
		Date:            "2025-01-01",
		Time:            "08:00",
		NomDeEquipement: "Serveur FDP",
		NumeroDeSerie:   ptr("SN-1"),
		Description:     "Panne",
	}
	if err := db.Create(&inc).Error; err != nil {
		t.Fatalf("Failed to create incident: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	var linked models.HardwareIncident
	if err := db.First(&linked, inc.ID).Error; err != nil {
		t.Fatalf("Failed to reload incident: %v", err)
	}
	if linked.EquipementID == nil || *linked.EquipementID != equip.ID {
		t.Error("Expected incident linked to equipment by the migration")
	}

	var applied int64
	db.Model(&models.SchemaMigration{}).Count(&applied)
	if applied != 2 {
		t.Fatalf("Expected 2 recorded migrations, got %d", applied)
	}

	// Second run is a no-op.
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Second migrate failed: %v", err)
	}
	db.Model(&models.SchemaMigration{}).Count(&applied)
	if applied != 2 {
		t.Errorf("Expected migrations recorded once, got %d", applied)
	}
}

func ptr(s string) *string {
	return &s
}
