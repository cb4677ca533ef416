package main

import (
	"fmt"
	"log"

	"github.com/enna-dta/incidentdb/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		log.Fatal(err)
	}

	// Auto-migrate to see what GORM creates
	err = db.AutoMigrate(
		&models.User{},
		&models.Equipement{},
		&models.HardwareIncident{},
		&models.SoftwareIncident{},
		&models.Report{},
		&models.SchemaMigration{},
	)
	if err != nil {
		log.Fatal(err)
	}

	var tables []string
	db.Raw("SELECT name FROM sqlite_master WHERE type='table'").Scan(&tables)

	for _, table := range tables {
		fmt.Printf("\n=== Table: %s ===\n", table)
		var schema string
		db.Raw("SELECT sql FROM sqlite_master WHERE name = ?", table).Scan(&schema)
		fmt.Println(schema)
	}
}
