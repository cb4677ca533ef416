package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/enna-dta/incidentdb/internal/config"
	"github.com/enna-dta/incidentdb/internal/database"
	"github.com/enna-dta/incidentdb/internal/services"
)

// Container/orchestrator probe: prints the full health check result and
// exits non-zero when the database is unreachable.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	result := services.HealthCheck(cfg, db)

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal health check result: %v", err)
	}

	fmt.Println(string(output))

	if result.Status != "OK" {
		os.Exit(1)
	}
	os.Exit(0)
}
