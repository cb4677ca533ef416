package services

import (
	"fmt"
	"log"

	"github.com/enna-dta/incidentdb/internal/config"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Message      string            `json:"message"`
	Database     string            `json:"database,omitempty"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// HealthCheck verifies database connectivity. The HTTP handler reports the
// short {status, message} form; the healthcheck binary prints the full
// result.
func HealthCheck(cfg *config.Config, db *gorm.DB) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "OK",
		Message: "ENNA Backend is running",
		Details: make(map[string]string),
	}

	sqlDB, err := db.DB()
	if err != nil {
		result.Status = "unhealthy"
		result.Database = "error"
		result.ErrorMessage = fmt.Sprintf("Database connection error: %v", err)
		log.Printf("Health check failed - database connection: %v", err)
		return result
	}

	if err := sqlDB.Ping(); err != nil {
		result.Status = "unhealthy"
		result.Database = "unreachable"
		result.ErrorMessage = fmt.Sprintf("Database ping failed: %v", err)
		log.Printf("Health check failed - database ping: %v", err)
		return result
	}

	result.Database = "ok"
	result.Details["database_type"] = cfg.DBType
	result.Details["database_name"] = cfg.DBDatabase
	return result
}
