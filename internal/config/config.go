package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Database configuration
	DBType            string // mysql, postgres, sqlite, sqlserver, etc.
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int
	DBSeed            bool

	// Auth configuration
	JWTSecret       string
	AccessTokenTTL  int // hours
	RefreshTokenTTL int // hours

	// Login brute-force protection
	MaxLoginAttempts   int
	LockoutMinutes     int
	LoginRatePerMinute int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8000"),
		DBType:             getEnv("DB_TYPE", "sqlite"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "3306"),
		DBDatabase:         getEnv("DB_DATABASE", "enna.db"),
		DBUser:             getEnv("DB_USER", ""),
		DBPassword:         getEnv("DB_PASSWORD", ""),
		DBConnectionLimit:  getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		DBSeed:             getEnvAsBool("DB_SEED", true),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		AccessTokenTTL:     getEnvAsInt("ACCESS_TOKEN_TTL_HOURS", 24),
		RefreshTokenTTL:    getEnvAsInt("REFRESH_TOKEN_TTL_HOURS", 168),
		MaxLoginAttempts:   getEnvAsInt("MAX_LOGIN_ATTEMPTS", 5),
		LockoutMinutes:     getEnvAsInt("LOCKOUT_MINUTES", 30),
		LoginRatePerMinute: getEnvAsInt("LOGIN_RATE_PER_MINUTE", 10),
	}

	// Validate required fields
	if cfg.DBDatabase == "" {
		return nil, fmt.Errorf("DB_DATABASE is required")
	}
	if cfg.DBType != "sqlite" && cfg.DBUser == "" {
		return nil, fmt.Errorf("DB_USER is required for %s", cfg.DBType)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool gets an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
