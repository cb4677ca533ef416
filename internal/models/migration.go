package models

import (
	"time"
)

// SchemaMigration records an applied migration id so data migrations run
// exactly once, replacing the old pile of one-off mutation scripts.
type SchemaMigration struct {
	ID        string    `gorm:"primaryKey;size:255" json:"id"`
	AppliedAt time.Time `json:"applied_at"`
}

// TableName overrides the table name for SchemaMigration
func (SchemaMigration) TableName() string {
	return "schema_migrations"
}
