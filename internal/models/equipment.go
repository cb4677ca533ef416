package models

import (
	"time"
)

// Equipment identity states. Edits never mutate a row in place: the current
// row is flipped to historique and a fresh actuel row is inserted, so the
// table doubles as the audit trail of identity changes.
const (
	EtatActuel     = "actuel"
	EtatHistorique = "historique"
)

// Equipement is a physical asset record. The French name and table name are
// part of the deployed API surface.
type Equipement struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	NumSerie      *string   `gorm:"size:255" json:"num_serie"`
	NomEquipement string    `gorm:"size:255;not null" json:"nom_equipement"`
	Partition     string    `gorm:"size:255;not null" json:"partition"`
	Etat          string    `gorm:"size:50;not null;default:actuel" json:"etat"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName overrides the table name for Equipement
func (Equipement) TableName() string {
	return "equipement"
}
