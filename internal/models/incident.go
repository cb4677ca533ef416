package models

import (
	"time"
)

// Incident type discriminator values used on the wire.
const (
	IncidentTypeHardware = "hardware"
	IncidentTypeSoftware = "software"
)

// Maintenance types for hardware incidents.
const (
	MaintenancePreventive = "preventive"
	MaintenanceCorrective = "corrective"
)

// HardwareIncident is an equipment-centric fault record. Date is a calendar
// date string (YYYY-MM-DD) and Time a HH:MM string, both UTC, matching the
// forms that feed them.
type HardwareIncident struct {
	ID                                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Date                              string    `gorm:"size:10;not null" json:"date"`
	Time                              string    `gorm:"size:5;not null" json:"time"`
	NomDeEquipement                   string    `gorm:"size:255;not null" json:"nom_de_equipement"`
	Partition                         *string   `gorm:"size:255" json:"partition"`
	NumeroDeSerie                     *string   `gorm:"size:255" json:"numero_de_serie"`
	EquipementID                      *uint     `json:"equipement_id"`
	Description                       string    `gorm:"type:text;not null" json:"description"`
	AnomalieObservee                  *string   `gorm:"type:text" json:"anomalie_observee"`
	ActionRealisee                    *string   `gorm:"type:text" json:"action_realisee"`
	PieceDeRechangeUtilisee           *string   `gorm:"type:text" json:"piece_de_rechange_utilisee"`
	EtatDeEquipementApresIntervention *string   `gorm:"type:text" json:"etat_de_equipement_apres_intervention"`
	Recommendation                    *string   `gorm:"type:text" json:"recommendation"`
	DureeArret                        int       `gorm:"not null;default:0" json:"duree_arret"`
	TypeMaintenance                   *string   `gorm:"size:50" json:"type_maintenance"`
	CreatedByID                       *uint     `json:"-"`
	AssignedToID                      *uint     `json:"-"`
	CreatedAt                         time.Time `json:"created_at"`
	UpdatedAt                         time.Time `json:"updated_at"`
}

// TableName overrides the table name for HardwareIncident
func (HardwareIncident) TableName() string {
	return "hardware_incidents"
}

// SoftwareIncident is a service/configuration fault record for the control
// room and simulator platforms.
type SoftwareIncident struct {
	ID                  uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Date                string    `gorm:"size:10;not null" json:"date"`
	Time                string    `gorm:"size:5;not null" json:"time"`
	Simulateur          bool      `gorm:"not null;default:false" json:"simulateur"`
	SalleOperationnelle bool      `gorm:"not null;default:false" json:"salle_operationnelle"`
	Server              *string   `gorm:"size:255" json:"server"`
	Game                *string   `gorm:"size:255" json:"game"`
	Partition           *string   `gorm:"size:255" json:"partition"`
	Group               *string   `gorm:"column:group;size:255" json:"group"`
	Exercice            *string   `gorm:"size:255" json:"exercice"`
	Secteur             *string   `gorm:"size:255" json:"secteur"`
	PositionSTA         *string   `gorm:"column:position_sta;size:255" json:"position_STA"`
	PositionLogique     *string   `gorm:"size:255" json:"position_logique"`
	TypeDAnomalie       *string   `gorm:"size:255" json:"type_d_anomalie"`
	Indicatif           *string   `gorm:"size:255" json:"indicatif"`
	ModeRadar           *string   `gorm:"size:255" json:"mode_radar"`
	FL                  *string   `gorm:"column:fl;size:255" json:"FL"`
	Longitude           *string   `gorm:"size:255" json:"longitude"`
	Latitude            *string   `gorm:"size:255" json:"latitude"`
	CodeSSR             *string   `gorm:"column:code_ssr;size:255" json:"code_SSR"`
	Sujet               *string   `gorm:"size:255" json:"sujet"`
	Description         string    `gorm:"type:text;not null" json:"description"`
	Commentaires        *string   `gorm:"type:text" json:"commentaires"`
	CreatedByID         *uint     `json:"-"`
	AssignedToID        *uint     `json:"-"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TableName overrides the table name for SoftwareIncident
func (SoftwareIncident) TableName() string {
	return "software_incidents"
}
