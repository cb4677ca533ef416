package models

import (
	"time"
)

// Report is the single analysis document attached to a software incident.
// The unique index on SoftwareIncidentID is what makes the create endpoint
// an upsert: the table can never hold two reports for one incident.
type Report struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SoftwareIncidentID uint      `gorm:"uniqueIndex;not null" json:"incident"`
	Date               string    `gorm:"size:10;not null" json:"date"`
	Time               string    `gorm:"size:5;not null" json:"time"`
	Anomaly            string    `gorm:"type:text;not null" json:"anomaly"`
	Analysis           string    `gorm:"type:text;not null" json:"analysis"`
	Conclusion         string    `gorm:"type:text;not null" json:"conclusion"`
	CreatedByID        *uint     `json:"-"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName overrides the table name for Report
func (Report) TableName() string {
	return "reports"
}
