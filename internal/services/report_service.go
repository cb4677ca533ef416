package services

import (
	"github.com/enna-dta/incidentdb/internal/models"
	"github.com/enna-dta/incidentdb/internal/types"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ReportInput is the upsert payload. Date, time and anomaly are optional:
// they default from the target incident.
type ReportInput struct {
	Incident   types.FlexInt `json:"incident"`
	Date       string        `json:"date"`
	Time       string        `json:"time"`
	Anomaly    string        `json:"anomaly"`
	Analysis   string        `json:"analysis"`
	Conclusion string        `json:"conclusion"`
}

// ReportOut is a report tagged the way the list views expect, with the
// creator username resolved.
type ReportOut struct {
	models.Report
	IncidentType string  `json:"incident_type"`
	CreatedBy    *string `json:"created_by"`
}

func reportOut(r models.Report, names map[uint]string) ReportOut {
	return ReportOut{
		Report:       r,
		IncidentType: models.IncidentTypeSoftware,
		CreatedBy:    username(names, r.CreatedByID),
	}
}

// ListReports returns reports newest first, optionally narrowed to one
// software incident.
func ListReports(db *gorm.DB, incidentID *uint) ([]ReportOut, error) {
	query := db.Order("created_at DESC")
	if incidentID != nil {
		query = query.Where("software_incident_id = ?", *incidentID)
	}

	var rows []models.Report
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	names, err := usernamesByID(db)
	if err != nil {
		return nil, err
	}

	results := make([]ReportOut, len(rows))
	for i, row := range rows {
		results[i] = reportOut(row, names)
	}
	return results, nil
}

// UpsertReport attaches the single allowed analysis report to a software
// incident. A report already present for the incident is updated in place;
// otherwise one is inserted. The bool result reports whether a row was
// created. Repeated submits therefore keep exactly one row reflecting the
// latest content.
func UpsertReport(db *gorm.DB, in ReportInput, creatorID uint) (*ReportOut, bool, error) {
	var out models.Report
	created := false

	err := db.Transaction(func(tx *gorm.DB) error {
		var incident models.SoftwareIncident
		err := tx.First(&incident, uint(in.Incident.Int())).Error
		if err == gorm.ErrRecordNotFound {
			return &types.AppError{
				Code:    fiber.StatusBadRequest,
				Message: "Incident logiciel non trouvé. Les rapports ne peuvent être créés que pour les incidents logiciels.",
				Type:    types.ErrConflict,
			}
		}
		if err != nil {
			return err
		}

		// Date, time and anomaly follow the incident unless overridden.
		anomaly := in.Anomaly
		if anomaly == "" {
			anomaly = incident.Description
		}

		var existing models.Report
		err = tx.Where("software_incident_id = ?", incident.ID).First(&existing).Error
		if err == nil {
			existing.Date = incident.Date
			existing.Time = incident.Time
			existing.Anomaly = anomaly
			existing.Analysis = in.Analysis
			existing.Conclusion = in.Conclusion
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			out = existing
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		out = models.Report{
			SoftwareIncidentID: incident.ID,
			Date:               incident.Date,
			Time:               incident.Time,
			Anomaly:            anomaly,
			Analysis:           in.Analysis,
			Conclusion:         in.Conclusion,
			CreatedByID:        &creatorID,
		}
		if err := tx.Create(&out).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	names, err := usernamesByID(db)
	if err != nil {
		return nil, false, err
	}
	result := reportOut(out, names)
	return &result, created, nil
}
