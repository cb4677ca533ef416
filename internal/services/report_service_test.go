package services_test

import (
	"testing"

	"github.com/enna-dta/incidentdb/internal/models"
	"github.com/enna-dta/incidentdb/internal/services"
	"github.com/enna-dta/incidentdb/internal/types"
	"github.com/gofiber/fiber/v2"
)

// TestUpsertReportCreatesThenUpdates verifies that repeated submits against
// the same incident keep exactly one report row holding the latest content.
func TestUpsertReportCreatesThenUpdates(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "integration1", "01010101", models.RoleServiceIntegration, true)

	incident := models.SoftwareIncident{
		Date:        "2026-08-01",
		Time:        "10:30",
		Description: "Perte de piste radar",
	}
	if err := db.Create(&incident).Error; err != nil {
		t.Fatalf("Failed to create incident: %v", err)
	}

	in := services.ReportInput{
		Incident:   types.FlexInt(incident.ID),
		Analysis:   "Analyse initiale",
		Conclusion: "Conclusion initiale",
	}

	out, created, err := services.UpsertReport(db, in, user.ID)
	if err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}
	if !created {
		t.Error("Expected first upsert to create a row")
	}
	if out.Date != incident.Date || out.Time != incident.Time {
		t.Errorf("Expected report date/time from incident, got %s %s", out.Date, out.Time)
	}
	if out.Anomaly != incident.Description {
		t.Errorf("Expected anomaly defaulted from description, got %q", out.Anomaly)
	}

	in.Analysis = "Analyse corrigée"
	out2, created, err := services.UpsertReport(db, in, user.ID)
	if err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}
	if created {
		t.Error("Expected second upsert to update, not create")
	}
	if out2.ID != out.ID {
		t.Errorf("Expected same report row, got %d then %d", out.ID, out2.ID)
	}
	if out2.Analysis != "Analyse corrigée" {
		t.Errorf("Expected updated analysis, got %q", out2.Analysis)
	}

	var count int64
	db.Model(&models.Report{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 report row, got %d", count)
	}
}

// TestUpsertReportRejectsNonSoftwareIncident verifies that an id pointing at
// a hardware incident is refused and nothing gets written.
func TestUpsertReportRejectsNonSoftwareIncident(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "integration1", "01010101", models.RoleServiceIntegration, true)

	hardware := models.HardwareIncident{
		Date:            "2026-08-01",
		Time:            "09:00",
		NomDeEquipement: "Radar RSM970",
		Description:     "Panne émetteur",
	}
	if err := db.Create(&hardware).Error; err != nil {
		t.Fatalf("Failed to create incident: %v", err)
	}

	in := services.ReportInput{
		Incident:   types.FlexInt(hardware.ID),
		Analysis:   "Analyse",
		Conclusion: "Conclusion",
	}

	_, _, err := services.UpsertReport(db, in, user.ID)
	if err == nil {
		t.Fatal("Expected error for hardware incident id")
	}
	appErr, ok := err.(*types.AppError)
	if !ok {
		t.Fatalf("Expected AppError, got %T", err)
	}
	if appErr.Code != fiber.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", appErr.Code)
	}

	var count int64
	db.Model(&models.Report{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no report rows, got %d", count)
	}
}

// TestListReportsFilterByIncident verifies the incident query narrowing.
func TestListReportsFilterByIncident(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "integration1", "01010101", models.RoleServiceIntegration, true)

	var ids []uint
	for _, desc := range []string{"Incident un", "Incident deux"} {
		incident := models.SoftwareIncident{Date: "2026-08-01", Time: "08:00", Description: desc}
		if err := db.Create(&incident).Error; err != nil {
			t.Fatalf("Failed to create incident: %v", err)
		}
		ids = append(ids, incident.ID)

		in := services.ReportInput{
			Incident:   types.FlexInt(incident.ID),
			Analysis:   "Analyse",
			Conclusion: "Conclusion",
		}
		if _, _, err := services.UpsertReport(db, in, user.ID); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	all, err := services.ListReports(db, nil)
	if err != nil {
		t.Fatalf("ListReports failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 reports, got %d", len(all))
	}

	one, err := services.ListReports(db, &ids[0])
	if err != nil {
		t.Fatalf("ListReports with filter failed: %v", err)
	}
	if len(one) != 1 {
		t.Fatalf("Expected 1 report, got %d", len(one))
	}
	if one[0].SoftwareIncidentID != ids[0] {
		t.Errorf("Expected report for incident %d, got %d", ids[0], one[0].SoftwareIncidentID)
	}
	if one[0].CreatedBy == nil || *one[0].CreatedBy != "integration1" {
		t.Error("Expected creator username resolved on report output")
	}
}
