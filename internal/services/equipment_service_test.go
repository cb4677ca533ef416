package services_test

import (
	"testing"
	"time"

	"github.com/enna-dta/incidentdb/internal/models"
	"github.com/enna-dta/incidentdb/internal/services"
	"github.com/enna-dta/incidentdb/internal/types"
	"github.com/gofiber/fiber/v2"
)

func TestUpdateEquipmentKeepsHistory(t *testing.T) {
	db := setupTestDB(t)

	created, err := services.CreateEquipment(db, services.EquipmentInput{
		NumSerie:      strPtr("SN-100"),
		NomEquipement: "Serveur FDP",
		Partition:     "CCR",
	})
	if err != nil {
		t.Fatalf("CreateEquipment failed: %v", err)
	}
	if created.Etat != models.EtatActuel {
		t.Fatalf("Expected new record actuel, got %q", created.Etat)
	}

	updated, err := services.UpdateEquipment(db, created.ID, services.EquipmentInput{
		NumSerie:      strPtr("SN-100"),
		NomEquipement: "Serveur FDP v2",
		Partition:     "CCR",
	})
	if err != nil {
		t.Fatalf("UpdateEquipment failed: %v", err)
	}
	if updated.ID == created.ID {
		t.Error("Expected a fresh row, not an in-place edit")
	}
	if updated.Etat != models.EtatActuel {
		t.Errorf("Expected new row actuel, got %q", updated.Etat)
	}

	var old models.Equipement
	if err := db.First(&old, created.ID).Error; err != nil {
		t.Fatalf("Failed to reload old row: %v", err)
	}
	if old.Etat != models.EtatHistorique {
		t.Errorf("Expected old row historique, got %q", old.Etat)
	}

	// Exactly one current row per serial at all times.
	var current int64
	db.Model(&models.Equipement{}).
		Where("num_serie = ? AND etat = ?", "SN-100", models.EtatActuel).
		Count(&current)
	if current != 1 {
		t.Errorf("Expected 1 current row for the serial, got %d", current)
	}
}

func TestUpdateEquipmentNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := services.UpdateEquipment(db, 99, services.EquipmentInput{
		NomEquipement: "Serveur",
		Partition:     "CCR",
	})
	appErr, ok := err.(*types.AppError)
	if !ok || appErr.Code != fiber.StatusNotFound {
		t.Fatalf("Expected 404, got %v", err)
	}
}

func TestFindEquipmentBySerial(t *testing.T) {
	db := setupTestDB(t)

	created, err := services.CreateEquipment(db, services.EquipmentInput{
		NumSerie:      strPtr("SN-200"),
		NomEquipement: "Emetteur VHF",
		Partition:     "ALAP",
	})
	if err != nil {
		t.Fatalf("CreateEquipment failed: %v", err)
	}

	found, err := services.FindEquipmentBySerial(db, "  sn-200 ")
	if err != nil {
		t.Fatalf("FindEquipmentBySerial failed: %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("Expected equipment %d, got %d", created.ID, found.ID)
	}

	_, err = services.FindEquipmentBySerial(db, "SN-MISSING")
	appErr, ok := err.(*types.AppError)
	if !ok || appErr.Code != fiber.StatusNotFound {
		t.Fatalf("Expected 404 for unknown serial, got %v", err)
	}
	if appErr.Message != "Équipement non trouvé avec ce numéro de série" {
		t.Errorf("Unexpected message %q", appErr.Message)
	}
}

func TestFindEquipmentBySerialFallsBackToHistorical(t *testing.T) {
	db := setupTestDB(t)

	created, err := services.CreateEquipment(db, services.EquipmentInput{
		NumSerie:      strPtr("SN-300"),
		NomEquipement: "Routeur",
		Partition:     "CCR",
	})
	if err != nil {
		t.Fatalf("CreateEquipment failed: %v", err)
	}
	db.Model(&models.Equipement{}).Where("id = ?", created.ID).
		Update("etat", models.EtatHistorique)

	found, err := services.FindEquipmentBySerial(db, "SN-300")
	if err != nil {
		t.Fatalf("Expected historical fallback, got %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("Expected equipment %d, got %d", created.ID, found.ID)
	}
}

func TestSearchSerials(t *testing.T) {
	db := setupTestDB(t)

	for _, sn := range []string{"SN-400", "SN-401", "XX-999"} {
		if _, err := services.CreateEquipment(db, services.EquipmentInput{
			NumSerie:      strPtr(sn),
			NomEquipement: "Equipement " + sn,
			Partition:     "CCR",
		}); err != nil {
			t.Fatalf("CreateEquipment failed: %v", err)
		}
	}

	serials, err := services.SearchSerials(db, "sn-4")
	if err != nil {
		t.Fatalf("SearchSerials failed: %v", err)
	}
	if len(serials) != 2 {
		t.Errorf("Expected 2 matches, got %d: %v", len(serials), serials)
	}
}

func TestEquipmentHistory(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "maintenance1", "01010101", models.RoleServiceMaintenance, true)

	equip, err := services.CreateEquipment(db, services.EquipmentInput{
		NumSerie:      strPtr("SN-500"),
		NomEquipement: "Serveur radar",
		Partition:     "CCR",
	})
	if err != nil {
		t.Fatalf("CreateEquipment failed: %v", err)
	}

	// One incident linked by serial, another predating the link column.
	if _, err := services.CreateHardwareIncident(db, services.HardwareIncidentInput{
		NomDeEquipement: "Serveur radar",
		NumeroDeSerie:   strPtr("SN-500"),
		Description:     "Surchauffe",
	}, user.ID, time.Now()); err != nil {
		t.Fatalf("Create incident failed: %v", err)
	}
	orphan := models.HardwareIncident{
		Date:            "2025-01-10",
		Time:            "07:00",
		NomDeEquipement: "Serveur radar",
		NumeroDeSerie:   strPtr("sn-500"),
		Description:     "Ancien incident",
	}
	if err := db.Create(&orphan).Error; err != nil {
		t.Fatalf("Create orphan incident failed: %v", err)
	}

	history, err := services.EquipmentHistory(db, equip.ID)
	if err != nil {
		t.Fatalf("EquipmentHistory failed: %v", err)
	}
	if history.Count != 2 {
		t.Errorf("Expected 2 incidents in history, got %d", history.Count)
	}
	if history.Equipment.ID != equip.ID {
		t.Errorf("Expected equipment %d on history output", equip.ID)
	}
}

func TestDeleteEquipment(t *testing.T) {
	db := setupTestDB(t)

	equip, err := services.CreateEquipment(db, services.EquipmentInput{
		NomEquipement: "Serveur",
		Partition:     "CCR",
	})
	if err != nil {
		t.Fatalf("CreateEquipment failed: %v", err)
	}

	if err := services.DeleteEquipment(db, equip.ID); err != nil {
		t.Fatalf("DeleteEquipment failed: %v", err)
	}
	if err := services.DeleteEquipment(db, equip.ID); err == nil {
		t.Fatal("Expected 404 on second delete")
	}
}
