package services

import (
	"strings"

	"github.com/enna-dta/incidentdb/internal/models"
	"github.com/enna-dta/incidentdb/internal/types"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// EquipmentInput is the create/edit payload for equipment records.
type EquipmentInput struct {
	NumSerie      *string `json:"num_serie"`
	NomEquipement string  `json:"nom_equipement"`
	Partition     string  `json:"partition"`
	Etat          string  `json:"etat"`
}

// EquipmentHistoryOut bundles an equipment record with the hardware
// incidents that reference it.
type EquipmentHistoryOut struct {
	Equipment models.Equipement     `json:"equipment"`
	Incidents []HardwareIncidentOut `json:"incidents"`
	Count     int                   `json:"count"`
}

var errEquipmentNotFound = &types.AppError{
	Code:    fiber.StatusNotFound,
	Message: "Équipement non trouvé",
	Type:    types.ErrNotFound,
}

// ListEquipment returns every equipment row, current and historical, newest
// first. Callers wanting only current records filter on etat.
func ListEquipment(db *gorm.DB) ([]models.Equipement, error) {
	rows := []models.Equipement{}
	if err := db.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SearchSerials returns up to 10 distinct serial numbers matching the query,
// for the incident-form autocomplete.
func SearchSerials(db *gorm.DB, q string) ([]string, error) {
	serials := []string{}
	err := db.Model(&models.Equipement{}).
		Distinct("num_serie").
		Where("num_serie IS NOT NULL AND LOWER(num_serie) LIKE ?", "%"+strings.ToLower(q)+"%").
		Limit(10).
		Pluck("num_serie", &serials).Error
	if err != nil {
		return nil, err
	}
	return serials, nil
}

// FindEquipmentBySerial resolves a serial number to its single current
// record (case-insensitive, trimmed). When no current row matches, it falls
// back to the newest row of any state so old incidents keep resolving.
func FindEquipmentBySerial(db *gorm.DB, serial string) (*models.Equipement, error) {
	trimmed := strings.TrimSpace(serial)
	if trimmed == "" {
		return nil, errEquipmentNotFound
	}

	var equip models.Equipement
	err := db.Where("LOWER(num_serie) = ? AND etat = ?", strings.ToLower(trimmed), models.EtatActuel).
		Order("created_at DESC").
		First(&equip).Error
	if err == nil {
		return &equip, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	err = db.Where("LOWER(num_serie) = ?", strings.ToLower(trimmed)).
		Order("created_at DESC").
		First(&equip).Error
	if err == gorm.ErrRecordNotFound {
		return nil, &types.AppError{
			Code:    fiber.StatusNotFound,
			Message: "Équipement non trouvé avec ce numéro de série",
			Type:    types.ErrNotFound,
		}
	}
	if err != nil {
		return nil, err
	}
	return &equip, nil
}

func validateEquipmentInput(in *EquipmentInput) error {
	in.NomEquipement = strings.TrimSpace(in.NomEquipement)
	in.Partition = strings.TrimSpace(in.Partition)
	if in.NomEquipement == "" {
		return &types.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "Le nom de l'équipement est requis",
			Type:    types.ErrValidation,
		}
	}
	if in.Partition == "" {
		return &types.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "La partition est requise",
			Type:    types.ErrValidation,
		}
	}
	return nil
}

// CreateEquipment inserts a new current equipment record.
func CreateEquipment(db *gorm.DB, in EquipmentInput) (*models.Equipement, error) {
	if err := validateEquipmentInput(&in); err != nil {
		return nil, err
	}

	equip := models.Equipement{
		NumSerie:      normalize(in.NumSerie),
		NomEquipement: in.NomEquipement,
		Partition:     in.Partition,
		Etat:          models.EtatActuel,
	}
	if err := db.Create(&equip).Error; err != nil {
		return nil, err
	}
	return &equip, nil
}

// UpdateEquipment supersedes an equipment record: the current row for the
// serial flips to historique and a fresh actuel row is inserted with the
// edited identity. Both writes happen in one transaction so a crash can
// never leave zero or two current rows.
func UpdateEquipment(db *gorm.DB, id uint, in EquipmentInput) (*models.Equipement, error) {
	if err := validateEquipmentInput(&in); err != nil {
		return nil, err
	}

	var created models.Equipement
	err := db.Transaction(func(tx *gorm.DB) error {
		var existing models.Equipement
		if err := tx.First(&existing, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errEquipmentNotFound
			}
			return err
		}

		serial := normalize(in.NumSerie)
		if serial == nil {
			serial = existing.NumSerie
		}

		if serial != nil {
			var latest models.Equipement
			err := tx.Where("num_serie = ? AND etat = ?", *serial, models.EtatActuel).
				Order("created_at DESC").
				First(&latest).Error
			if err == nil {
				if err := tx.Model(&latest).Update("etat", models.EtatHistorique).Error; err != nil {
					return err
				}
			} else if err != gorm.ErrRecordNotFound {
				return err
			}
		} else if existing.Etat == models.EtatActuel {
			if err := tx.Model(&existing).Update("etat", models.EtatHistorique).Error; err != nil {
				return err
			}
		}

		created = models.Equipement{
			NumSerie:      serial,
			NomEquipement: in.NomEquipement,
			Partition:     in.Partition,
			Etat:          models.EtatActuel,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteEquipment hard-deletes an equipment row. Incidents referencing it
// keep their denormalized name/partition; only the link goes away.
func DeleteEquipment(db *gorm.DB, id uint) error {
	result := db.Delete(&models.Equipement{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errEquipmentNotFound
	}
	return nil
}

// EquipmentHistory returns the hardware incidents recorded against an
// equipment record, matched by link id or serial number.
func EquipmentHistory(db *gorm.DB, id uint) (*EquipmentHistoryOut, error) {
	var equip models.Equipement
	if err := db.First(&equip, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errEquipmentNotFound
		}
		return nil, err
	}

	query := db.Order("date DESC, time DESC")
	if equip.NumSerie != nil {
		query = query.Where("equipement_id = ? OR LOWER(numero_de_serie) = ?", equip.ID, strings.ToLower(*equip.NumSerie))
	} else {
		query = query.Where("equipement_id = ?", equip.ID)
	}

	var incidents []models.HardwareIncident
	if err := query.Find(&incidents).Error; err != nil {
		return nil, err
	}

	names, err := usernamesByID(db)
	if err != nil {
		return nil, err
	}

	out := &EquipmentHistoryOut{
		Equipment: equip,
		Incidents: make([]HardwareIncidentOut, len(incidents)),
		Count:     len(incidents),
	}
	for i, inc := range incidents {
		out.Incidents[i] = hardwareOut(inc, names)
	}
	return out, nil
}
