package services

import (
	"sort"
	"strings"
	"time"

	"github.com/enna-dta/incidentdb/internal/models"
	"github.com/enna-dta/incidentdb/internal/types"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HardwareIncidentInput carries the full hardware field set. Every mutation
// resupplies the whole record; absent fields are written as null/0.
type HardwareIncidentInput struct {
	Date                              string        `json:"date"`
	Time                              string        `json:"time"`
	NomDeEquipement                   string        `json:"nom_de_equipement"`
	Partition                         *string       `json:"partition"`
	NumeroDeSerie                     *string       `json:"numero_de_serie"`
	Description                       string        `json:"description"`
	AnomalieObservee                  *string       `json:"anomalie_observee"`
	ActionRealisee                    *string       `json:"action_realisee"`
	PieceDeRechangeUtilisee           *string       `json:"piece_de_rechange_utilisee"`
	EtatDeEquipementApresIntervention *string       `json:"etat_de_equipement_apres_intervention"`
	Recommendation                    *string       `json:"recommendation"`
	DureeArret                        types.FlexInt `json:"duree_arret"`
	TypeMaintenance                   *string       `json:"type_maintenance"`
	AssignedTo                        *uint         `json:"assigned_to"`
}

// SoftwareIncidentInput carries the full software field set.
type SoftwareIncidentInput struct {
	Date                string  `json:"date"`
	Time                string  `json:"time"`
	Simulateur          bool    `json:"simulateur"`
	SalleOperationnelle bool    `json:"salle_operationnelle"`
	Server              *string `json:"server"`
	Game                *string `json:"game"`
	Partition           *string `json:"partition"`
	Group               *string `json:"group"`
	Exercice            *string `json:"exercice"`
	Secteur             *string `json:"secteur"`
	PositionSTA         *string `json:"position_STA"`
	PositionLogique     *string `json:"position_logique"`
	TypeDAnomalie       *string `json:"type_d_anomalie"`
	Indicatif           *string `json:"indicatif"`
	ModeRadar           *string `json:"mode_radar"`
	FL                  *string `json:"FL"`
	Longitude           *string `json:"longitude"`
	Latitude            *string `json:"latitude"`
	CodeSSR             *string `json:"code_SSR"`
	Sujet               *string `json:"sujet"`
	Description         string  `json:"description"`
	Commentaires        *string `json:"commentaires"`
	AssignedTo          *uint   `json:"assigned_to"`
}

// HardwareIncidentOut is a hardware incident tagged with its discriminator
// and the creator/assignee usernames the list views display.
type HardwareIncidentOut struct {
	models.HardwareIncident
	IncidentType string  `json:"incident_type"`
	CreatedBy    *string `json:"created_by"`
	AssignedTo   *string `json:"assigned_to"`
}

// SoftwareIncidentOut is the software counterpart of HardwareIncidentOut.
type SoftwareIncidentOut struct {
	models.SoftwareIncident
	IncidentType string  `json:"incident_type"`
	CreatedBy    *string `json:"created_by"`
	AssignedTo   *string `json:"assigned_to"`
}

// incidentEntry pairs a serialized incident with its creation time so mixed
// hardware/software listings can be ordered.
type incidentEntry struct {
	createdAt time.Time
	payload   interface{}
}

// usernamesByID loads the id->username map used to resolve creator/assignee
// references on list output.
func usernamesByID(db *gorm.DB) (map[uint]string, error) {
	var users []models.User
	if err := db.Select("id", "username").Find(&users).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]string, len(users))
	for _, u := range users {
		byID[u.ID] = u.Username
	}
	return byID, nil
}

func username(byID map[uint]string, id *uint) *string {
	if id == nil {
		return nil
	}
	if name, ok := byID[*id]; ok {
		return &name
	}
	return nil
}

func hardwareOut(inc models.HardwareIncident, names map[uint]string) HardwareIncidentOut {
	return HardwareIncidentOut{
		HardwareIncident: inc,
		IncidentType:     models.IncidentTypeHardware,
		CreatedBy:        username(names, inc.CreatedByID),
		AssignedTo:       username(names, inc.AssignedToID),
	}
}

func softwareOut(inc models.SoftwareIncident, names map[uint]string) SoftwareIncidentOut {
	return SoftwareIncidentOut{
		SoftwareIncident: inc,
		IncidentType:     models.IncidentTypeSoftware,
		CreatedBy:        username(names, inc.CreatedByID),
		AssignedTo:       username(names, inc.AssignedToID),
	}
}

// ListIncidents returns incidents of the requested type, newest first. With
// no type filter both kinds are merged and interleaved by creation time; the
// previous deployment concatenated hardware before software and left the
// sort to the client, which every consumer then re-did.
func ListIncidents(db *gorm.DB, typeFilter string) ([]interface{}, error) {
	names, err := usernamesByID(db)
	if err != nil {
		return nil, err
	}

	var entries []incidentEntry

	if typeFilter == "" || typeFilter == models.IncidentTypeHardware {
		var rows []models.HardwareIncident
		if err := db.Order("created_at DESC").Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			entries = append(entries, incidentEntry{row.CreatedAt, hardwareOut(row, names)})
		}
	}

	if typeFilter == "" || typeFilter == models.IncidentTypeSoftware {
		var rows []models.SoftwareIncident
		if err := db.Order("created_at DESC").Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			entries = append(entries, incidentEntry{row.CreatedAt, softwareOut(row, names)})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].createdAt.After(entries[j].createdAt)
	})

	results := make([]interface{}, len(entries))
	for i, e := range entries {
		results[i] = e.payload
	}
	return results, nil
}

// RecentIncidents returns the 5 most recently created incidents across both
// kinds, interleaved by creation time descending.
func RecentIncidents(db *gorm.DB) ([]interface{}, error) {
	names, err := usernamesByID(db)
	if err != nil {
		return nil, err
	}

	var hardware []models.HardwareIncident
	if err := db.Order("created_at DESC").Limit(5).Find(&hardware).Error; err != nil {
		return nil, err
	}
	var software []models.SoftwareIncident
	if err := db.Order("created_at DESC").Limit(5).Find(&software).Error; err != nil {
		return nil, err
	}

	var entries []incidentEntry
	for _, row := range hardware {
		entries = append(entries, incidentEntry{row.CreatedAt, hardwareOut(row, names)})
	}
	for _, row := range software {
		entries = append(entries, incidentEntry{row.CreatedAt, softwareOut(row, names)})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].createdAt.After(entries[j].createdAt)
	})
	if len(entries) > 5 {
		entries = entries[:5]
	}

	results := make([]interface{}, len(entries))
	for i, e := range entries {
		results[i] = e.payload
	}
	return results, nil
}

// normalize maps empty or whitespace-only strings to nil so optional columns
// store NULL instead of "".
func normalize(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// DefaultDateTime fills absent date/time with the current UTC calendar date
// and wall-clock time truncated to minutes.
func DefaultDateTime(date, timeStr string, now time.Time) (string, string) {
	now = now.UTC()
	if date == "" {
		date = now.Format("2006-01-02")
	}
	if timeStr == "" {
		timeStr = now.Format("15:04")
	}
	return date, timeStr
}

func validateDureeArret(d int) error {
	if d < 0 {
		return &types.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "La durée d'arrêt doit être un entier positif",
			Type:    types.ErrValidation,
		}
	}
	return nil
}

// resolveEquipment links the incident to the current equipment row matching
// its serial number and denormalizes the equipment partition when the form
// left it blank. No match is not an error: incidents may reference retired
// or unknown equipment.
func resolveEquipment(db *gorm.DB, inc *models.HardwareIncident) error {
	if inc.NumeroDeSerie == nil {
		inc.EquipementID = nil
		return nil
	}
	equip, err := FindEquipmentBySerial(db, *inc.NumeroDeSerie)
	if err != nil {
		if appErr, ok := err.(*types.AppError); ok && appErr.Type == types.ErrNotFound {
			inc.EquipementID = nil
			return nil
		}
		return err
	}
	inc.EquipementID = &equip.ID
	if inc.Partition == nil {
		inc.Partition = &equip.Partition
	}
	return nil
}

func hardwareFromInput(in HardwareIncidentInput, now time.Time) models.HardwareIncident {
	date, timeStr := DefaultDateTime(strings.TrimSpace(in.Date), strings.TrimSpace(in.Time), now)
	return models.HardwareIncident{
		Date:                              date,
		Time:                              timeStr,
		NomDeEquipement:                   strings.TrimSpace(in.NomDeEquipement),
		Partition:                         normalize(in.Partition),
		NumeroDeSerie:                     normalize(in.NumeroDeSerie),
		Description:                       strings.TrimSpace(in.Description),
		AnomalieObservee:                  normalize(in.AnomalieObservee),
		ActionRealisee:                    normalize(in.ActionRealisee),
		PieceDeRechangeUtilisee:           normalize(in.PieceDeRechangeUtilisee),
		EtatDeEquipementApresIntervention: normalize(in.EtatDeEquipementApresIntervention),
		Recommendation:                    normalize(in.Recommendation),
		DureeArret:                        in.DureeArret.Int(),
		TypeMaintenance:                   normalize(in.TypeMaintenance),
		AssignedToID:                      in.AssignedTo,
	}
}

func softwareFromInput(in SoftwareIncidentInput, now time.Time) models.SoftwareIncident {
	date, timeStr := DefaultDateTime(strings.TrimSpace(in.Date), strings.TrimSpace(in.Time), now)
	return models.SoftwareIncident{
		Date:                date,
		Time:                timeStr,
		Simulateur:          in.Simulateur,
		SalleOperationnelle: in.SalleOperationnelle,
		Server:              normalize(in.Server),
		Game:                normalize(in.Game),
		Partition:           normalize(in.Partition),
		Group:               normalize(in.Group),
		Exercice:            normalize(in.Exercice),
		Secteur:             normalize(in.Secteur),
		PositionSTA:         normalize(in.PositionSTA),
		PositionLogique:     normalize(in.PositionLogique),
		TypeDAnomalie:       normalize(in.TypeDAnomalie),
		Indicatif:           normalize(in.Indicatif),
		ModeRadar:           normalize(in.ModeRadar),
		FL:                  normalize(in.FL),
		Longitude:           normalize(in.Longitude),
		Latitude:            normalize(in.Latitude),
		CodeSSR:             normalize(in.CodeSSR),
		Sujet:               normalize(in.Sujet),
		Description:         strings.TrimSpace(in.Description),
		Commentaires:        normalize(in.Commentaires),
		AssignedToID:        in.AssignedTo,
	}
}

// CreateHardwareIncident validates, defaults date/time, resolves the
// equipment link and persists a new hardware incident. The creator always
// comes from the authenticated identity.
func CreateHardwareIncident(db *gorm.DB, in HardwareIncidentInput, creatorID uint, now time.Time) (*HardwareIncidentOut, error) {
	inc := hardwareFromInput(in, now)

	if inc.NomDeEquipement == "" {
		return nil, &types.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "Le nom de l'équipement est requis",
			Type:    types.ErrValidation,
		}
	}
	if inc.Description == "" {
		return nil, &types.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "La description est requise",
			Type:    types.ErrValidation,
		}
	}
	if err := validateDureeArret(inc.DureeArret); err != nil {
		return nil, err
	}

	if err := resolveEquipment(db, &inc); err != nil {
		return nil, err
	}
	inc.CreatedByID = &creatorID

	if err := db.Create(&inc).Error; err != nil {
		return nil, err
	}

	names, err := usernamesByID(db)
	if err != nil {
		return nil, err
	}
	out := hardwareOut(inc, names)
	return &out, nil
}

// CreateSoftwareIncident validates, defaults date/time and persists a new
// software incident.
func CreateSoftwareIncident(db *gorm.DB, in SoftwareIncidentInput, creatorID uint, now time.Time) (*SoftwareIncidentOut, error) {
	inc := softwareFromInput(in, now)

	if inc.Description == "" {
		return nil, &types.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "La description est requise",
			Type:    types.ErrValidation,
		}
	}
	inc.CreatedByID = &creatorID

	if err := db.Create(&inc).Error; err != nil {
		return nil, err
	}

	names, err := usernamesByID(db)
	if err != nil {
		return nil, err
	}
	out := softwareOut(inc, names)
	return &out, nil
}

// UpdateHardwareIncident overwrites the full field set of an existing
// hardware incident. There is no partial patch: absent fields store null/0.
func UpdateHardwareIncident(db *gorm.DB, id uint, in HardwareIncidentInput, now time.Time) (*HardwareIncidentOut, error) {
	var existing models.HardwareIncident
	if err := db.First(&existing, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &types.AppError{
				Code:    fiber.StatusNotFound,
				Message: "Incident matériel non trouvé",
				Type:    types.ErrNotFound,
			}
		}
		return nil, err
	}

	inc := hardwareFromInput(in, now)
	if inc.NomDeEquipement == "" {
		return nil, &types.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "Le nom de l'équipement est requis",
			Type:    types.ErrValidation,
		}
	}
	if inc.Description == "" {
		return nil, &types.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "La description est requise",
			Type:    types.ErrValidation,
		}
	}
	if err := validateDureeArret(inc.DureeArret); err != nil {
		return nil, err
	}
	if err := resolveEquipment(db, &inc); err != nil {
		return nil, err
	}

	inc.ID = existing.ID
	inc.CreatedByID = existing.CreatedByID
	inc.CreatedAt = existing.CreatedAt
	if err := db.Save(&inc).Error; err != nil {
		return nil, err
	}

	names, err := usernamesByID(db)
	if err != nil {
		return nil, err
	}
	out := hardwareOut(inc, names)
	return &out, nil
}

// UpdateSoftwareIncident overwrites the full field set of an existing
// software incident.
func UpdateSoftwareIncident(db *gorm.DB, id uint, in SoftwareIncidentInput, now time.Time) (*SoftwareIncidentOut, error) {
	var existing models.SoftwareIncident
	if err := db.First(&existing, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &types.AppError{
				Code:    fiber.StatusNotFound,
				Message: "Incident logiciel non trouvé",
				Type:    types.ErrNotFound,
			}
		}
		return nil, err
	}

	inc := softwareFromInput(in, now)
	if inc.Description == "" {
		return nil, &types.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "La description est requise",
			Type:    types.ErrValidation,
		}
	}

	inc.ID = existing.ID
	inc.CreatedByID = existing.CreatedByID
	inc.CreatedAt = existing.CreatedAt
	if err := db.Save(&inc).Error; err != nil {
		return nil, err
	}

	names, err := usernamesByID(db)
	if err != nil {
		return nil, err
	}
	out := softwareOut(inc, names)
	return &out, nil
}

// DeleteIncident removes the incident with the given id from whichever table
// holds it. Deleting a software incident also removes its report in the same
// transaction so no orphaned report stays reachable.
func DeleteIncident(db *gorm.DB, id uint) (string, error) {
	var hardware models.HardwareIncident
	err := db.First(&hardware, id).Error
	if err == nil {
		if err := db.Delete(&models.HardwareIncident{}, id).Error; err != nil {
			return "", err
		}
		return models.IncidentTypeHardware, nil
	}
	if err != gorm.ErrRecordNotFound {
		return "", err
	}

	var software models.SoftwareIncident
	err = db.First(&software, id).Error
	if err == gorm.ErrRecordNotFound {
		return "", &types.AppError{
			Code:    fiber.StatusNotFound,
			Message: "Incident non trouvé",
			Type:    types.ErrNotFound,
		}
	}
	if err != nil {
		return "", err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("software_incident_id = ?", id).Delete(&models.Report{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.SoftwareIncident{}, id).Error
	})
	if err != nil {
		return "", err
	}
	return models.IncidentTypeSoftware, nil
}
