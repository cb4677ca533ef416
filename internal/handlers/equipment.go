package handlers

import (
	"github.com/enna-dta/incidentdb/internal/models"
	"github.com/enna-dta/incidentdb/internal/services"
	"github.com/enna-dta/incidentdb/internal/types"
	"github.com/enna-dta/incidentdb/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// EquipmentHandler handles equipment registry routes
type EquipmentHandler struct {
	DB *gorm.DB
}

// checkEquipmentAccess rejects the one role with no equipment access at all.
func checkEquipmentAccess(c *fiber.Ctx) error {
	if callerRole(c) == models.RoleServiceIntegration {
		return &types.AppError{
			Code:    fiber.StatusForbidden,
			Message: "Accès non autorisé aux équipements",
			Type:    types.ErrAuth,
		}
	}
	return nil
}

// ListEquipment handles GET /api/equipement/
// @Summary List equipment
// @Description List equipment records; supports serial lookup (num_serie) and autocomplete (search_serie)
// @Tags Equipment
// @Produce json
// @Param num_serie query string false "Exact serial lookup, current record"
// @Param search_serie query string false "Serial autocomplete prefix"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.MessageResponseStruct
// @Security BearerAuth
// @Router /equipement/ [get]
func (h *EquipmentHandler) ListEquipment(c *fiber.Ctx) error {
	if err := checkEquipmentAccess(c); err != nil {
		return err
	}

	if q := c.Query("search_serie"); q != "" {
		serials, err := services.SearchSerials(h.DB, q)
		if err != nil {
			return fail(c, err, "searchSerials")
		}
		return utils.ListResponse(c, serials, len(serials))
	}

	if serial := c.Query("num_serie"); serial != "" {
		equip, err := services.FindEquipmentBySerial(h.DB, serial)
		if err != nil {
			return fail(c, err, "findEquipmentBySerial")
		}
		return c.Status(fiber.StatusOK).JSON(equip)
	}

	rows, err := services.ListEquipment(h.DB)
	if err != nil {
		return fail(c, err, "listEquipment")
	}
	return utils.ListResponse(c, rows, len(rows))
}

// CreateEquipment handles POST /api/equipement/
// @Summary Create equipment
// @Description Register a new current equipment record
// @Tags Equipment
// @Accept json
// @Produce json
// @Param body body services.EquipmentInput true "Equipment payload"
// @Success 201 {object} models.Equipement
// @Failure 400 {object} utils.MessageResponseStruct
// @Security BearerAuth
// @Router /equipement/ [post]
func (h *EquipmentHandler) CreateEquipment(c *fiber.Ctx) error {
	if err := checkEquipmentAccess(c); err != nil {
		return err
	}
	if err := requireWriteRole(c, msgReadOnlyCreate, models.RoleServiceMaintenance); err != nil {
		return err
	}

	var in services.EquipmentInput
	if err := c.BodyParser(&in); err != nil {
		return utils.ValidationResponse(c, "Corps de requête invalide")
	}

	equip, err := services.CreateEquipment(h.DB, in)
	if err != nil {
		return fail(c, err, "createEquipment")
	}
	return c.Status(fiber.StatusCreated).JSON(equip)
}

// UpdateEquipment handles PUT /api/equipement/:id
// @Summary Edit equipment
// @Description Supersede an equipment record: the previous current row becomes historique
// @Tags Equipment
// @Accept json
// @Produce json
// @Param id path int true "Equipment ID"
// @Param body body services.EquipmentInput true "Equipment payload"
// @Success 200 {object} models.Equipement
// @Failure 404 {object} utils.MessageResponseStruct
// @Security BearerAuth
// @Router /equipement/{id} [put]
func (h *EquipmentHandler) UpdateEquipment(c *fiber.Ctx) error {
	if err := checkEquipmentAccess(c); err != nil {
		return err
	}
	if err := requireWriteRole(c, msgReadOnlyUpdate, models.RoleServiceMaintenance); err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}

	var in services.EquipmentInput
	if err := c.BodyParser(&in); err != nil {
		return utils.ValidationResponse(c, "Corps de requête invalide")
	}

	equip, err := services.UpdateEquipment(h.DB, id, in)
	if err != nil {
		return fail(c, err, "updateEquipment")
	}
	return c.Status(fiber.StatusOK).JSON(equip)
}

// DeleteEquipment handles DELETE /api/equipement/:id
// @Summary Delete equipment
// @Description Hard-delete an equipment record
// @Tags Equipment
// @Produce json
// @Param id path int true "Equipment ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 404 {object} utils.MessageResponseStruct
// @Security BearerAuth
// @Router /equipement/{id} [delete]
func (h *EquipmentHandler) DeleteEquipment(c *fiber.Ctx) error {
	if err := checkEquipmentAccess(c); err != nil {
		return err
	}
	if err := requireWriteRole(c, msgReadOnlyDelete, models.RoleServiceMaintenance); err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}

	if err := services.DeleteEquipment(h.DB, id); err != nil {
		return fail(c, err, "deleteEquipment")
	}
	return utils.MessageResponse(c, fiber.StatusOK, "Équipement supprimé avec succès")
}

// EquipmentHistory handles GET /api/equipement/:id/history/
// @Summary Equipment incident history
// @Description Hardware incidents recorded against an equipment record, by link or serial
// @Tags Equipment
// @Produce json
// @Param id path int true "Equipment ID"
// @Success 200 {object} services.EquipmentHistoryOut
// @Failure 404 {object} utils.MessageResponseStruct
// @Security BearerAuth
// @Router /equipement/{id}/history/ [get]
func (h *EquipmentHandler) EquipmentHistory(c *fiber.Ctx) error {
	if err := checkEquipmentAccess(c); err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}

	history, err := services.EquipmentHistory(h.DB, id)
	if err != nil {
		return fail(c, err, "equipmentHistory")
	}
	return c.Status(fiber.StatusOK).JSON(history)
}
