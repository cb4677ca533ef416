package handlers

import (
	"time"

	"github.com/enna-dta/incidentdb/internal/middleware"
	"github.com/enna-dta/incidentdb/internal/models"
	"github.com/enna-dta/incidentdb/internal/services"
	"github.com/enna-dta/incidentdb/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// IncidentHandler handles incident routes
type IncidentHandler struct {
	DB *gorm.DB
}

// ListIncidents handles GET /api/incidents/?type=
// @Summary List incidents
// @Description List hardware and/or software incidents, newest first
// @Tags Incidents
// @Produce json
// @Param type query string false "Incident type filter (hardware|software)"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} utils.MessageResponseStruct
// @Security BearerAuth
// @Router /incidents/ [get]
func (h *IncidentHandler) ListIncidents(c *fiber.Ctx) error {
	typeFilter := c.Query("type")
	if typeFilter != "" && typeFilter != models.IncidentTypeHardware && typeFilter != models.IncidentTypeSoftware {
		return utils.ValidationResponse(c, "Type d'incident invalide. Utilisez \"hardware\" ou \"software\".")
	}

	results, err := services.ListIncidents(h.DB, typeFilter)
	if err != nil {
		return fail(c, err, "listIncidents")
	}
	return utils.ListResponse(c, results, len(results))
}

// CreateIncident handles POST /api/incidents/
// @Summary Create an incident
// @Description Create a hardware or software incident; the payload is discriminated by incident_type
// @Tags Incidents
// @Accept json
// @Produce json
// @Param body body object true "Discriminated incident payload"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.MessageResponseStruct
// @Security BearerAuth
// @Router /incidents/ [post]
func (h *IncidentHandler) CreateIncident(c *fiber.Ctx) error {
	var discriminator struct {
		IncidentType string `json:"incident_type"`
	}
	if err := c.BodyParser(&discriminator); err != nil {
		return utils.ValidationResponse(c, "Corps de requête invalide")
	}

	claims := middleware.GetClaims(c)
	now := time.Now()

	switch discriminator.IncidentType {
	case models.IncidentTypeHardware:
		if err := requireWriteRole(c, msgReadOnlyCreate, models.RoleServiceMaintenance); err != nil {
			return err
		}
		var in services.HardwareIncidentInput
		if err := c.BodyParser(&in); err != nil {
			return utils.ValidationResponse(c, "Corps de requête invalide")
		}
		out, err := services.CreateHardwareIncident(h.DB, in, claims.UserID, now)
		if err != nil {
			return fail(c, err, "createHardwareIncident")
		}
		return c.Status(fiber.StatusCreated).JSON(out)

	case models.IncidentTypeSoftware:
		if err := requireWriteRole(c, msgReadOnlyCreate, models.RoleServiceIntegration); err != nil {
			return err
		}
		var in services.SoftwareIncidentInput
		if err := c.BodyParser(&in); err != nil {
			return utils.ValidationResponse(c, "Corps de requête invalide")
		}
		out, err := services.CreateSoftwareIncident(h.DB, in, claims.UserID, now)
		if err != nil {
			return fail(c, err, "createSoftwareIncident")
		}
		return c.Status(fiber.StatusCreated).JSON(out)

	default:
		return utils.ValidationResponse(c, "Type d'incident invalide. Utilisez \"hardware\" ou \"software\".")
	}
}

// UpdateHardwareIncident handles PUT /api/incidents/hardware/:id
// @Summary Update a hardware incident
// @Description Full-record update of a hardware incident
// @Tags Incidents
// @Accept json
// @Produce json
// @Param id path int true "Incident ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.MessageResponseStruct
// @Security BearerAuth
// @Router /incidents/hardware/{id} [put]
func (h *IncidentHandler) UpdateHardwareIncident(c *fiber.Ctx) error {
	if err := requireWriteRole(c, msgReadOnlyUpdate, models.RoleServiceMaintenance); err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}

	var in services.HardwareIncidentInput
	if err := c.BodyParser(&in); err != nil {
		return utils.ValidationResponse(c, "Corps de requête invalide")
	}

	out, err := services.UpdateHardwareIncident(h.DB, id, in, time.Now())
	if err != nil {
		return fail(c, err, "updateHardwareIncident")
	}
	return c.Status(fiber.StatusOK).JSON(out)
}

// UpdateSoftwareIncident handles PUT /api/incidents/software/:id
// @Summary Update a software incident
// @Description Full-record update of a software incident
// @Tags Incidents
// @Accept json
// @Produce json
// @Param id path int true "Incident ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.MessageResponseStruct
// @Security BearerAuth
// @Router /incidents/software/{id} [put]
func (h *IncidentHandler) UpdateSoftwareIncident(c *fiber.Ctx) error {
	if err := requireWriteRole(c, msgReadOnlyUpdate, models.RoleServiceIntegration); err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}

	var in services.SoftwareIncidentInput
	if err := c.BodyParser(&in); err != nil {
		return utils.ValidationResponse(c, "Corps de requête invalide")
	}

	out, err := services.UpdateSoftwareIncident(h.DB, id, in, time.Now())
	if err != nil {
		return fail(c, err, "updateSoftwareIncident")
	}
	return c.Status(fiber.StatusOK).JSON(out)
}

// DeleteIncident handles DELETE /api/incidents/:id
// @Summary Delete an incident
// @Description Delete an incident of either kind; a software incident's report goes with it
// @Tags Incidents
// @Produce json
// @Param id path int true "Incident ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 404 {object} utils.MessageResponseStruct
// @Security BearerAuth
// @Router /incidents/{id} [delete]
func (h *IncidentHandler) DeleteIncident(c *fiber.Ctx) error {
	if err := requireWriteRole(c, msgReadOnlyDelete, models.RoleServiceMaintenance, models.RoleServiceIntegration); err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}

	kind, err := services.DeleteIncident(h.DB, id)
	if err != nil {
		return fail(c, err, "deleteIncident")
	}

	if kind == models.IncidentTypeHardware {
		return utils.MessageResponse(c, fiber.StatusOK, "Incident matériel supprimé avec succès")
	}
	return utils.MessageResponse(c, fiber.StatusOK, "Incident logiciel supprimé avec succès")
}

// Stats handles GET /api/incidents/stats/
// @Summary Incident statistics
// @Description Aggregate incident and downtime counters computed at request time
// @Tags Incidents
// @Produce json
// @Success 200 {object} services.IncidentStats
// @Security BearerAuth
// @Router /incidents/stats/ [get]
func (h *IncidentHandler) Stats(c *fiber.Ctx) error {
	stats, err := services.ComputeStats(h.DB, time.Now())
	if err != nil {
		return fail(c, err, "incidentStats")
	}
	return c.Status(fiber.StatusOK).JSON(stats)
}

// Recent handles GET /api/incidents/recent/
// @Summary Recent incidents
// @Description The 5 most recently created incidents across both kinds
// @Tags Incidents
// @Produce json
// @Success 200 {array} object
// @Security BearerAuth
// @Router /incidents/recent/ [get]
func (h *IncidentHandler) Recent(c *fiber.Ctx) error {
	results, err := services.RecentIncidents(h.DB)
	if err != nil {
		return fail(c, err, "recentIncidents")
	}
	return c.Status(fiber.StatusOK).JSON(results)
}
