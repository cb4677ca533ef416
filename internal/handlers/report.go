package handlers

import (
	"strconv"

	"github.com/enna-dta/incidentdb/internal/middleware"
	"github.com/enna-dta/incidentdb/internal/models"
	"github.com/enna-dta/incidentdb/internal/services"
	"github.com/enna-dta/incidentdb/internal/types"
	"github.com/enna-dta/incidentdb/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ReportHandler handles report routes
type ReportHandler struct {
	DB *gorm.DB
}

// ListReports handles GET /api/reports/?incident=
// @Summary List reports
// @Description List analysis reports, newest first, optionally filtered by software incident
// @Tags Reports
// @Produce json
// @Param incident query int false "Software incident ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /reports/ [get]
func (h *ReportHandler) ListReports(c *fiber.Ctx) error {
	role := callerRole(c)
	if role != models.RoleServiceIntegration && role != models.RoleChefDepartement && role != models.RoleSuperadmin {
		return &types.AppError{
			Code:    fiber.StatusForbidden,
			Message: "Accès non autorisé aux rapports",
			Type:    types.ErrAuth,
		}
	}

	var incidentID *uint
	if raw := c.Query("incident"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return utils.ValidationResponse(c, "Identifiant d'incident invalide")
		}
		id := uint(parsed)
		incidentID = &id
	}

	results, err := services.ListReports(h.DB, incidentID)
	if err != nil {
		return fail(c, err, "listReports")
	}
	return utils.ListResponse(c, results, len(results))
}

// UpsertReport handles POST /api/reports/
// @Summary Create or update a report
// @Description Attach the single analysis report to a software incident; resubmitting updates it in place
// @Tags Reports
// @Accept json
// @Produce json
// @Param body body services.ReportInput true "Report payload"
// @Success 200 {object} services.ReportOut "Existing report updated"
// @Success 201 {object} services.ReportOut "Report created"
// @Failure 400 {object} utils.MessageResponseStruct
// @Security BearerAuth
// @Router /reports/ [post]
func (h *ReportHandler) UpsertReport(c *fiber.Ctx) error {
	if err := requireWriteRole(c, msgReadOnlyCreate, models.RoleServiceIntegration); err != nil {
		return err
	}

	var in services.ReportInput
	if err := c.BodyParser(&in); err != nil {
		return utils.ValidationResponse(c, "Corps de requête invalide")
	}
	if in.Analysis == "" || in.Conclusion == "" {
		return utils.ValidationResponse(c, "L'analyse et la conclusion sont requises")
	}

	claims := middleware.GetClaims(c)
	out, created, err := services.UpsertReport(h.DB, in, claims.UserID)
	if err != nil {
		return fail(c, err, "upsertReport")
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(out)
}
