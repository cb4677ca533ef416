package handlers

import (
	"github.com/enna-dta/incidentdb/internal/config"
	"github.com/enna-dta/incidentdb/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// Health handles GET /api/health/
// @Summary Service health
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health/ [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(h.Cfg, h.DB)
	if result.Status != "OK" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  result.Status,
			"message": result.ErrorMessage,
		})
	}
	return c.JSON(fiber.Map{
		"status":  result.Status,
		"message": result.Message,
	})
}
