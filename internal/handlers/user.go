package handlers

import (
	"github.com/enna-dta/incidentdb/internal/middleware"
	"github.com/enna-dta/incidentdb/internal/services"
	"github.com/enna-dta/incidentdb/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UserHandler handles the superadmin-only user management routes. The
// superadmin gate itself is the RequireSuperadmin middleware on the route
// group.
type UserHandler struct {
	DB *gorm.DB
}

// ListUsers handles GET /api/users/
// @Summary List accounts
// @Tags Users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /users/ [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	users, err := services.ListUsers(h.DB)
	if err != nil {
		return fail(c, err, "listUsers")
	}
	return utils.ListResponse(c, users, len(users))
}

// CreateUser handles POST /api/users/
// @Summary Create an account
// @Tags Users
// @Accept json
// @Produce json
// @Param body body services.UserInput true "User payload"
// @Success 201 {object} models.User
// @Failure 400 {object} utils.MessageResponseStruct
// @Security BearerAuth
// @Router /users/ [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var in services.UserInput
	if err := c.BodyParser(&in); err != nil {
		return utils.ValidationResponse(c, "Corps de requête invalide")
	}

	user, err := services.CreateUser(h.DB, in)
	if err != nil {
		return fail(c, err, "createUser")
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// UpdateUser handles PUT /api/users/:id
// @Summary Update an account
// @Tags Users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param body body services.UserInput true "Fields to update"
// @Success 200 {object} models.User
// @Failure 404 {object} utils.MessageResponseStruct
// @Security BearerAuth
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	var in services.UserInput
	if err := c.BodyParser(&in); err != nil {
		return utils.ValidationResponse(c, "Corps de requête invalide")
	}

	user, err := services.UpdateUser(h.DB, id, in)
	if err != nil {
		return fail(c, err, "updateUser")
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// DeleteUser handles DELETE /api/users/:id
// @Summary Delete an account
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 404 {object} utils.MessageResponseStruct
// @Security BearerAuth
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	claims := middleware.GetClaims(c)
	if err := services.DeleteUser(h.DB, id, claims.UserID); err != nil {
		return fail(c, err, "deleteUser")
	}
	return utils.MessageResponse(c, fiber.StatusOK, "Utilisateur supprimé avec succès")
}
