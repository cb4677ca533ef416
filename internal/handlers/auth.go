package handlers

import (
	"time"

	"github.com/enna-dta/incidentdb/internal/config"
	"github.com/enna-dta/incidentdb/internal/middleware"
	"github.com/enna-dta/incidentdb/internal/models"
	"github.com/enna-dta/incidentdb/internal/services"
	"github.com/enna-dta/incidentdb/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthHandler handles authentication routes
type AuthHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type updateProfileRequest struct {
	Username string `json:"username"`
}

// Login handles POST /api/auth/login/
// @Summary Log in
// @Description Verify credentials and issue the access/refresh token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.MessageResponseStruct
// @Failure 423 {object} utils.MessageResponseStruct
// @Failure 429 {object} utils.MessageResponseStruct
// @Router /auth/login/ [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ValidationResponse(c, "Corps de requête invalide")
	}

	user, err := services.Authenticate(h.DB, h.Cfg, req.Username, req.Password, time.Now())
	if err != nil {
		return fail(c, err, "login")
	}

	access, refresh, err := services.IssueTokens(h.Cfg, user)
	if err != nil {
		return fail(c, err, "issueTokens")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"token":         access,
		"refresh_token": refresh,
		"user":          user,
		"message":       "Connexion réussie",
	})
}

// Logout handles POST /api/auth/logout/
// @Summary Log out
// @Description Tokens are stateless; the server only acknowledges so the client clears its credentials
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.MessageResponseStruct
// @Security BearerAuth
// @Router /auth/logout/ [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	return utils.MessageResponse(c, fiber.StatusOK, "Déconnexion réussie")
}

// Refresh handles POST /api/auth/refresh/
// @Summary Refresh the access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body refreshRequest true "Refresh token"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.MessageResponseStruct
// @Router /auth/refresh/ [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return utils.ValidationResponse(c, "Refresh token requis")
	}

	access, user, err := services.RefreshAccessToken(h.DB, h.Cfg, req.RefreshToken)
	if err != nil {
		return fail(c, err, "refreshToken")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"token": access,
		"user":  user,
	})
}

// Profile handles GET /api/auth/profile/
// @Summary Current user profile
// @Tags Auth
// @Produce json
// @Success 200 {object} models.User
// @Security BearerAuth
// @Router /auth/profile/ [get]
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	claims := middleware.GetClaims(c)

	var user models.User
	if err := h.DB.First(&user, claims.UserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.NotFoundResponse(c, "Utilisateur non trouvé")
		}
		return fail(c, err, "profile")
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// UpdateProfile handles PUT /api/auth/profile/update/
// @Summary Rename the current account
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body updateProfileRequest true "New username"
// @Success 200 {object} models.User
// @Failure 400 {object} utils.MessageResponseStruct
// @Security BearerAuth
// @Router /auth/profile/update/ [put]
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	claims := middleware.GetClaims(c)

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ValidationResponse(c, "Corps de requête invalide")
	}

	user, err := services.UpdateProfile(h.DB, claims.UserID, req.Username)
	if err != nil {
		return fail(c, err, "updateProfile")
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// ChangePassword handles POST /api/auth/change-password/
// @Summary Change the current account password
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body changePasswordRequest true "Old and new password"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 400 {object} utils.MessageResponseStruct
// @Security BearerAuth
// @Router /auth/change-password/ [post]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	claims := middleware.GetClaims(c)

	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil || req.OldPassword == "" || req.NewPassword == "" {
		return utils.ValidationResponse(c, "Ancien et nouveau mot de passe requis")
	}

	if err := services.ChangePassword(h.DB, claims.UserID, req.OldPassword, req.NewPassword); err != nil {
		return fail(c, err, "changePassword")
	}
	return utils.MessageResponse(c, fiber.StatusOK, "Mot de passe modifié avec succès")
}
