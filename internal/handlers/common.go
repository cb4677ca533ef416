package handlers

import (
	"log"
	"strconv"

	"github.com/enna-dta/incidentdb/internal/middleware"
	"github.com/enna-dta/incidentdb/internal/models"
	"github.com/enna-dta/incidentdb/internal/types"
	"github.com/enna-dta/incidentdb/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the app-level fiber error handler. AppErrors keep their
// own status and message; anything unrecognized answers with the generic
// store failure so driver errors never reach a client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if appErr, ok := err.(*types.AppError); ok {
		return c.Status(appErr.Code).JSON(fiber.Map{
			"message": appErr.Message,
		})
	}

	if e, ok := err.(*fiber.Error); ok {
		return c.Status(e.Code).JSON(fiber.Map{
			"message": e.Message,
		})
	}

	log.Printf("unhandled error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Erreur de base de données",
	})
}

// fail renders a service error. Known AppErrors flow to the app error
// handler with their own status and message; anything else is a store error
// that gets logged and answered with the generic 500.
func fail(c *fiber.Ctx, err error, context string) error {
	if appErr, ok := err.(*types.AppError); ok {
		return appErr
	}
	log.Printf("%s: %v", context, err)
	return utils.StoreErrorResponse(c)
}

// idParam parses the :id path segment.
func idParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, &types.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "Identifiant invalide",
			Type:    types.ErrValidation,
		}
	}
	return uint(id), nil
}

// callerRole returns the authenticated role, empty when unauthenticated.
func callerRole(c *fiber.Ctx) string {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return ""
	}
	return claims.Role
}

// Read-only refusals for the department head, one per verb.
const (
	msgReadOnlyCreate = "Accès en lecture seule. Création non autorisée."
	msgReadOnlyUpdate = "Accès en lecture seule. Modification non autorisée."
	msgReadOnlyDelete = "Accès en lecture seule. Suppression non autorisée."
)

// requireWriteRole enforces the write side of the permission matrix: the
// department head is read-only everywhere and is refused with readOnlyMsg,
// and each service writes only its own incident kind. allowed lists the
// roles with write access next to superadmin.
func requireWriteRole(c *fiber.Ctx, readOnlyMsg string, allowed ...string) error {
	role := callerRole(c)
	if role == models.RoleSuperadmin {
		return nil
	}
	if role == models.RoleChefDepartement {
		return &types.AppError{
			Code:    fiber.StatusForbidden,
			Message: readOnlyMsg,
			Type:    types.ErrAuth,
		}
	}
	for _, a := range allowed {
		if role == a {
			return nil
		}
	}
	return &types.AppError{
		Code:    fiber.StatusForbidden,
		Message: "Accès non autorisé",
		Type:    types.ErrAuth,
	}
}
