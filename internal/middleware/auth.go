package middleware

import (
	"strings"

	"github.com/enna-dta/incidentdb/internal/auth"
	"github.com/enna-dta/incidentdb/internal/models"
	"github.com/enna-dta/incidentdb/internal/types"
	"github.com/gofiber/fiber/v2"
)

// ClaimsKey is the fiber.Ctx Locals key holding the validated token claims.
const ClaimsKey = "claims"

// RequireAuth validates the bearer token on the request. A missing token and
// an invalid or expired one are distinct error kinds: the client clears its
// stored credentials only for the latter.
func RequireAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token := ""
		if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			token = parts[1]
		}

		if token == "" {
			return &types.AppError{
				Code:    fiber.StatusUnauthorized,
				Message: "Token d'authentification requis",
				Type:    types.ErrAuth,
			}
		}

		claims, err := auth.ValidateToken(token, secret)
		if err != nil || claims.TokenType != auth.TokenAccess {
			return &types.AppError{
				Code:    fiber.StatusForbidden,
				Message: "Token invalide",
				Type:    types.ErrAuth,
			}
		}

		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

// RequireSuperadmin gates user management to the superadmin role. Must run
// after RequireAuth.
func RequireSuperadmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := GetClaims(c)
		if claims == nil || claims.Role != models.RoleSuperadmin {
			return &types.AppError{
				Code:    fiber.StatusForbidden,
				Message: "Accès non autorisé",
				Type:    types.ErrAuth,
			}
		}
		return c.Next()
	}
}

// GetClaims returns the validated claims set by RequireAuth, or nil.
func GetClaims(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(ClaimsKey).(*auth.Claims)
	return claims
}
