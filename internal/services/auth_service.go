package services

import (
	"fmt"
	"time"

	"github.com/enna-dta/incidentdb/internal/auth"
	"github.com/enna-dta/incidentdb/internal/config"
	"github.com/enna-dta/incidentdb/internal/models"
	"github.com/enna-dta/incidentdb/internal/types"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// errInvalidCredentials is deliberately generic: unknown username, wrong
// password and deactivated account all answer the same way so the endpoint
// cannot be used to probe which accounts exist.
var errInvalidCredentials = &types.AppError{
	Code:    fiber.StatusBadRequest,
	Message: "Identifiants invalides",
	Type:    types.ErrAuth,
}

func lockedError(until time.Time, now time.Time, afterFailure bool) *types.AppError {
	remaining := int(until.Sub(now).Minutes())
	if remaining < 1 {
		remaining = 1
	}
	message := fmt.Sprintf("Compte verrouillé. Réessayez dans %d minutes.", remaining)
	if afterFailure {
		message = fmt.Sprintf("Compte verrouillé après plusieurs tentatives échouées. Réessayez dans %d minutes.", remaining)
	}
	return &types.AppError{
		Code:    fiber.StatusLocked,
		Message: message,
		Type:    types.ErrAuth,
	}
}

// Authenticate verifies the credentials and enforces the account lockout
// policy: MaxLoginAttempts consecutive failures lock the account for
// LockoutMinutes. The counter resets on success and on lock expiry.
func Authenticate(db *gorm.DB, cfg *config.Config, usernameIn, password string, now time.Time) (*models.User, error) {
	if usernameIn == "" || password == "" {
		return nil, &types.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "Nom d'utilisateur et mot de passe requis",
			Type:    types.ErrValidation,
		}
	}

	var user models.User
	err := db.Where("username = ?", usernameIn).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if user.IsLocked(now) {
		return nil, lockedError(*user.LockedUntil, now, false)
	}
	if user.LockedUntil != nil {
		// Lock expired: clear it before counting this attempt.
		user.LockedUntil = nil
		user.FailedLoginAttempts = 0
		if err := db.Model(&user).Select("locked_until", "failed_login_attempts").
			Updates(map[string]interface{}{"locked_until": nil, "failed_login_attempts": 0}).Error; err != nil {
			return nil, err
		}
	}

	if err := auth.VerifyPassword(password, user.Password); err != nil {
		return nil, registerFailure(db, cfg, &user, now)
	}

	if !user.IsActive {
		return nil, errInvalidCredentials
	}

	if user.FailedLoginAttempts > 0 {
		if err := db.Model(&user).Select("failed_login_attempts", "locked_until").
			Updates(map[string]interface{}{"failed_login_attempts": 0, "locked_until": nil}).Error; err != nil {
			return nil, err
		}
		user.FailedLoginAttempts = 0
		user.LockedUntil = nil
	}

	return &user, nil
}

// registerFailure bumps the failure counter and locks the account when the
// threshold is reached. The caller always gets an auth error back.
func registerFailure(db *gorm.DB, cfg *config.Config, user *models.User, now time.Time) error {
	user.FailedLoginAttempts++
	updates := map[string]interface{}{"failed_login_attempts": user.FailedLoginAttempts}

	if user.FailedLoginAttempts >= cfg.MaxLoginAttempts {
		until := now.Add(time.Duration(cfg.LockoutMinutes) * time.Minute)
		user.LockedUntil = &until
		updates["locked_until"] = until
	}

	if err := db.Model(user).Updates(updates).Error; err != nil {
		return err
	}

	if user.LockedUntil != nil {
		return lockedError(*user.LockedUntil, now, true)
	}
	return errInvalidCredentials
}

// IssueTokens mints the access/refresh token pair for a user.
func IssueTokens(cfg *config.Config, user *models.User) (accessToken, refreshToken string, err error) {
	accessToken, err = auth.GenerateToken(user.ID, user.Username, user.Role, auth.TokenAccess,
		cfg.JWTSecret, time.Duration(cfg.AccessTokenTTL)*time.Hour)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = auth.GenerateToken(user.ID, user.Username, user.Role, auth.TokenRefresh,
		cfg.JWTSecret, time.Duration(cfg.RefreshTokenTTL)*time.Hour)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// RefreshAccessToken validates a refresh token and mints a fresh access
// token for the account, re-checking that it still exists and is active.
func RefreshAccessToken(db *gorm.DB, cfg *config.Config, refreshToken string) (string, *models.User, error) {
	claims, err := auth.ValidateToken(refreshToken, cfg.JWTSecret)
	if err != nil || claims.TokenType != auth.TokenRefresh {
		return "", nil, &types.AppError{
			Code:    fiber.StatusForbidden,
			Message: "Token invalide",
			Type:    types.ErrAuth,
		}
	}

	var user models.User
	if err := db.First(&user, claims.UserID).Error; err != nil {
		return "", nil, &types.AppError{
			Code:    fiber.StatusForbidden,
			Message: "Token invalide",
			Type:    types.ErrAuth,
		}
	}
	if !user.IsActive {
		return "", nil, &types.AppError{
			Code:    fiber.StatusForbidden,
			Message: "Token invalide",
			Type:    types.ErrAuth,
		}
	}

	access, err := auth.GenerateToken(user.ID, user.Username, user.Role, auth.TokenAccess,
		cfg.JWTSecret, time.Duration(cfg.AccessTokenTTL)*time.Hour)
	if err != nil {
		return "", nil, err
	}
	return access, &user, nil
}

// ChangePassword verifies the current password then stores a hash of the new
// one.
func ChangePassword(db *gorm.DB, userID uint, oldPassword, newPassword string) error {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return err
	}

	if err := auth.VerifyPassword(oldPassword, user.Password); err != nil {
		return &types.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "Ancien mot de passe incorrect",
			Type:    types.ErrValidation,
		}
	}
	if err := auth.ValidatePasswordStrength(newPassword); err != nil {
		return &types.AppError{
			Code:    fiber.StatusBadRequest,
			Message: err.Error(),
			Type:    types.ErrValidation,
		}
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return db.Model(&user).Update("password", hash).Error
}

// UpdateProfile renames the account, enforcing username uniqueness.
func UpdateProfile(db *gorm.DB, userID uint, newUsername string) (*models.User, error) {
	if newUsername == "" {
		return nil, &types.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "Nom d'utilisateur requis",
			Type:    types.ErrValidation,
		}
	}

	var existing models.User
	err := db.Where("username = ? AND id <> ?", newUsername, userID).First(&existing).Error
	if err == nil {
		return nil, &types.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "Ce nom d'utilisateur est déjà utilisé",
			Type:    types.ErrConflict,
		}
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&user).Update("username", newUsername).Error; err != nil {
		return nil, err
	}
	user.Username = newUsername
	return &user, nil
}
