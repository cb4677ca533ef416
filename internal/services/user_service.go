package services

import (
	"strings"

	"github.com/enna-dta/incidentdb/internal/auth"
	"github.com/enna-dta/incidentdb/internal/models"
	"github.com/enna-dta/incidentdb/internal/types"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UserInput is the admin user-management payload. Password and IsActive are
// pointers so updates can leave them untouched.
type UserInput struct {
	Username string  `json:"username"`
	Password *string `json:"password"`
	Role     string  `json:"role"`
	IsActive *bool   `json:"is_active"`
}

var errUserNotFound = &types.AppError{
	Code:    fiber.StatusNotFound,
	Message: "Utilisateur non trouvé",
	Type:    types.ErrNotFound,
}

// ListUsers returns every account, newest first.
func ListUsers(db *gorm.DB) ([]models.User, error) {
	users := []models.User{}
	if err := db.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser registers a new account with a hashed password.
func CreateUser(db *gorm.DB, in UserInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		return nil, &types.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "Nom d'utilisateur requis",
			Type:    types.ErrValidation,
		}
	}
	if in.Password == nil || *in.Password == "" {
		return nil, &types.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "Mot de passe requis",
			Type:    types.ErrValidation,
		}
	}
	if !models.IsValidRole(in.Role) {
		return nil, &types.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "Rôle invalide",
			Type:    types.ErrValidation,
		}
	}

	var existing models.User
	err := db.Where("username = ?", in.Username).First(&existing).Error
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

	hash, err := auth.HashPassword(*in.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: in.Username,
		Password: hash,
		Role:     in.Role,
		IsActive: true,
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser applies a partial update to an account. Only the supplied
// fields change; an empty password means "keep the current one".
func UpdateUser(db *gorm.DB, id uint, in UserInput) (*models.User, error) {
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errUserNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}

	if username := strings.TrimSpace(in.Username); username != "" && username != user.Username {
		var existing models.User
		err := db.Where("username = ? AND id <> ?", username, id).First(&existing).Error
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
		updates["username"] = username
		user.Username = username
	}

	if in.Role != "" {
		if !models.IsValidRole(in.Role) {
			return nil, &types.AppError{
				Code:    fiber.StatusBadRequest,
				Message: "Rôle invalide",
				Type:    types.ErrValidation,
			}
		}
		updates["role"] = in.Role
		user.Role = in.Role
	}

	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
		user.IsActive = *in.IsActive
	}

	if in.Password != nil && *in.Password != "" {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		updates["password"] = hash
		user.Password = hash
	}

	if len(updates) > 0 {
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &user, nil
}

// DeleteUser removes an account. Deleting one's own account is rejected so
// an instance can never end up with zero superadmins by accident.
func DeleteUser(db *gorm.DB, id, callerID uint) error {
	if id == callerID {
		return &types.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "Vous ne pouvez pas supprimer votre propre compte",
			Type:    types.ErrValidation,
		}
	}

	result := db.Delete(&models.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errUserNotFound
	}
	return nil
}
