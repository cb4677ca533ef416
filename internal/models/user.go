package models

import (
	"time"
)

// Roles understood by the permission checks. Stored as plain strings so the
// table stays readable from the sqlite shell.
const (
	RoleServiceMaintenance = "service_maintenance"
	RoleServiceIntegration = "service_integration"
	RoleChefDepartement    = "chef_departement"
	RoleSuperadmin         = "superadmin"
)

// ValidRoles lists every role accepted by user management.
var ValidRoles = []string{
	RoleServiceMaintenance,
	RoleServiceIntegration,
	RoleChefDepartement,
	RoleSuperadmin,
}

// User represents an account in the users table. The password column holds a
// bcrypt hash and is never serialized.
type User struct {
	ID                  uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Username            string     `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Password            string     `gorm:"size:255;not null" json:"-"`
	Role                string     `gorm:"size:50;not null;default:service_maintenance" json:"role"`
	IsActive            bool       `gorm:"not null;default:true" json:"is_active"`
	FailedLoginAttempts int        `gorm:"not null;default:0" json:"-"`
	LockedUntil         *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// IsValidRole reports whether role is one of the accepted account roles.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsLocked reports whether the account lockout window is still open at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}
