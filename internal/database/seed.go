package database

import (
	"log"

	"github.com/enna-dta/incidentdb/internal/auth"
	"github.com/enna-dta/incidentdb/internal/models"
	"gorm.io/gorm"
)

// DefaultSeedPassword is the shared password of the demo accounts. Deployments
// are expected to rotate these accounts before going live.
const DefaultSeedPassword = "01010101"

var defaultUsers = []struct {
	username string
	role     string
}{
	{"admin", models.RoleSuperadmin},
	{"maintenance1", models.RoleServiceMaintenance},
	{"maintenance2", models.RoleServiceMaintenance},
	{"integration1", models.RoleServiceIntegration},
	{"integration2", models.RoleServiceIntegration},
	{"chefdep1", models.RoleChefDepartement},
}

// Seed creates the default demo accounts when they do not already exist.
func Seed(db *gorm.DB) error {
	hash, err := auth.HashPassword(DefaultSeedPassword)
	if err != nil {
		return err
	}

	for _, u := range defaultUsers {
		var existing models.User
		err := db.Where("username = ?", u.username).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := db.Create(&models.User{
			Username: u.username,
			Password: hash,
			Role:     u.role,
			IsActive: true,
		}).Error; err != nil {
			return err
		}
		log.Printf("Seeded default user %s (%s)", u.username, u.role)
	}
	return nil
}
