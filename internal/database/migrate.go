package database

import (
	"fmt"
	"log"
	"time"

	"github.com/enna-dta/incidentdb/internal/models"
	"gorm.io/gorm"
)

// A migration mutates data in place. AutoMigrate owns the schema shape;
// these cover the backfills that used to live in one-off scripts run by hand
// against production.
type migration struct {
	id  string
	run func(tx *gorm.DB) error
}

// Ordered ledger. Append only; never reorder or edit an applied entry.
var migrations = []migration{
	{
		id: "001_backfill_duree_arret_zero",
		run: func(tx *gorm.DB) error {
			// Older rows predate the downtime column and carry NULL.
			return tx.Model(&models.HardwareIncident{}).
				Where("duree_arret IS NULL").
				Update("duree_arret", 0).Error
		},
	},
	{
		id: "002_link_incidents_to_equipment",
		run: func(tx *gorm.DB) error {
			// Resolve denormalized serial numbers to current equipment rows.
			var incidents []models.HardwareIncident
			if err := tx.Where("equipement_id IS NULL AND numero_de_serie IS NOT NULL AND numero_de_serie <> ''").
				Find(&incidents).Error; err != nil {
				return err
			}
			for _, inc := range incidents {
				var equip models.Equipement
				err := tx.Where("num_serie = ? AND etat = ?", inc.NumeroDeSerie, models.EtatActuel).
					First(&equip).Error
				if err == gorm.ErrRecordNotFound {
					continue
				}
				if err != nil {
					return err
				}
				if err := tx.Model(&models.HardwareIncident{}).
					Where("id = ?", inc.ID).
					Update("equipement_id", equip.ID).Error; err != nil {
					return err
				}
			}
			return nil
		},
	},
}

// Migrate applies every unapplied migration in order, recording each id in
// schema_migrations. Safe to run at every startup.
func Migrate(db *gorm.DB) error {
	for _, m := range migrations {
		var applied models.SchemaMigration
		err := db.Where("id = ?", m.id).First(&applied).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("read schema_migrations: %w", err)
		}

		if err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.run(tx); err != nil {
				return err
			}
			return tx.Create(&models.SchemaMigration{
				ID:        m.id,
				AppliedAt: time.Now().UTC(),
			}).Error
		}); err != nil {
			return fmt.Errorf("migration %s: %w", m.id, err)
		}

		log.Printf("Applied migration %s", m.id)
	}
	return nil
}
