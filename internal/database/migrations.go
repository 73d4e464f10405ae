package database

import (
	"errors"
	"time"

	"github.com/MarcoPoloResearchLab/shipyard/backend/internal/ships"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const migrationBackfillShipRatings = "2026-10-19_backfill_ship_ratings"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationBackfillShipRatings, apply: backfillShipRatings},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.Transaction(migration.apply); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// backfillShipRatings normalizes rows imported before ratings were derived server-side.
func backfillShipRatings(tx *gorm.DB) error {
	var stored []ships.Ship
	if err := tx.Order("id ASC").Find(&stored).Error; err != nil {
		return err
	}
	for _, ship := range stored {
		rerated := ship.Rerated()
		if rerated.Speed == ship.Speed && rerated.Rating == ship.Rating {
			continue
		}
		if err := tx.Model(&ships.Ship{}).
			Where("id = ?", ship.ID).
			Updates(map[string]interface{}{"speed": rerated.Speed, "rating": rerated.Rating}).Error; err != nil {
			return err
		}
	}
	return nil
}
