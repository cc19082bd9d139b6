package database

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"money-tracking/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type migration struct {
	version int
	name    string
	up      func(tx *gorm.DB) error
}

// migrations run in order, each inside its own transaction together with the
// schema_version bump. Append only.
var migrations = []migration{
	{1, "seed system categories", seedSystemCategories},
	{2, "backfill sync status", func(tx *gorm.DB) error {
		if err := tx.Model(&models.Transaction{}).Unscoped().
			Where("sync_status = '' OR sync_status IS NULL").
			Update("sync_status", models.SyncPending).Error; err != nil {
			return err
		}
		return tx.Model(&models.Category{}).Unscoped().
			Where("sync_status = '' OR sync_status IS NULL").
			Update("sync_status", models.SyncPending).Error
	}},
}

// LatestVersion is the schema version a fully migrated store reports.
func LatestVersion() int {
	return migrations[len(migrations)-1].version
}

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Setting{},
		&models.Account{},
		&models.Category{},
		&models.Transaction{},
		&models.Planification{},
		&models.PlanificationItem{},
		&models.Backup{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Migrate brings the schema up to date and applies every numbered migration
// above the stored schema version.
func Migrate(db *gorm.DB) error {
	if err := AutoMigrate(db); err != nil {
		return err
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.up(tx); err != nil {
				return err
			}
			return setSchemaVersion(tx, m.version)
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
	}
	return nil
}

// SchemaVersion returns the stored schema version, 0 for a fresh store.
func SchemaVersion(db *gorm.DB) (int, error) {
	if !db.Migrator().HasTable(&models.Setting{}) {
		return 0, nil
	}
	var s models.Setting
	err := db.Where(&models.Setting{Key: models.SettingSchemaVersion}).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	v, err := strconv.Atoi(s.Value)
	if err != nil {
		return 0, fmt.Errorf("corrupt schema version %q: %w", s.Value, err)
	}
	return v, nil
}

func setSchemaVersion(tx *gorm.DB, v int) error {
	s := models.Setting{
		Key:       models.SettingSchemaVersion,
		Value:     strconv.Itoa(v),
		UpdatedAt: time.Now().UTC(),
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&s).Error
}
