package ledger

import (
	"context"
	"time"

	"money-tracking/internal/database"
	"money-tracking/internal/models"

	"gorm.io/gorm"
)

// SnapshotVersion is bumped when the Snapshot layout changes.
const SnapshotVersion = 1

// Snapshot is a full copy of the ledger, soft-deleted rows included.
type Snapshot struct {
	Version        int                        `json:"version"`
	CreatedAt      time.Time                  `json:"created_at"`
	Accounts       []models.Account           `json:"accounts"`
	Categories     []models.Category          `json:"categories"`
	Transactions   []models.Transaction       `json:"transactions"`
	Planifications []models.Planification     `json:"planifications"`
	Items          []models.PlanificationItem `json:"items"`
	Settings       []models.Setting           `json:"settings"`
}

// Snapshot reads every ledger row.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{Version: SnapshotVersion, CreatedAt: s.clock()}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Unscoped().Order("created_at ASC, id ASC").Session(&gorm.Session{})
		if err := all.Find(&snap.Accounts).Error; err != nil {
			return err
		}
		if err := all.Find(&snap.Categories).Error; err != nil {
			return err
		}
		if err := all.Find(&snap.Transactions).Error; err != nil {
			return err
		}
		if err := all.Find(&snap.Planifications).Error; err != nil {
			return err
		}
		if err := all.Find(&snap.Items).Error; err != nil {
			return err
		}
		return tx.Not(&models.Setting{Key: models.SettingSchemaVersion}).Find(&snap.Settings).Error
	})
	if err != nil {
		return nil, storage("snapshot", err)
	}
	return snap, nil
}

// Restore replaces the ledger with snap in one transaction.
func (s *Service) Restore(ctx context.Context, snap *Snapshot) error {
	if snap == nil || snap.Version == 0 || snap.Version > SnapshotVersion {
		return invalid("unsupported snapshot")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, "restore", func(tx *gorm.DB) error {
		for _, m := range []any{
			&models.PlanificationItem{},
			&models.Planification{},
			&models.Transaction{},
			&models.Category{},
			&models.Account{},
		} {
			wipe := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped()
			if err := wipe.Delete(m).Error; err != nil {
				return err
			}
		}
		if err := tx.Not(&models.Setting{Key: models.SettingSchemaVersion}).Delete(&models.Setting{}).Error; err != nil {
			return err
		}

		for i := range snap.Planifications {
			snap.Planifications[i].Items = nil
		}
		if err := createAll(tx, snap.Accounts); err != nil {
			return err
		}
		if err := createAll(tx, snap.Categories); err != nil {
			return err
		}
		if err := createAll(tx, snap.Transactions); err != nil {
			return err
		}
		if err := createAll(tx, snap.Planifications); err != nil {
			return err
		}
		if err := createAll(tx, snap.Items); err != nil {
			return err
		}
		for _, st := range snap.Settings {
			if st.Key == models.SettingSchemaVersion {
				continue
			}
			if err := putSetting(tx, st.Key, st.Value, st.UpdatedAt); err != nil {
				return err
			}
		}
		return database.Seed(tx)
	})
}

func createAll[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(&rows, 200).Error
}
