package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"money-tracking/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Settings owned by dedicated operations cannot be written directly.
var protectedSettings = map[string]bool{
	models.SettingCurrency:            true,
	models.SettingSchemaVersion:       true,
	models.SettingOnboardingCompleted: true,
}

// GetSetting returns the value stored under key.
func (s *Service) GetSetting(ctx context.Context, key string) (string, error) {
	v, ok, err := getSetting(s.read(ctx), key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("setting %s: %w", key, ErrNotFound)
	}
	return v, nil
}

// SetSetting stores value under key.
func (s *Service) SetSetting(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" || len(key) > 64 {
		return invalid("setting key must be 1 to 64 characters")
	}
	if len(value) > 255 {
		return invalid("setting value too long")
	}
	if protectedSettings[key] {
		return fmt.Errorf("%w: setting %s", ErrProtected, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := putSetting(s.db.WithContext(ctx), key, value, s.clock()); err != nil {
		return storage("put setting", err)
	}
	return nil
}

// AllSettings returns every stored setting.
func (s *Service) AllSettings(ctx context.Context) (map[string]string, error) {
	var list []models.Setting
	if err := s.read(ctx).Find(&list).Error; err != nil {
		return nil, storage("list settings", err)
	}
	out := make(map[string]string, len(list))
	for _, st := range list {
		out[st.Key] = st.Value
	}
	return out, nil
}

func getSetting(db *gorm.DB, key string) (string, bool, error) {
	var st models.Setting
	err := db.Where(&models.Setting{Key: key}).First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storage("get setting", err)
	}
	return st.Value, true, nil
}

func putSetting(db *gorm.DB, key, value string, now time.Time) error {
	st := models.Setting{Key: key, Value: value, UpdatedAt: now}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&st).Error
}
