package models

import "time"

// Well-known setting keys.
const (
	SettingCurrency            = "currency"
	SettingTheme               = "theme"
	SettingReminderFrequency   = "reminder_frequency"
	SettingOnboardingCompleted = "onboarding_completed"
	SettingTutorialCompleted   = "tutorial_completed"
	SettingTipIndex            = "tip_index"
	SettingSchemaVersion       = "schema_version"
)

// Setting is a flat key/value pair.
type Setting struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Value     string    `gorm:"size:255;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Backup records an encrypted backup file written to the backup directory.
type Backup struct {
	ID        string    `gorm:"primaryKey;size:36"`
	FileName  string    `gorm:"size:255;not null"`
	FilePath  string    `gorm:"size:512;not null"`
	Size      int64     `gorm:"not null"`
	CreatedAt time.Time `gorm:"index"`
}
