package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	AccountBank = "bank"
	AccountCash = "cash"
)

// Account is a named store of money. Its current balance is never stored:
// it is derived from InitialBalance and the account's transactions.
type Account struct {
	ID             string         `gorm:"primaryKey;size:36" json:"id"`
	Name           string         `gorm:"size:64;not null" json:"name"`
	Type           string         `gorm:"size:8;index;not null" json:"type"` // bank / cash
	InitialBalance int64          `gorm:"not null" json:"initial_balance"`   // cents, signed
	Icon           string         `gorm:"size:32" json:"icon"`
	IsDefault      bool           `gorm:"not null" json:"is_default"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// ValidAccountType reports whether t is a known account type.
func ValidAccountType(t string) bool {
	return t == AccountBank || t == AccountCash
}
