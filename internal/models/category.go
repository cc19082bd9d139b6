package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	CategoryExpense  = "expense"
	CategoryIncome   = "income"
	CategoryTransfer = "transfer"
	CategorySystem   = "system"
)

// Well-known ids of the two system categories. They are seeded with the
// schema and are never editable or deletable.
const (
	IncomeCategoryID   = "system-income"
	TransferCategoryID = "system-transfer"
)

const (
	SyncPending = "pending"
	SyncSynced  = "synced"
)

// Category represents income/expense category.
type Category struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	Name         string         `gorm:"size:64;not null" json:"name"`
	Icon         string         `gorm:"size:32" json:"icon"`
	Color        string         `gorm:"size:16" json:"color"`
	IsDefault    bool           `gorm:"not null" json:"is_default"`
	CategoryType string         `gorm:"size:16;index;not null" json:"category_type"`
	SyncStatus   string         `gorm:"size:16;not null" json:"sync_status"`
	CreatedAt    time.Time      `json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// IsSystem reports whether c is one of the fixed system categories.
func (c *Category) IsSystem() bool {
	return c.ID == IncomeCategoryID || c.ID == TransferCategoryID
}
