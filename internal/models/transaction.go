package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	TypeExpense = "expense"
	TypeIncome  = "income"
)

// Transaction is a single signed movement. Amount is always non-negative;
// the sign comes from Type. Both legs of a transfer share TransferID.
type Transaction struct {
	ID         string         `gorm:"primaryKey;size:36" json:"id"`
	Type       string         `gorm:"size:16;index;not null" json:"type"` // income / expense
	Amount     int64          `gorm:"not null" json:"amount"`             // cents
	CategoryID *string        `gorm:"size:36;index" json:"category_id"`
	AccountID  *string        `gorm:"size:36;index" json:"account_id"`
	TransferID *string        `gorm:"size:36;index" json:"transfer_id,omitempty"`
	Note       string         `gorm:"size:255" json:"note"`
	SyncStatus string         `gorm:"size:16;not null" json:"sync_status"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// IsTransferLeg reports whether t is one half of a transfer.
func (t *Transaction) IsTransferLeg() bool {
	return t.TransferID != nil && *t.TransferID != ""
}

// ValidTransactionType reports whether t is income or expense.
func ValidTransactionType(t string) bool {
	return t == TypeExpense || t == TypeIncome
}
