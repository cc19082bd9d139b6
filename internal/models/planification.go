package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	PlanificationPending   = "pending"
	PlanificationCompleted = "completed"
)

// Planification is a named draft of future expenses and income.
// Status only ever moves from pending to completed.
type Planification struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`
	Title     string     `gorm:"size:128;not null" json:"title"`
	Status    string     `gorm:"size:16;index;not null" json:"status"`
	Deadline  *time.Time `json:"deadline"`
	// ExpiryNotifiedAt is set once the expiry notification went out for the
	// current deadline, so the sweep fires once per expiry transition.
	ExpiryNotifiedAt *time.Time          `json:"expiry_notified_at,omitempty"`
	Items            []PlanificationItem `gorm:"foreignKey:PlanificationID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
	DeletedAt        gorm.DeletedAt      `gorm:"index" json:"deleted_at,omitempty"`
}

// IsExpired reports whether a pending planification is past its deadline.
func (p *Planification) IsExpired(now time.Time) bool {
	return p.Status == PlanificationPending && p.Deadline != nil && p.Deadline.Before(now)
}

// PlanificationItem is one line of a plan. Items are hard-deleted.
type PlanificationItem struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	PlanificationID string    `gorm:"size:36;index;not null" json:"planification_id"`
	Amount          int64     `gorm:"not null" json:"amount"`
	Type            string    `gorm:"size:16;not null" json:"type"`
	CategoryID      *string   `gorm:"size:36" json:"category_id"`
	Note            string    `gorm:"size:255" json:"note"`
	CreatedAt       time.Time `json:"created_at"`
}
