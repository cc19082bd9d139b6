package database

import (
	"time"

	"money-tracking/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SystemCategories are the two singleton categories with well-known ids.
func SystemCategories(now time.Time) []models.Category {
	return []models.Category{
		{
			ID:           models.IncomeCategoryID,
			Name:         "Income",
			Icon:         "cash-plus",
			Color:        "#2E7D32",
			IsDefault:    true,
			CategoryType: models.CategoryIncome,
			SyncStatus:   models.SyncPending,
			CreatedAt:    now,
		},
		{
			ID:           models.TransferCategoryID,
			Name:         "Transfer",
			Icon:         "swap-horizontal",
			Color:        "#546E7A",
			IsDefault:    true,
			CategoryType: models.CategoryTransfer,
			SyncStatus:   models.SyncPending,
			CreatedAt:    now,
		},
	}
}

// DefaultCategoryCatalog is the expense catalog seeded at onboarding.
// Ids are assigned by the caller.
var DefaultCategoryCatalog = []models.Category{
	{Name: "Food", Icon: "food", Color: "#EF6C00"},
	{Name: "Transport", Icon: "bus", Color: "#1565C0"},
	{Name: "Shopping", Icon: "cart", Color: "#AD1457"},
	{Name: "Bills", Icon: "file-document", Color: "#6A1B9A"},
	{Name: "Health", Icon: "medical-bag", Color: "#C62828"},
	{Name: "Leisure", Icon: "gamepad-variant", Color: "#00838F"},
	{Name: "Education", Icon: "school", Color: "#4E342E"},
	{Name: "Other", Icon: "dots-horizontal", Color: "#757575"},
}

// seedSystemCategories inserts the system categories, leaving existing rows alone.
func seedSystemCategories(tx *gorm.DB) error {
	cats := SystemCategories(time.Now().UTC())
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&cats).Error
}

// Seed makes sure the system categories exist. It is safe to call on every
// start, including on stores whose migrations already ran.
func Seed(db *gorm.DB) error {
	return seedSystemCategories(db)
}
