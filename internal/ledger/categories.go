package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"money-tracking/internal/models"
	"money-tracking/internal/util"

	"gorm.io/gorm"
)

// CategoryInput describes a user category.
type CategoryInput struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// ListCategories returns live categories, optionally of one type.
func (s *Service) ListCategories(ctx context.Context, categoryType string) ([]models.Category, error) {
	q := s.read(ctx).Order("is_default DESC, name ASC")
	if categoryType != "" {
		q = q.Where("category_type = ?", categoryType)
	}
	var cats []models.Category
	if err := q.Find(&cats).Error; err != nil {
		return nil, storage("list categories", err)
	}
	return cats, nil
}

// CreateCategory adds a custom expense category. Custom categories are capped.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := util.ValidateName(in.Name, 64); err != nil {
		return nil, invalid("category %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cat := models.Category{
		ID:           util.NewID(),
		Name:         in.Name,
		Icon:         in.Icon,
		Color:        in.Color,
		CategoryType: models.CategoryExpense,
		SyncStatus:   models.SyncPending,
		CreatedAt:    s.clock(),
	}
	err := s.withTx(ctx, "create category", func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Category{}).Where("is_default = ?", false).Count(&n).Error; err != nil {
			return storage("count categories", err)
		}
		if n >= int64(s.limits.MaxCustomCategories) {
			return fmt.Errorf("%w: at most %d custom categories", ErrLimitReached, s.limits.MaxCustomCategories)
		}
		return tx.Create(&cat).Error
	})
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// UpdateCategory changes the presentation of a category. System categories
// are read-only.
func (s *Service) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := util.ValidateName(in.Name, 64); err != nil {
		return nil, invalid("category %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var cat models.Category
	err := s.withTx(ctx, "update category", func(tx *gorm.DB) error {
		c, err := findCategory(tx, id)
		if err != nil {
			return err
		}
		if c.IsSystem() {
			return fmt.Errorf("%w: system category %s", ErrProtected, c.ID)
		}
		cat = *c
		cat.Name, cat.Icon, cat.Color, cat.SyncStatus = in.Name, in.Icon, in.Color, models.SyncPending
		return tx.Model(&cat).Select("name", "icon", "color", "sync_status").Updates(&cat).Error
	})
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// DeleteCategory soft-deletes a custom category.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, "delete category", func(tx *gorm.DB) error {
		c, err := findCategory(tx, id)
		if err != nil {
			return err
		}
		if c.IsSystem() || c.IsDefault {
			return fmt.Errorf("%w: default category %s", ErrProtected, c.Name)
		}
		return tx.Delete(c).Error
	})
}

func findCategory(db *gorm.DB, id string) (*models.Category, error) {
	var cat models.Category
	err := db.Where("id = ?", id).First(&cat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, storage("find category", err)
	}
	return &cat, nil
}

// resolveCategory returns the category id a movement of type typ is stored
// with. Income always uses the system income category; expenses keep the
// caller's choice, which must be a live non-system category.
func resolveCategory(db *gorm.DB, typ string, categoryID *string) (*string, error) {
	if typ == models.TypeIncome {
		id := models.IncomeCategoryID
		return &id, nil
	}
	if categoryID == nil || *categoryID == "" {
		return nil, nil
	}
	cat, err := findCategory(db, *categoryID)
	if errors.Is(err, ErrNotFound) {
		return nil, invalid("unknown category %s", *categoryID)
	}
	if err != nil {
		return nil, err
	}
	if cat.IsSystem() {
		return nil, invalid("category %s cannot be used for expenses", cat.ID)
	}
	id := cat.ID
	return &id, nil
}
