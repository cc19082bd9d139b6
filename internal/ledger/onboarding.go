package ledger

import (
	"context"
	"strings"

	"money-tracking/internal/database"
	"money-tracking/internal/models"
	"money-tracking/internal/util"

	"github.com/Rhymond/go-money"
	"gorm.io/gorm"
)

// OnboardInput carries the first-run choices.
type OnboardInput struct {
	BankInitial int64  `json:"bank_initial"`
	CashInitial int64  `json:"cash_initial"`
	Currency    string `json:"currency"`
}

// Onboard creates the default bank and cash accounts, the default category
// catalog and the initial settings. It runs once per install.
func (s *Service) Onboard(ctx context.Context, in OnboardInput) error {
	code := strings.ToUpper(strings.TrimSpace(in.Currency))
	if code == "" {
		code = s.limits.DefaultCurrency
	}
	if money.GetCurrency(code) == nil {
		return invalid("unknown currency %q", code)
	}
	for _, v := range []int64{in.BankInitial, in.CashInitial} {
		if v <= -util.MaxAmount || v >= util.MaxAmount {
			return invalid("initial balance out of range")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	return s.withTx(ctx, "onboard", func(tx *gorm.DB) error {
		done, _, err := getSetting(tx, models.SettingOnboardingCompleted)
		if err != nil {
			return err
		}
		if done == "true" {
			return invalid("onboarding already completed")
		}

		accounts := []models.Account{
			{ID: util.NewID(), Name: "Bank", Type: models.AccountBank, Icon: "bank",
				InitialBalance: in.BankInitial, IsDefault: true, CreatedAt: now, UpdatedAt: now},
			{ID: util.NewID(), Name: "Cash", Type: models.AccountCash, Icon: "wallet",
				InitialBalance: in.CashInitial, IsDefault: true, CreatedAt: now, UpdatedAt: now},
		}
		if err := tx.Create(&accounts).Error; err != nil {
			return err
		}

		cats := make([]models.Category, 0, len(database.DefaultCategoryCatalog))
		for _, c := range database.DefaultCategoryCatalog {
			c.ID = util.NewID()
			c.IsDefault = true
			c.CategoryType = models.CategoryExpense
			c.SyncStatus = models.SyncPending
			c.CreatedAt = now
			cats = append(cats, c)
		}
		if err := tx.Create(&cats).Error; err != nil {
			return err
		}
		if err := database.Seed(tx); err != nil {
			return err
		}

		if err := putSetting(tx, models.SettingCurrency, code, now); err != nil {
			return err
		}
		return putSetting(tx, models.SettingOnboardingCompleted, "true", now)
	})
}

// Onboarded reports whether Onboard has completed.
func (s *Service) Onboarded(ctx context.Context) (bool, error) {
	v, _, err := getSetting(s.read(ctx), models.SettingOnboardingCompleted)
	if err != nil {
		return false, err
	}
	return v == "true", nil
}
