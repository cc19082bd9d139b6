package ledger

import (
	"context"
	"fmt"
	"testing"

	"money-tracking/internal/config"
	"money-tracking/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnboard(t *testing.T) {
	f := newFixture(t, 150000, 3000)
	ctx := context.Background()

	accounts, err := f.svc.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	for _, a := range accounts {
		assert.True(t, a.IsDefault)
	}
	assert.Equal(t, int64(150000), f.balance(t, f.bank))
	assert.Equal(t, int64(3000), f.balance(t, f.cash))

	cats, err := f.svc.ListCategories(ctx, models.CategoryExpense)
	require.NoError(t, err)
	assert.Len(t, cats, 8)

	done, err := f.svc.Onboarded(ctx)
	require.NoError(t, err)
	assert.True(t, done)

	err = f.svc.Onboard(ctx, OnboardInput{Currency: "USD"})
	assert.ErrorIs(t, err, ErrValidation)
	accounts, err = f.svc.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
}

func TestOnboardRejectsUnknownCurrency(t *testing.T) {
	svc := New(setupTestDB(t))
	err := svc.Onboard(context.Background(), OnboardInput{Currency: "ABC"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCustomAccountCap(t *testing.T) {
	f := newFixture(t, 0, 0, WithLimits(config.LedgerConfig{MaxCustomAccounts: 2, MaxCustomCategories: 1, DefaultCurrency: "USD"}))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := f.svc.CreateAccount(ctx, AccountInput{Name: fmt.Sprintf("Savings %d", i), Type: models.AccountBank})
		require.NoError(t, err)
	}
	_, err := f.svc.CreateAccount(ctx, AccountInput{Name: "One too many", Type: models.AccountCash})
	require.ErrorIs(t, err, ErrLimitReached)
	assert.Equal(t, KindLimitReached, KindOf(err))
}

func TestAccountLifecycle(t *testing.T) {
	f := newFixture(t, 1000, 0)
	ctx := context.Background()

	acc, err := f.svc.CreateAccount(ctx, AccountInput{Name: "  Wallet ", Type: models.AccountCash, InitialBalance: 700})
	require.NoError(t, err)
	assert.Equal(t, "Wallet", acc.Name)
	assert.False(t, acc.IsDefault)

	f.expense(t, acc.ID, 200)
	assert.Equal(t, int64(500), f.balance(t, acc.ID))

	worth, err := f.svc.NetWorth(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), worth)

	updated, err := f.svc.UpdateAccount(ctx, acc.ID, "Pocket", "coins")
	require.NoError(t, err)
	assert.Equal(t, "Pocket", updated.Name)

	require.NoError(t, f.svc.DeleteAccount(ctx, acc.ID))
	_, err = f.svc.AccountBalance(ctx, acc.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	worth, err = f.svc.NetWorth(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), worth)

	// history of the deleted account survives
	var n int64
	require.NoError(t, f.db.Model(&models.Transaction{}).Where("account_id = ?", acc.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestDefaultAccountsAreProtected(t *testing.T) {
	f := newFixture(t, 0, 0)
	err := f.svc.DeleteAccount(context.Background(), f.bank)
	require.ErrorIs(t, err, ErrProtected)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateAccountValidation(t *testing.T) {
	f := newFixture(t, 0, 0)
	ctx := context.Background()

	_, err := f.svc.CreateAccount(ctx, AccountInput{Name: "", Type: models.AccountBank})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.CreateAccount(ctx, AccountInput{Name: "Crypto", Type: "wallet"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCategories(t *testing.T) {
	f := newFixture(t, 0, 0, WithLimits(config.LedgerConfig{MaxCustomAccounts: 1, MaxCustomCategories: 1, DefaultCurrency: "USD"}))
	ctx := context.Background()

	cat, err := f.svc.CreateCategory(ctx, CategoryInput{Name: "Pets", Icon: "paw", Color: "#123456"})
	require.NoError(t, err)
	assert.Equal(t, models.CategoryExpense, cat.CategoryType)

	_, err = f.svc.CreateCategory(ctx, CategoryInput{Name: "Garden"})
	assert.ErrorIs(t, err, ErrLimitReached)

	updated, err := f.svc.UpdateCategory(ctx, cat.ID, CategoryInput{Name: "Animals", Icon: "paw"})
	require.NoError(t, err)
	assert.Equal(t, "Animals", updated.Name)

	_, err = f.svc.UpdateCategory(ctx, models.IncomeCategoryID, CategoryInput{Name: "Salary"})
	assert.ErrorIs(t, err, ErrProtected)
	assert.ErrorIs(t, f.svc.DeleteCategory(ctx, models.TransferCategoryID), ErrProtected)

	defaults, err := f.svc.ListCategories(ctx, models.CategoryExpense)
	require.NoError(t, err)
	for _, c := range defaults {
		if c.IsDefault {
			assert.ErrorIs(t, f.svc.DeleteCategory(ctx, c.ID), ErrProtected)
			break
		}
	}

	require.NoError(t, f.svc.DeleteCategory(ctx, cat.ID))
	assert.ErrorIs(t, f.svc.DeleteCategory(ctx, cat.ID), ErrNotFound)

	// a deleted custom category frees its slot
	_, err = f.svc.CreateCategory(ctx, CategoryInput{Name: "Garden"})
	require.NoError(t, err)
}

func TestSettings(t *testing.T) {
	f := newFixture(t, 0, 0)
	ctx := context.Background()

	require.NoError(t, f.svc.SetSetting(ctx, models.SettingTheme, "dark"))
	require.NoError(t, f.svc.SetSetting(ctx, models.SettingTheme, "light"))
	v, err := f.svc.GetSetting(ctx, models.SettingTheme)
	require.NoError(t, err)
	assert.Equal(t, "light", v)

	_, err = f.svc.GetSetting(ctx, models.SettingTipIndex)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, f.svc.SetSetting(ctx, models.SettingCurrency, "EUR"), ErrProtected)
	assert.ErrorIs(t, f.svc.SetSetting(ctx, "", "x"), ErrValidation)

	all, err := f.svc.AllSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "USD", all[models.SettingCurrency])
	assert.Equal(t, "true", all[models.SettingOnboardingCompleted])
	assert.Equal(t, "light", all[models.SettingTheme])
}
