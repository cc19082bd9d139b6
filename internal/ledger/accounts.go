package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"money-tracking/internal/balance"
	"money-tracking/internal/models"
	"money-tracking/internal/util"

	"gorm.io/gorm"
)

// AccountInput describes a custom account.
type AccountInput struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	Icon           string `json:"icon"`
	InitialBalance int64  `json:"initial_balance"`
}

// AccountView is an account with its derived balance.
type AccountView struct {
	models.Account
	Balance int64 `json:"balance"`
}

func (in *AccountInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if err := util.ValidateName(in.Name, 64); err != nil {
		return invalid("account %v", err)
	}
	if !models.ValidAccountType(in.Type) {
		return invalid("unknown account type %q", in.Type)
	}
	if in.InitialBalance <= -util.MaxAmount || in.InitialBalance >= util.MaxAmount {
		return invalid("initial balance out of range")
	}
	return nil
}

// CreateAccount adds a custom account. Custom accounts are capped.
func (s *Service) CreateAccount(ctx context.Context, in AccountInput) (*models.Account, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	acc := models.Account{
		ID:             util.NewID(),
		Name:           in.Name,
		Type:           in.Type,
		Icon:           in.Icon,
		InitialBalance: in.InitialBalance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err := s.withTx(ctx, "create account", func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Account{}).Where("is_default = ?", false).Count(&n).Error; err != nil {
			return storage("count accounts", err)
		}
		if n >= int64(s.limits.MaxCustomAccounts) {
			return fmt.Errorf("%w: at most %d custom accounts", ErrLimitReached, s.limits.MaxCustomAccounts)
		}
		return tx.Create(&acc).Error
	})
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// UpdateAccount renames an account or changes its icon.
func (s *Service) UpdateAccount(ctx context.Context, id, name, icon string) (*models.Account, error) {
	name = strings.TrimSpace(name)
	if err := util.ValidateName(name, 64); err != nil {
		return nil, invalid("account %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var acc models.Account
	err := s.withTx(ctx, "update account", func(tx *gorm.DB) error {
		a, err := findAccount(tx, id)
		if err != nil {
			return err
		}
		acc = *a
		acc.Name, acc.Icon, acc.UpdatedAt = name, icon, s.clock()
		return tx.Model(&acc).Select("name", "icon", "updated_at").Updates(&acc).Error
	})
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// DeleteAccount soft-deletes a custom account. Its transactions stay in place.
func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, "delete account", func(tx *gorm.DB) error {
		acc, err := findAccount(tx, id)
		if err != nil {
			return err
		}
		if acc.IsDefault {
			return fmt.Errorf("%w: default account %s", ErrProtected, acc.Name)
		}
		return tx.Delete(acc).Error
	})
}

// ListAccounts returns every live account with its derived balance.
func (s *Service) ListAccounts(ctx context.Context) ([]AccountView, error) {
	db := s.read(ctx)
	var accounts []models.Account
	if err := db.Order("is_default DESC, created_at ASC, id ASC").Find(&accounts).Error; err != nil {
		return nil, storage("list accounts", err)
	}
	txs, err := accountTransactions(db, "")
	if err != nil {
		return nil, err
	}
	balances := balance.Balances(accounts, txs)

	out := make([]AccountView, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, AccountView{Account: a, Balance: balances[a.ID]})
	}
	return out, nil
}

// AccountBalance derives the current balance of one account.
func (s *Service) AccountBalance(ctx context.Context, id string) (int64, error) {
	db := s.read(ctx)
	acc, err := findAccount(db, id)
	if err != nil {
		return 0, err
	}
	return accountBalance(db, acc)
}

// NetWorth sums the balances of all live accounts.
func (s *Service) NetWorth(ctx context.Context) (int64, error) {
	db := s.read(ctx)
	var accounts []models.Account
	if err := db.Find(&accounts).Error; err != nil {
		return 0, storage("list accounts", err)
	}
	txs, err := accountTransactions(db, "")
	if err != nil {
		return 0, err
	}
	return balance.NetWorth(accounts, txs), nil
}

func findAccount(db *gorm.DB, id string) (*models.Account, error) {
	if id == "" {
		return nil, invalid("account id is required")
	}
	var acc models.Account
	err := db.Where("id = ?", id).First(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("account %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, storage("find account", err)
	}
	return &acc, nil
}

// accountTransactions loads the live transactions that carry an account,
// restricted to accountID when it is not empty.
func accountTransactions(db *gorm.DB, accountID string) ([]models.Transaction, error) {
	q := db.Model(&models.Transaction{}).
		Select("id", "type", "amount", "account_id", "transfer_id")
	if accountID != "" {
		q = q.Where("account_id = ?", accountID)
	} else {
		q = q.Where("account_id IS NOT NULL")
	}
	var txs []models.Transaction
	if err := q.Find(&txs).Error; err != nil {
		return nil, storage("load transactions", err)
	}
	return txs, nil
}

func accountBalance(db *gorm.DB, acc *models.Account) (int64, error) {
	txs, err := accountTransactions(db, acc.ID)
	if err != nil {
		return 0, err
	}
	return balance.Account(*acc, txs), nil
}
