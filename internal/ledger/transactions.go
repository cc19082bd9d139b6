package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"money-tracking/internal/balance"
	"money-tracking/internal/models"
	"money-tracking/internal/util"

	"gorm.io/gorm"
)

const maxNoteLen = 255

// TransactionInput is a single expense or income. A nil AccountID records a
// movement that is not assigned to any account.
type TransactionInput struct {
	Type       string  `json:"type"`
	Amount     int64   `json:"amount"`
	CategoryID *string `json:"category_id"`
	AccountID  *string `json:"account_id"`
	Note       string  `json:"note"`
}

func (in *TransactionInput) validate() error {
	if !models.ValidTransactionType(in.Type) {
		return invalid("unknown transaction type %q", in.Type)
	}
	if err := util.ValidateAmount(in.Amount); err != nil {
		return invalid("%v", err)
	}
	if utf8.RuneCountInString(in.Note) > maxNoteLen {
		return invalid("note too long, max %d characters", maxNoteLen)
	}
	if in.AccountID != nil && *in.AccountID == "" {
		in.AccountID = nil
	}
	return nil
}

// RecordTransaction validates and inserts one movement and returns its id.
// An expense on an account fails with ErrInsufficientBalance when it would
// take the derived balance below zero; the check and the insert share one
// transaction.
func (s *Service) RecordTransaction(ctx context.Context, in TransactionInput) (string, error) {
	if err := in.validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	t := models.Transaction{
		ID:         util.NewID(),
		Type:       in.Type,
		Amount:     in.Amount,
		AccountID:  in.AccountID,
		Note:       in.Note,
		SyncStatus: models.SyncPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err := s.withTx(ctx, "record transaction", func(tx *gorm.DB) error {
		cat, err := resolveCategory(tx, in.Type, in.CategoryID)
		if err != nil {
			return err
		}
		t.CategoryID = cat

		if in.AccountID != nil {
			acc, err := findAccount(tx, *in.AccountID)
			if errors.Is(err, ErrNotFound) {
				return invalid("unknown account %s", *in.AccountID)
			}
			if err != nil {
				return err
			}
			if in.Type == models.TypeExpense {
				current, err := accountBalance(tx, acc)
				if err != nil {
					return err
				}
				if current < in.Amount {
					return fmt.Errorf("%w: account %s has %d, needs %d",
						ErrInsufficientBalance, acc.Name, current, in.Amount)
				}
			}
		}
		return tx.Create(&t).Error
	})
	if err != nil {
		return "", err
	}
	return t.ID, nil
}

// DeleteTransaction soft-deletes a transaction. Deleting one leg of a
// transfer deletes the pair. Deleting an already deleted row is a no-op.
func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, "delete transaction", func(tx *gorm.DB) error {
		var t models.Transaction
		err := tx.Unscoped().Where("id = ?", id).First(&t).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
		}
		if err != nil {
			return storage("find transaction", err)
		}
		if t.DeletedAt.Valid {
			return nil
		}

		q := tx.Model(&models.Transaction{})
		if t.IsTransferLeg() {
			q = q.Where("transfer_id = ?", *t.TransferID)
		} else {
			q = q.Where("id = ?", t.ID)
		}
		now := s.clock()
		return q.Updates(map[string]any{
			"deleted_at":  now,
			"updated_at":  now,
			"sync_status": models.SyncPending,
		}).Error
	})
}

// TransactionFilter narrows ListTransactions. Zero values mean no filter.
type TransactionFilter struct {
	AccountID  string
	Type       string
	CategoryID string
	From       time.Time // inclusive
	To         time.Time // exclusive
	Limit      int
	Offset     int
}

// TransactionView is a feed row.
type TransactionView struct {
	models.Transaction
	CategoryName string `json:"category_name"`
	AccountName  string `json:"account_name"`
	// Label is "<from> → <to>" for transfer legs.
	Label string `json:"label,omitempty"`
}

// ListTransactions returns the feed, newest first. Without an account filter
// the income leg of every transfer is suppressed and the expense leg stands
// for the pair; with one, every leg on that account is listed.
func (s *Service) ListTransactions(ctx context.Context, f TransactionFilter) ([]TransactionView, error) {
	db := s.read(ctx)
	q := db.Model(&models.Transaction{})
	if f.AccountID != "" {
		q = q.Where("account_id = ?", f.AccountID)
	} else {
		q = q.Where("NOT (transfer_id IS NOT NULL AND type = ?)", models.TypeIncome)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.CategoryID != "" {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	q = timeWindow(q, f.From, f.To)
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	var txs []models.Transaction
	if err := q.Order("created_at DESC, id DESC").Find(&txs).Error; err != nil {
		return nil, storage("list transactions", err)
	}
	if len(txs) == 0 {
		return []TransactionView{}, nil
	}

	names, err := s.lookupNames(db, txs)
	if err != nil {
		return nil, err
	}
	out := make([]TransactionView, 0, len(txs))
	for _, t := range txs {
		v := TransactionView{Transaction: t}
		if t.CategoryID != nil {
			v.CategoryName = names.categories[*t.CategoryID]
		}
		if t.AccountID != nil {
			v.AccountName = names.accounts[*t.AccountID]
		}
		if t.IsTransferLeg() {
			if pair, ok := names.transfers[*t.TransferID]; ok {
				v.Label = names.accounts[pair.from] + " → " + names.accounts[pair.to]
			}
		}
		out = append(out, v)
	}
	return out, nil
}

type transferPair struct{ from, to string }

type feedNames struct {
	accounts   map[string]string
	categories map[string]string
	transfers  map[string]transferPair
}

// lookupNames resolves account and category names for a page of the feed.
// Deleted accounts and categories keep their names in history.
func (s *Service) lookupNames(db *gorm.DB, txs []models.Transaction) (*feedNames, error) {
	names := &feedNames{
		accounts:   map[string]string{},
		categories: map[string]string{},
		transfers:  map[string]transferPair{},
	}

	var transferIDs []string
	for _, t := range txs {
		if t.IsTransferLeg() {
			transferIDs = append(transferIDs, *t.TransferID)
		}
	}
	if len(transferIDs) > 0 {
		var legs []models.Transaction
		if err := db.Unscoped().Select("type", "account_id", "transfer_id").
			Where("transfer_id IN ?", transferIDs).Find(&legs).Error; err != nil {
			return nil, storage("load transfer legs", err)
		}
		for _, l := range legs {
			if l.AccountID == nil {
				continue
			}
			p := names.transfers[*l.TransferID]
			if l.Type == models.TypeExpense {
				p.from = *l.AccountID
			} else {
				p.to = *l.AccountID
			}
			names.transfers[*l.TransferID] = p
		}
	}

	var accounts []models.Account
	if err := db.Unscoped().Select("id", "name").Find(&accounts).Error; err != nil {
		return nil, storage("load account names", err)
	}
	for _, a := range accounts {
		names.accounts[a.ID] = a.Name
	}
	var cats []models.Category
	if err := db.Unscoped().Select("id", "name").Find(&cats).Error; err != nil {
		return nil, storage("load category names", err)
	}
	for _, c := range cats {
		names.categories[c.ID] = c.Name
	}
	return names, nil
}

// Totals sums income and expense in [from, to), transfers excluded.
func (s *Service) Totals(ctx context.Context, from, to time.Time) (balance.Totals, error) {
	var txs []models.Transaction
	q := timeWindow(s.read(ctx).Model(&models.Transaction{}), from, to)
	if err := q.Select("id", "type", "amount", "transfer_id").Find(&txs).Error; err != nil {
		return balance.Totals{}, storage("load totals", err)
	}
	return balance.Aggregate(txs), nil
}

func timeWindow(q *gorm.DB, from, to time.Time) *gorm.DB {
	if !from.IsZero() {
		q = q.Where("created_at >= ?", from.UTC())
	}
	if !to.IsZero() {
		q = q.Where("created_at < ?", to.UTC())
	}
	return q
}
