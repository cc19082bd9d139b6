package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"money-tracking/internal/models"
	"money-tracking/internal/util"

	"gorm.io/gorm"
)

const defaultTransferNote = "Transfer"

// TransferInput moves Amount from one account to another.
type TransferInput struct {
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	Amount        int64  `json:"amount"`
	Note          string `json:"note"`
}

// RecordTransfer writes the two legs of a transfer atomically and returns
// the shared transfer id. The source balance is not checked: a transfer may
// take the source account negative.
func (s *Service) RecordTransfer(ctx context.Context, in TransferInput) (string, error) {
	if err := util.ValidateAmount(in.Amount); err != nil {
		return "", invalid("%v", err)
	}
	if in.FromAccountID == "" || in.ToAccountID == "" {
		return "", fmt.Errorf("%w: both accounts are required", ErrInvalidTransfer)
	}
	if in.FromAccountID == in.ToAccountID {
		return "", fmt.Errorf("%w: source and destination are the same account", ErrInvalidTransfer)
	}
	note := strings.TrimSpace(in.Note)
	if note == "" {
		note = defaultTransferNote
	}
	if utf8.RuneCountInString(note) > maxNoteLen {
		return "", invalid("note too long, max %d characters", maxNoteLen)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	transferID := util.NewID()
	err := s.withTx(ctx, "record transfer", func(tx *gorm.DB) error {
		for _, id := range []string{in.FromAccountID, in.ToAccountID} {
			if _, err := findAccount(tx, id); err != nil {
				if errors.Is(err, ErrNotFound) {
					return fmt.Errorf("%w: unknown account %s", ErrInvalidTransfer, id)
				}
				return err
			}
		}

		now := s.clock()
		legs := []models.Transaction{
			transferLeg(transferID, models.TypeExpense, in.FromAccountID, in.Amount, note, now),
			transferLeg(transferID, models.TypeIncome, in.ToAccountID, in.Amount, note, now),
		}
		return tx.Create(&legs).Error
	})
	if err != nil {
		return "", err
	}
	return transferID, nil
}

func transferLeg(transferID, typ, accountID string, amount int64, note string, now time.Time) models.Transaction {
	cat := models.TransferCategoryID
	return models.Transaction{
		ID:         util.NewID(),
		Type:       typ,
		Amount:     amount,
		CategoryID: &cat,
		AccountID:  &accountID,
		TransferID: &transferID,
		Note:       note,
		SyncStatus: models.SyncPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Transfer returns both legs of a transfer, expense leg first.
func (s *Service) Transfer(ctx context.Context, transferID string) ([]models.Transaction, error) {
	var legs []models.Transaction
	if err := s.read(ctx).Where("transfer_id = ?", transferID).Find(&legs).Error; err != nil {
		return nil, storage("load transfer", err)
	}
	if len(legs) == 0 {
		return nil, fmt.Errorf("transfer %s: %w", transferID, ErrNotFound)
	}
	sort.Slice(legs, func(i, j int) bool { return legs[i].Type == models.TypeExpense && legs[j].Type != models.TypeExpense })
	return legs, nil
}
