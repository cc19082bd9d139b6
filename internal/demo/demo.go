// Package demo fills a ledger with plausible fake activity for local trials.
package demo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"money-tracking/internal/ledger"
	"money-tracking/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options controls the generated history. A zero Seed picks a random one.
type Options struct {
	Seed     int64
	Days     int
	PerDay   int
	End      time.Time
	Currency string
	Options  []ledger.Option
}

// Summary counts what was written.
type Summary struct {
	Transactions   int `json:"transactions"`
	Transfers      int `json:"transfers"`
	Planifications int `json:"planifications"`
	Skipped        int `json:"skipped"`
}

// Run writes Days days of activity ending at End. The ledger is onboarded
// first when it was not. Expenses the account cannot cover are skipped.
func Run(ctx context.Context, db *gorm.DB, opts Options) (Summary, error) {
	var sum Summary
	if opts.Days <= 0 {
		opts.Days = 30
	}
	if opts.PerDay <= 0 {
		opts.PerDay = 3
	}
	if opts.End.IsZero() {
		opts.End = time.Now().UTC()
	}

	faker := gofakeit.New(opts.Seed)
	now := opts.End.AddDate(0, 0, -opts.Days)
	clock := func() time.Time { return now }
	svc := ledger.New(db, append(opts.Options, ledger.WithClock(clock))...)

	done, err := svc.Onboarded(ctx)
	if err != nil {
		return sum, err
	}
	if !done {
		err := svc.Onboard(ctx, ledger.OnboardInput{
			BankInitial: int64(faker.Number(200_000, 800_000)),
			CashInitial: int64(faker.Number(5_000, 30_000)),
			Currency:    opts.Currency,
		})
		if err != nil {
			return sum, fmt.Errorf("onboard: %w", err)
		}
	}

	accounts, err := svc.ListAccounts(ctx)
	if err != nil {
		return sum, err
	}
	cats, err := svc.ListCategories(ctx, models.CategoryExpense)
	if err != nil {
		return sum, err
	}
	if len(accounts) == 0 {
		return sum, errors.New("demo: no accounts")
	}

	pickAccount := func() *string {
		id := accounts[faker.Number(0, len(accounts)-1)].ID
		return &id
	}
	pickCategory := func() *string {
		if len(cats) == 0 {
			return nil
		}
		id := cats[faker.Number(0, len(cats)-1)].ID
		return &id
	}

	for day := 0; day < opts.Days; day++ {
		for i := 0; i < opts.PerDay; i++ {
			now = now.Add(time.Duration(faker.Number(20, 300)) * time.Minute)

			var err error
			switch r := faker.Number(1, 20); {
			case r == 1 && len(accounts) > 1:
				from := faker.Number(0, len(accounts)-1)
				to := (from + 1) % len(accounts)
				_, err = svc.RecordTransfer(ctx, ledger.TransferInput{
					FromAccountID: accounts[from].ID,
					ToAccountID:   accounts[to].ID,
					Amount:        int64(faker.Number(1_000, 20_000)),
				})
				if err == nil {
					sum.Transfers++
				}
			case r <= 3:
				_, err = svc.RecordTransaction(ctx, ledger.TransactionInput{
					Type:      models.TypeIncome,
					Amount:    int64(faker.Number(10_000, 150_000)),
					AccountID: pickAccount(),
					Note:      faker.BuzzWord(),
				})
				if err == nil {
					sum.Transactions++
				}
			default:
				_, err = svc.RecordTransaction(ctx, ledger.TransactionInput{
					Type:       models.TypeExpense,
					Amount:     int64(faker.Number(100, 8_000)),
					CategoryID: pickCategory(),
					AccountID:  pickAccount(),
					Note:       faker.Word(),
				})
				if err == nil {
					sum.Transactions++
				}
			}
			if errors.Is(err, ledger.ErrInsufficientBalance) {
				sum.Skipped++
				continue
			}
			if err != nil {
				return sum, err
			}
		}
		now = time.Date(now.Year(), now.Month(), now.Day(), 8, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	}

	deadline := opts.End.AddDate(0, 0, faker.Number(3, 21))
	p, err := svc.CreatePlanification(ctx, faker.Noun()+" plan", &deadline)
	if err != nil {
		return sum, err
	}
	for i := 0; i < faker.Number(2, 5); i++ {
		if _, err := svc.AddItem(ctx, p.ID, ledger.ItemInput{
			Type:       models.TypeExpense,
			Amount:     int64(faker.Number(500, 10_000)),
			CategoryID: pickCategory(),
			Note:       faker.Word(),
		}); err != nil {
			return sum, err
		}
	}
	sum.Planifications++
	return sum, nil
}
