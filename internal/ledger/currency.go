package ledger

import (
	"context"
	"strings"

	"money-tracking/internal/models"
	"money-tracking/internal/util"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Rescale multiplies cents by rate and rounds to the nearest cent, halves
// away from zero. The result is not range checked.
func Rescale(cents int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(cents).Mul(rate).Round(0).IntPart()
}

type amountRow struct {
	ID     string
	Amount int64
}

// ConvertAll re-denominates the ledger: live account initial balances, live
// transaction amounts and every planification item are rescaled by rate in a
// single transaction.
func (s *Service) ConvertAll(ctx context.Context, rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return invalid("rate must be positive, got %s", rate)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, "convert amounts", func(tx *gorm.DB) error {
		return convertAll(tx, rate)
	})
}

// ChangeCurrency re-denominates the ledger into code and records code as the
// working currency, both in one transaction. Switching to the current
// currency is a no-op.
func (s *Service) ChangeCurrency(ctx context.Context, code string, rate decimal.Decimal) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if money.GetCurrency(code) == nil {
		return invalid("unknown currency %q", code)
	}
	if !rate.IsPositive() {
		return invalid("rate must be positive, got %s", rate)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, "change currency", func(tx *gorm.DB) error {
		current, err := s.currency(tx)
		if err != nil {
			return err
		}
		if current == code {
			return nil
		}
		if err := convertAll(tx, rate); err != nil {
			return err
		}
		return putSetting(tx, models.SettingCurrency, code, s.clock())
	})
}

// Currency returns the working currency code.
func (s *Service) Currency(ctx context.Context) (string, error) {
	return s.currency(s.read(ctx))
}

func (s *Service) currency(db *gorm.DB) (string, error) {
	v, ok, err := getSetting(db, models.SettingCurrency)
	if err != nil {
		return "", err
	}
	if !ok || v == "" {
		return s.limits.DefaultCurrency, nil
	}
	return v, nil
}

// rescaleBatch bounds the rows rewritten by one UPDATE.
const rescaleBatch = 200

func convertAll(tx *gorm.DB, rate decimal.Decimal) error {
	if err := rescaleColumn(tx, &models.Account{}, "initial_balance", rate, nil); err != nil {
		return err
	}
	if err := rescaleColumn(tx, &models.Transaction{}, "amount", rate,
		map[string]any{"sync_status": models.SyncPending}); err != nil {
		return err
	}
	return rescaleColumn(tx, &models.PlanificationItem{}, "amount", rate, nil)
}

// rescaleColumn rewrites column on every live row of model, a batch of rows
// per UPDATE through a CASE on the id. A result outside the amount range
// fails the whole sweep.
func rescaleColumn(tx *gorm.DB, model any, column string, rate decimal.Decimal, extra map[string]any) error {
	var rows []amountRow
	if err := tx.Model(model).Select("id", column+" AS amount").Find(&rows).Error; err != nil {
		return err
	}
	for start := 0; start < len(rows); start += rescaleBatch {
		batch := rows[start:min(start+rescaleBatch, len(rows))]

		var expr strings.Builder
		expr.WriteString("CASE id")
		args := make([]any, 0, 2*len(batch))
		ids := make([]string, 0, len(batch))
		for _, r := range batch {
			v, ok := rescaleChecked(r.Amount, rate)
			if !ok {
				return invalid("%s %d of %s is out of range at rate %s", column, r.Amount, r.ID, rate)
			}
			expr.WriteString(" WHEN ? THEN CAST(? AS BIGINT)")
			args = append(args, r.ID, v)
			ids = append(ids, r.ID)
		}
		expr.WriteString(" END")

		updates := map[string]any{column: gorm.Expr(expr.String(), args...)}
		for k, v := range extra {
			updates[k] = v
		}
		if err := tx.Model(model).Where("id IN ?", ids).Updates(updates).Error; err != nil {
			return err
		}
	}
	return nil
}

// rescaleChecked is Rescale for stored amounts: it reports false when the
// result would reach util.MaxAmount in magnitude.
func rescaleChecked(cents int64, rate decimal.Decimal) (int64, bool) {
	v := decimal.NewFromInt(cents).Mul(rate).Round(0)
	if v.Abs().GreaterThanOrEqual(decimal.NewFromInt(util.MaxAmount)) {
		return 0, false
	}
	return v.IntPart(), true
}
