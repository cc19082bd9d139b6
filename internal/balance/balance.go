// Package balance derives account balances from their transactions.
//
// Balances are never stored: every read recomputes them from the account's
// initial balance and its non-deleted transactions, so there is no running
// counter that could drift.
package balance

import "money-tracking/internal/models"

// Signed returns the contribution of t to its account balance:
// +amount for income, -amount for expense, 0 for soft-deleted rows.
func Signed(t models.Transaction) int64 {
	if t.DeletedAt.Valid {
		return 0
	}
	switch t.Type {
	case models.TypeIncome:
		return t.Amount
	case models.TypeExpense:
		return -t.Amount
	}
	return 0
}

// Account computes the current balance of account from txs. Transactions
// that belong to another account or are soft-deleted are ignored, so callers
// may pass a wider snapshot.
func Account(account models.Account, txs []models.Transaction) int64 {
	total := account.InitialBalance
	for _, t := range txs {
		if t.AccountID == nil || *t.AccountID != account.ID {
			continue
		}
		total += Signed(t)
	}
	return total
}

// Balances computes the balance of every non-deleted account in a single
// pass over txs, keyed by account id.
func Balances(accounts []models.Account, txs []models.Transaction) map[string]int64 {
	out := make(map[string]int64, len(accounts))
	for _, a := range accounts {
		if a.DeletedAt.Valid {
			continue
		}
		out[a.ID] = a.InitialBalance
	}
	for _, t := range txs {
		if t.AccountID == nil {
			continue
		}
		if cur, ok := out[*t.AccountID]; ok {
			out[*t.AccountID] = cur + Signed(t)
		}
	}
	return out
}

// NetWorth is the sum of the current balances of all non-deleted accounts.
func NetWorth(accounts []models.Account, txs []models.Transaction) int64 {
	var total int64
	for _, b := range Balances(accounts, txs) {
		total += b
	}
	return total
}

// Totals holds aggregate income and expense, transfers excluded.
type Totals struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
}

// Net is income minus expense.
func (t Totals) Net() int64 { return t.Income - t.Expense }

// Aggregate sums income and expense over txs, skipping transfer legs and
// soft-deleted rows.
func Aggregate(txs []models.Transaction) Totals {
	var out Totals
	for _, t := range txs {
		if t.DeletedAt.Valid || t.IsTransferLeg() {
			continue
		}
		switch t.Type {
		case models.TypeIncome:
			out.Income += t.Amount
		case models.TypeExpense:
			out.Expense += t.Amount
		}
	}
	return out
}

// PlanTotals splits planification items by type. Total is the net deduction
// applied on validation and is negative when the plan is net income.
type PlanTotals struct {
	Expenses int64 `json:"total_expenses"`
	Income   int64 `json:"total_income"`
	Total    int64 `json:"total"`
}

// Plan sums the items of a planification.
func Plan(items []models.PlanificationItem) PlanTotals {
	var out PlanTotals
	for _, it := range items {
		switch it.Type {
		case models.TypeExpense:
			out.Expenses += it.Amount
		case models.TypeIncome:
			out.Income += it.Amount
		}
	}
	out.Total = out.Expenses - out.Income
	return out
}
