package ledger

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"money-tracking/internal/config"
	"money-tracking/internal/database"
	"money-tracking/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Init(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "ledger_test.db"),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type notification struct {
	kind string
	id   string
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []notification
	err   error
}

func (n *recordingNotifier) record(kind, id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notification{kind, id})
	return n.err
}

func (n *recordingNotifier) ScheduleDeadlineReminder(id, _ string, _ time.Time) error {
	return n.record("schedule", id)
}
func (n *recordingNotifier) CancelReminders(id string) error  { return n.record("cancel", id) }
func (n *recordingNotifier) NotifyExpired(id, _ string) error { return n.record("expired", id) }

func (n *recordingNotifier) count(kind string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, call := range n.calls {
		if call.kind == kind {
			c++
		}
	}
	return c
}

type fixture struct {
	svc   *Service
	db    *gorm.DB
	clock *testClock
	bank  string
	cash  string
}

// newFixture returns an onboarded ledger with the given default balances.
func newFixture(t *testing.T, bankInitial, cashInitial int64, opts ...Option) *fixture {
	t.Helper()
	db := setupTestDB(t)
	clock := newTestClock()
	svc := New(db, append([]Option{WithClock(clock.Now)}, opts...)...)

	ctx := context.Background()
	require.NoError(t, svc.Onboard(ctx, OnboardInput{
		BankInitial: bankInitial,
		CashInitial: cashInitial,
		Currency:    "USD",
	}))

	f := &fixture{svc: svc, db: db, clock: clock}
	accounts, err := svc.ListAccounts(ctx)
	require.NoError(t, err)
	for _, a := range accounts {
		switch a.Type {
		case models.AccountBank:
			f.bank = a.ID
		case models.AccountCash:
			f.cash = a.ID
		}
	}
	require.NotEmpty(t, f.bank)
	require.NotEmpty(t, f.cash)
	return f
}

func (f *fixture) balance(t *testing.T, accountID string) int64 {
	t.Helper()
	b, err := f.svc.AccountBalance(context.Background(), accountID)
	require.NoError(t, err)
	return b
}

func (f *fixture) expense(t *testing.T, accountID string, amount int64) string {
	t.Helper()
	f.clock.Advance(time.Minute)
	id, err := f.svc.RecordTransaction(context.Background(), TransactionInput{
		Type: models.TypeExpense, Amount: amount, AccountID: &accountID,
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) income(t *testing.T, accountID string, amount int64) string {
	t.Helper()
	f.clock.Advance(time.Minute)
	id, err := f.svc.RecordTransaction(context.Background(), TransactionInput{
		Type: models.TypeIncome, Amount: amount, AccountID: &accountID,
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) countRows(t *testing.T, accountID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Unscoped().Model(&models.Transaction{}).
		Where("account_id = ?", accountID).Count(&n).Error)
	return n
}

func strPtr(s string) *string { return &s }
