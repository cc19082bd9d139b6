// Package ledger implements the invariant-preserving operations on the
// ledger store: single transactions, transfers, planification settlement and
// currency re-denomination, plus the account, category and settings
// bookkeeping they rely on.
//
// Every multi-statement mutation runs inside one gorm transaction. Writers
// are additionally serialized by the service so that a balance check and the
// insert it guards cannot interleave with another writer.
package ledger

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"money-tracking/internal/config"

	"gorm.io/gorm"
)

// Notifier receives planification reminders. Calls are fire-and-forget: a
// failing notifier never rolls back the mutation that triggered it.
type Notifier interface {
	ScheduleDeadlineReminder(planificationID, title string, deadline time.Time) error
	CancelReminders(planificationID string) error
	NotifyExpired(planificationID, title string) error
}

type nopNotifier struct{}

func (nopNotifier) ScheduleDeadlineReminder(string, string, time.Time) error { return nil }
func (nopNotifier) CancelReminders(string) error                              { return nil }
func (nopNotifier) NotifyExpired(string, string) error                        { return nil }

// Service is the entry point to the ledger core.
type Service struct {
	db       *gorm.DB
	mu       sync.Mutex
	notifier Notifier
	limits   config.LedgerConfig
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets the reminder collaborator.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLimits sets the custom account/category caps and the default currency.
func WithLimits(l config.LedgerConfig) Option {
	return func(s *Service) { s.limits = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// DefaultLimits mirrors the configuration defaults.
var DefaultLimits = config.LedgerConfig{
	MaxCustomAccounts:   5,
	MaxCustomCategories: 10,
	DefaultCurrency:     "MGA",
}

// New builds a Service over db.
func New(db *gorm.DB, opts ...Option) *Service {
	s := &Service{
		db:       db,
		notifier: nopNotifier{},
		limits:   DefaultLimits,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

// withTx runs fn in a single storage transaction. Service errors returned by
// fn pass through unchanged; anything else is reported as a storage failure.
func (s *Service) withTx(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	err := s.db.WithContext(ctx).Transaction(fn)
	if err == nil {
		return nil
	}
	if KindOf(err) == KindStorage && !errors.Is(err, ErrStorage) {
		return storage(op, err)
	}
	return err
}

func (s *Service) read(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// notify runs a notifier call after the owning mutation committed.
func (s *Service) notify(what string, fn func(Notifier) error) {
	if err := fn(s.notifier); err != nil {
		log.Printf("ledger: notifier %s failed: %v", what, err)
	}
}
