// Package jobs runs the periodic ledger sweeps.
package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// ExpirySweeper flags expired planifications.
type ExpirySweeper interface {
	CheckExpired(ctx context.Context) (int, error)
}

// ReminderFirer delivers due deadline reminders.
type ReminderFirer interface {
	FireDue(now time.Time) int
}

// Scheduler wraps a cron runner.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
}

// New returns a scheduler whose jobs each get timeout to finish.
func New(timeout time.Duration) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		timeout: timeout,
	}
}

// AddExpirySweep runs CheckExpired on spec (e.g. "@every 15m").
func (s *Scheduler) AddExpirySweep(spec string, sweeper ExpirySweeper) error {
	_, err := s.cron.AddFunc(spec, func() { RunExpirySweep(context.Background(), sweeper, s.timeout) })
	if err != nil {
		return fmt.Errorf("schedule expiry sweep %q: %w", spec, err)
	}
	return nil
}

// AddReminders fires due reminders on spec.
func (s *Scheduler) AddReminders(spec string, firer ReminderFirer) error {
	_, err := s.cron.AddFunc(spec, func() {
		if n := firer.FireDue(time.Now()); n > 0 {
			log.Printf("jobs: fired %d reminder(s)", n)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule reminders %q: %w", spec, err)
	}
	return nil
}

// Start runs the scheduler in the background.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int { return len(s.cron.Entries()) }

// RunExpirySweep runs one sweep, logging its outcome.
func RunExpirySweep(ctx context.Context, sweeper ExpirySweeper, timeout time.Duration) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	n, err := sweeper.CheckExpired(ctx)
	if err != nil {
		log.Printf("jobs: expiry sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("jobs: %d planification(s) expired", n)
	}
}
