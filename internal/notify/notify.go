// Package notify is the local reminder scheduler for planifications. It
// keeps pending deadline reminders in memory and writes every notification
// to a log.
package notify

import (
	"log"
	"sort"
	"sync"
	"time"
)

// Reminder is a scheduled deadline reminder.
type Reminder struct {
	PlanificationID string    `json:"planification_id"`
	Title           string    `json:"title"`
	Deadline        time.Time `json:"deadline"`
	RemindAt        time.Time `json:"remind_at"`
}

// LogNotifier schedules reminders in memory and logs them when they fire.
type LogNotifier struct {
	mu        sync.Mutex
	logger    *log.Logger
	lead      time.Duration
	reminders map[string]Reminder
}

// NewLogNotifier returns a notifier that fires reminders lead before each
// deadline. A nil logger uses the standard logger.
func NewLogNotifier(logger *log.Logger, lead time.Duration) *LogNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &LogNotifier{
		logger:    logger,
		lead:      lead,
		reminders: make(map[string]Reminder),
	}
}

func (n *LogNotifier) ScheduleDeadlineReminder(planificationID, title string, deadline time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	r := Reminder{
		PlanificationID: planificationID,
		Title:           title,
		Deadline:        deadline,
		RemindAt:        deadline.Add(-n.lead),
	}
	n.reminders[planificationID] = r
	n.logger.Printf("notify: reminder for %q scheduled at %s", title, r.RemindAt.Format(time.RFC3339))
	return nil
}

func (n *LogNotifier) CancelReminders(planificationID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.reminders, planificationID)
	return nil
}

func (n *LogNotifier) NotifyExpired(planificationID, title string) error {
	n.logger.Printf("notify: planification %q (%s) is past its deadline", title, planificationID)
	return nil
}

// FireDue logs and drops every reminder due at now. It returns how many
// fired.
func (n *LogNotifier) FireDue(now time.Time) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	fired := 0
	for id, r := range n.reminders {
		if r.RemindAt.After(now) {
			continue
		}
		n.logger.Printf("notify: %q is due %s", r.Title, r.Deadline.Format(time.RFC3339))
		delete(n.reminders, id)
		fired++
	}
	return fired
}

// Pending returns the scheduled reminders, earliest first.
func (n *LogNotifier) Pending() []Reminder {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Reminder, 0, len(n.reminders))
	for _, r := range n.reminders {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RemindAt.Before(out[j].RemindAt) })
	return out
}
