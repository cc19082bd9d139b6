package notify

import (
	"bytes"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(log.New(&buf, "", 0), time.Hour)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, n.ScheduleDeadlineReminder("p2", "Rent", base.Add(48*time.Hour)))
	require.NoError(t, n.ScheduleDeadlineReminder("p1", "Groceries", base.Add(2*time.Hour)))
	require.NoError(t, n.ScheduleDeadlineReminder("p3", "Gift", base.Add(3*time.Hour)))

	pending := n.Pending()
	require.Len(t, pending, 3)
	assert.Equal(t, "p1", pending[0].PlanificationID)
	assert.Equal(t, base.Add(time.Hour), pending[0].RemindAt)

	require.NoError(t, n.CancelReminders("p3"))
	assert.Equal(t, 1, n.FireDue(base.Add(90*time.Minute)))
	assert.Zero(t, n.FireDue(base.Add(90*time.Minute)))
	assert.Len(t, n.Pending(), 1)
	assert.Contains(t, buf.String(), `"Groceries" is due`)

	require.NoError(t, n.NotifyExpired("p2", "Rent"))
	assert.Contains(t, buf.String(), `"Rent" (p2) is past its deadline`)
}

func TestScheduleReplacesReminder(t *testing.T) {
	n := NewLogNotifier(log.New(&bytes.Buffer{}, "", 0), 0)
	d := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, n.ScheduleDeadlineReminder("p", "Plan", d))
	require.NoError(t, n.ScheduleDeadlineReminder("p", "Plan", d.Add(time.Hour)))
	pending := n.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, d.Add(time.Hour), pending[0].Deadline)
}
