package checkin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosyfit/backend/internal/clock"
)

type adjustableClock struct {
	t time.Time
}

func (c *adjustableClock) Now() time.Time {
	return c.t
}

func TestReminders_DueOncePerSlotPerDay(t *testing.T) {
	clk := &adjustableClock{t: time.Date(2026, 6, 1, 12, 30, 0, 0, time.UTC)}
	reminders := NewReminders(clk)

	due := reminders.Due()
	require.Len(t, due, 1)
	assert.Equal(t, "lunch", due[0].SlotID)
	assert.Equal(t, "ROSYFIT: Pranzo", due[0].Title)

	// same window, already delivered
	assert.Empty(t, reminders.Due())

	// next window later the same day
	clk.t = time.Date(2026, 6, 1, 16, 5, 0, 0, time.UTC)
	due = reminders.Due()
	require.Len(t, due, 1)
	assert.Equal(t, "snack_afternoon", due[0].SlotID)

	// next day the lunch reminder is due again
	clk.t = time.Date(2026, 6, 2, 13, 0, 0, 0, time.UTC)
	due = reminders.Due()
	require.Len(t, due, 1)
	assert.Equal(t, "lunch", due[0].SlotID)
}

func TestReminders_NothingDueOutsideWindows(t *testing.T) {
	clk := clock.Fixed{T: time.Date(2026, 6, 1, 15, 0, 0, 0, time.UTC)}
	reminders := NewReminders(clk)

	assert.Empty(t, reminders.Due())
}
