package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanReminders(t *testing.T) {
	now := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

	t.Run("both offsets in the future", func(t *testing.T) {
		eventAt := now.Add(48 * time.Hour)
		got := PlanReminders(eventAt, now)
		require.Len(t, got, 2)
		assert.Equal(t, eventAt.Add(-24*time.Hour), got[0])
		assert.Equal(t, eventAt.Add(-2*time.Hour), got[1])
	})

	t.Run("24h offset already passed", func(t *testing.T) {
		eventAt := now.Add(3 * time.Hour)
		got := PlanReminders(eventAt, now)
		require.Len(t, got, 1)
		assert.Equal(t, eventAt.Add(-2*time.Hour), got[0])
	})

	t.Run("all offsets passed", func(t *testing.T) {
		got := PlanReminders(now.Add(30*time.Minute), now)
		assert.Empty(t, got)
	})

	t.Run("offset exactly now is dropped", func(t *testing.T) {
		got := PlanReminders(now.Add(2*time.Hour), now)
		assert.Empty(t, got)
	})
}

func TestCustomReminderAt(t *testing.T) {
	now := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	eventAt := now.Add(45 * time.Minute)

	at, err := CustomReminderAt(eventAt, 30, now)
	require.NoError(t, err)
	assert.Equal(t, eventAt.Add(-30*time.Minute), at)

	_, err = CustomReminderAt(eventAt, 50, now)
	assert.ErrorIs(t, err, ErrReminderPast)

	// Exactly now is not strictly in the future.
	_, err = CustomReminderAt(eventAt, 45, now)
	assert.ErrorIs(t, err, ErrReminderPast)
}
