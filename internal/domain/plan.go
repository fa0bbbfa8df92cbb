package domain

import (
	"fmt"
	"time"
)

// StandardOffsets are how long before the event each standard reminder fires.
var StandardOffsets = []time.Duration{24 * time.Hour, 2 * time.Hour}

// PlanReminders computes the standard reminder instants for an event,
// dropping any instant that is not strictly after now. Re-planning after an
// edit always starts from this set; previously requested custom reminders
// are not re-added.
func PlanReminders(eventAt, now time.Time) []time.Time {
	out := make([]time.Time, 0, len(StandardOffsets))
	for _, off := range StandardOffsets {
		at := eventAt.Add(-off)
		if at.After(now) {
			out = append(out, at)
		}
	}
	return out
}

// CustomReminderAt computes the instant for a user-requested reminder N
// minutes before the event. Returns ErrReminderPast when that instant is not
// strictly in the future.
func CustomReminderAt(eventAt time.Time, minutes int, now time.Time) (time.Time, error) {
	at := eventAt.Add(-time.Duration(minutes) * time.Minute)
	if !at.After(now) {
		return time.Time{}, fmt.Errorf("%w: %s", ErrReminderPast, at.Format(EventTimeLayout))
	}
	return at, nil
}
