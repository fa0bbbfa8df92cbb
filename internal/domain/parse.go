package domain

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"
)

// EventTimeLayout is the only accepted input format for event instants.
const EventTimeLayout = "02.01.2006 15:04"

// Custom reminder offset bounds, minutes before the event.
const (
	MinReminderMinutes = 1
	MaxReminderMinutes = 60
)

// SanitizeDescription trims and HTML-escapes free text so it is safe to
// embed into HTML-formatted messages. Returns ErrEmptyDescription when
// nothing remains after trimming.
func SanitizeDescription(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyDescription
	}
	return html.EscapeString(s), nil
}

// ParseEventTime parses "DD.MM.YYYY HH:MM" in the given location.
func ParseEventTime(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(EventTimeLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDateTime, s)
	}
	return t, nil
}

// ParseReminderMinutes parses a custom reminder offset, an integer in
// [MinReminderMinutes, MaxReminderMinutes].
func ParseReminderMinutes(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadMinutes, s)
	}
	if n < MinReminderMinutes || n > MaxReminderMinutes {
		return 0, fmt.Errorf("%w: %d", ErrBadMinutes, n)
	}
	return n, nil
}

// FormatEventTime renders an instant in the configured location using the
// same layout users type it in.
func FormatEventTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(EventTimeLayout)
}
