package domain

import "errors"

// Validation errors are recovered by re-prompting the same conversation step.
var (
	ErrEmptyDescription = errors.New("empty description")
	ErrBadDateTime      = errors.New("invalid date/time format")
	ErrPastDateTime     = errors.New("date/time already passed")
	ErrBadMinutes       = errors.New("minutes out of range")
	ErrReminderPast     = errors.New("reminder instant already passed")
)

// Operation errors surfaced to the user as terminal messages.
var (
	ErrConflict      = errors.New("participant already booked at this instant")
	ErrNotFound      = errors.New("not found")
	ErrNotAuthorized = errors.New("not the event creator")
)
