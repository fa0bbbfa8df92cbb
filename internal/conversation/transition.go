package conversation

import (
	"errors"
	"time"

	"meetmate/internal/domain"
)

// ErrWrongStep means input arrived for a step the user is not at. The caller
// reports a diagnostic and leaves the session unchanged.
var ErrWrongStep = errors.New("input does not match the current conversation step")

// StartCreate begins the creation flow from any step, dropping old scratch.
func StartCreate() Session {
	return Session{Step: StepAwaitingParticipant}
}

// StartEdit begins the edit flow for an event the caller has already
// authorized as creator-owned.
func StartEdit(eventID int64) Session {
	return Session{Step: StepEditAwaitingDescription, EventID: eventID}
}

// ChooseParticipant records the picked participant and advances to the
// description prompt.
func ChooseParticipant(s Session, participantID int64) (Session, error) {
	if s.Step != StepAwaitingParticipant {
		return s, ErrWrongStep
	}
	s.ParticipantID = participantID
	s.Step = StepAwaitingDescription
	return s, nil
}

// SubmitDescription validates free-text event description input for both the
// creation and edit flows. On validation failure the session is returned
// unchanged so the same step re-prompts.
func SubmitDescription(s Session, text string) (Session, error) {
	switch s.Step {
	case StepAwaitingDescription, StepEditAwaitingDescription:
	default:
		return s, ErrWrongStep
	}

	desc, err := domain.SanitizeDescription(text)
	if err != nil {
		return s, err
	}
	s.Description = desc
	if s.Step == StepAwaitingDescription {
		s.Step = StepAwaitingDateTime
	} else {
		s.Step = StepEditAwaitingDateTime
	}
	return s, nil
}

// SubmitDateTime validates date/time input for both flows and returns the
// parsed instant. It does not advance the step: the commit (conflict check,
// persistence, scheduling) happens in the service, and only a successful
// commit moves the conversation on. On any error the session is unchanged.
func SubmitDateTime(s Session, text string, now time.Time, loc *time.Location) (time.Time, error) {
	switch s.Step {
	case StepAwaitingDateTime, StepEditAwaitingDateTime:
	default:
		return time.Time{}, ErrWrongStep
	}

	at, err := domain.ParseEventTime(text, loc)
	if err != nil {
		return time.Time{}, err
	}
	if at.Before(now) {
		return time.Time{}, domain.ErrPastDateTime
	}
	return at, nil
}

// OfferCustomReminder is the post-creation step offering one extra reminder.
func OfferCustomReminder() Session {
	return Session{Step: StepAwaitingCustomChoice}
}

// AcceptCustomReminder advances from the yes/no offer to the minutes prompt.
func AcceptCustomReminder(s Session) (Session, error) {
	if s.Step != StepAwaitingCustomChoice {
		return s, ErrWrongStep
	}
	s.Step = StepAwaitingCustomMinutes
	return s, nil
}

// SubmitCustomMinutes validates the custom reminder offset input.
func SubmitCustomMinutes(s Session, text string) (int, error) {
	if s.Step != StepAwaitingCustomMinutes {
		return 0, ErrWrongStep
	}
	return domain.ParseReminderMinutes(text)
}
