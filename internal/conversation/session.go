// Package conversation holds the per-user dialogue state machine: the step
// enum, the scratch session record, and pure transition helpers. Transitions
// never touch collaborators; persistence, scheduling and notification happen
// in the service layer after a transition validates the input.
package conversation

import "sync"

// Step is the current position of a user inside a multi-turn dialogue.
type Step int

const (
	StepIdle Step = iota // main menu
	StepAwaitingParticipant
	StepAwaitingDescription
	StepAwaitingDateTime
	StepAwaitingCustomChoice
	StepAwaitingCustomMinutes
	StepEditAwaitingDescription
	StepEditAwaitingDateTime
)

func (s Step) String() string {
	switch s {
	case StepIdle:
		return "idle"
	case StepAwaitingParticipant:
		return "awaiting_participant"
	case StepAwaitingDescription:
		return "awaiting_description"
	case StepAwaitingDateTime:
		return "awaiting_datetime"
	case StepAwaitingCustomChoice:
		return "awaiting_custom_reminder_choice"
	case StepAwaitingCustomMinutes:
		return "awaiting_custom_reminder_minutes"
	case StepEditAwaitingDescription:
		return "edit_awaiting_description"
	case StepEditAwaitingDateTime:
		return "edit_awaiting_datetime"
	default:
		return "unknown"
	}
}

// Session is the ephemeral scratch state of one user's dialogue. It is
// overwritten on every transition and lost on restart; losing it aborts the
// in-flight conversation without any store side effects.
type Session struct {
	Step          Step
	ParticipantID int64  // chosen participant (creation flow)
	Description   string // sanitized draft description
	EventID       int64  // target event (edit flow)
}

// Sessions is the conversation-state map keyed by user id. All access goes
// through the mutex: handlers do read-validate-write sequences, and a rapid
// double submission from one user must not produce a lost update.
type Sessions struct {
	mu sync.Mutex
	m  map[int64]Session
}

// NewSessions returns an empty session store.
func NewSessions() *Sessions {
	return &Sessions{m: make(map[int64]Session)}
}

// Get returns the user's current session; an unknown user is at StepIdle.
func (s *Sessions) Get(userID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[userID]
}

// Set replaces the user's session.
func (s *Sessions) Set(userID int64, sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[userID] = sess
}

// Reset returns the user to the main menu, dropping all scratch state.
func (s *Sessions) Reset(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, userID)
}
