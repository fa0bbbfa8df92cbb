package domain

import (
	"fmt"
	"time"
)

// User is an identity known to the bot. Created on first contact, never
// mutated or deleted afterwards.
type User struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string // without the leading "@"; empty if the user has none
	CreatedAt time.Time
}

// DisplayName renders the user the way listings and notifications show them:
// "First Last (@username)" or "First Last (no username)".
func (u User) DisplayName() string {
	handle := "no username"
	if u.Username != "" {
		handle = "@" + u.Username
	}
	if u.LastName == "" {
		return fmt.Sprintf("%s (%s)", u.FirstName, handle)
	}
	return fmt.Sprintf("%s %s (%s)", u.FirstName, u.LastName, handle)
}

// Event is a scheduled meeting between exactly two users at one instant.
type Event struct {
	ID            int64
	CreatorID     int64
	ParticipantID int64
	Description   string
	StartsAt      time.Time // UTC internally; rendered in the configured location
}

// Reminder is one future instant at which a notification about an event
// must fire. An event can carry several.
type Reminder struct {
	EventID int64
	At      time.Time
}
