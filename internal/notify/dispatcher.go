// Package notify formats and delivers event notifications. Delivery is
// best-effort: a failure toward one recipient is logged and does not stop
// delivery to the other, nor does it roll back the mutation that triggered it.
package notify

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"meetmate/internal/domain"
)

// Sender delivers one text message to one user. The telegram package
// implements it over the bot API; tests use a recording fake.
type Sender interface {
	Send(userID int64, text string) error
}

// Dispatcher composes human-readable notifications for both parties of an
// event. It is stateless apart from its collaborators.
type Dispatcher struct {
	sender Sender
	log    *zap.Logger
	loc    *time.Location
}

// New creates a Dispatcher rendering instants in the given location.
func New(sender Sender, loc *time.Location, log *zap.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, log: log, loc: loc}
}

// EventCreated notifies creator and participant about a new event.
func (d *Dispatcher) EventCreated(ev domain.Event, creator, participant domain.User) {
	when := domain.FormatEventTime(ev.StartsAt, d.loc)
	d.deliver(participant.ID, fmt.Sprintf(
		"📅 New event created:\n\n<b>Description:</b> %s\n<b>Date and time:</b> %s\n<b>Creator:</b> %s",
		ev.Description, when, creator.DisplayName(),
	))
	d.deliver(creator.ID, fmt.Sprintf(
		"📅 You created a new event:\n\n<b>Description:</b> %s\n<b>Date and time:</b> %s\n<b>Participant:</b> %s",
		ev.Description, when, participant.DisplayName(),
	))
}

// EventUpdated notifies both parties about an edited event.
func (d *Dispatcher) EventUpdated(ev domain.Event, creator, participant domain.User) {
	when := domain.FormatEventTime(ev.StartsAt, d.loc)
	d.deliver(participant.ID, fmt.Sprintf(
		"📅 Event updated:\n\n<b>Description:</b> %s\n<b>Date and time:</b> %s\n<b>Creator:</b> %s",
		ev.Description, when, creator.DisplayName(),
	))
	d.deliver(creator.ID, fmt.Sprintf(
		"📅 You updated the event:\n\n<b>Description:</b> %s\n<b>Date and time:</b> %s\n<b>Participant:</b> %s",
		ev.Description, when, participant.DisplayName(),
	))
}

// EventDeleted notifies both parties that the creator removed the event.
func (d *Dispatcher) EventDeleted(eventID int64, creatorID, participantID int64) {
	text := fmt.Sprintf("🗑 Event ID:%d was deleted by its creator.", eventID)
	d.deliver(participantID, text)
	d.deliver(creatorID, text)
}

// EventReminder sends the timed reminder to both parties. The event snapshot
// is read from the store at fire time, so an edited description shows up.
func (d *Dispatcher) EventReminder(ev domain.Event, creator, participant domain.User) {
	text := fmt.Sprintf(
		"⏰ Event reminder:\n\n<b>Description:</b> %s\n<b>Date and time:</b> %s\n<b>Creator:</b> %s\n<b>Participant:</b> %s",
		ev.Description,
		domain.FormatEventTime(ev.StartsAt, d.loc),
		creator.DisplayName(),
		participant.DisplayName(),
	)
	d.deliver(creator.ID, text)
	d.deliver(participant.ID, text)
}

func (d *Dispatcher) deliver(userID int64, text string) {
	if err := d.sender.Send(userID, text); err != nil {
		d.log.Error("notification delivery failed",
			zap.Int64("userID", userID),
			zap.Error(err),
		)
	}
}
