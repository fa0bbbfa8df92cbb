// Package service implements the event operations behind the conversation:
// create, edit, delete, custom reminders, reminder firing and startup rearm.
// It owns the ordering rules: conflicts are checked before any write, jobs
// are cancelled by event prefix before reminders or events are removed, and
// every edit unconditionally recomputes the reminder set.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmhodges/clock"
	"go.uber.org/zap"

	"meetmate/internal/domain"
	"meetmate/internal/notify"
	"meetmate/internal/scheduler"
	"meetmate/internal/store"
)

type Service struct {
	repo   store.Repo
	sched  *scheduler.Scheduler
	notify *notify.Dispatcher
	clk    clock.Clock
	loc    *time.Location
	log    *zap.Logger
}

func New(repo store.Repo, sched *scheduler.Scheduler, dispatcher *notify.Dispatcher, clk clock.Clock, loc *time.Location, log *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		sched:  sched,
		notify: dispatcher,
		clk:    clk,
		loc:    loc,
		log:    log,
	}
}

// Location is the fixed timezone all instants are parsed and rendered in.
func (s *Service) Location() *time.Location { return s.loc }

// Now is the current instant from the injected clock.
func (s *Service) Now() time.Time { return s.clk.Now() }

// EnsureUser registers the user on first contact. Returns true when the
// user already existed; user rows are never mutated afterwards.
func (s *Service) EnsureUser(ctx context.Context, u domain.User) (bool, error) {
	_, err := s.repo.GetUser(ctx, u.ID)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}
	u.CreatedAt = s.clk.Now().UTC()
	if err := s.repo.CreateUser(ctx, &u); err != nil {
		return false, err
	}
	s.log.Info("user registered", zap.Int64("userID", u.ID))
	return false, nil
}

// Candidates lists users selectable as the event participant.
func (s *Service) Candidates(ctx context.Context, userID int64) ([]domain.User, error) {
	return s.repo.ListUsersExcept(ctx, userID)
}

// AllUsers lists every registered user.
func (s *Service) AllUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.ListAllUsers(ctx)
}

// EventsForUser lists the user's events (as creator or participant) ordered
// by instant ascending.
func (s *Service) EventsForUser(ctx context.Context, userID int64) ([]domain.Event, error) {
	return s.repo.ListEventsForUser(ctx, userID)
}

// GetUser looks up one registered user.
func (s *Service) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	return s.repo.GetUser(ctx, userID)
}

// AuthorizeCreator verifies the event exists and the requester created it.
func (s *Service) AuthorizeCreator(ctx context.Context, requesterID, eventID int64) (*domain.Event, error) {
	ev, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.CreatorID != requesterID {
		return nil, fmt.Errorf("event %d belongs to %d: %w", eventID, ev.CreatorID, domain.ErrNotAuthorized)
	}
	return ev, nil
}

// CreateEvent checks the participant's calendar for an exact-instant
// collision, persists the event, plans and schedules the standard reminders,
// and notifies both parties. Nothing is written when the slot is taken.
func (s *Service) CreateEvent(ctx context.Context, creatorID, participantID int64, description string, at time.Time) (*domain.Event, error) {
	taken, err := s.repo.FindEventAt(ctx, participantID, at, 0)
	if err != nil {
		return nil, fmt.Errorf("conflict check: %w", err)
	}
	if taken != nil {
		return nil, fmt.Errorf("instant %s for participant %d: %w",
			domain.FormatEventTime(at, s.loc), participantID, domain.ErrConflict)
	}

	id, err := s.repo.CreateEvent(ctx, creatorID, participantID, description, at)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	ev := &domain.Event{
		ID:            id,
		CreatorID:     creatorID,
		ParticipantID: participantID,
		Description:   description,
		StartsAt:      at,
	}
	s.log.Info("event created",
		zap.Int64("eventID", id),
		zap.Int64("creatorID", creatorID),
		zap.Int64("participantID", participantID),
		zap.Time("at", at),
	)

	if err := s.scheduleReminders(ctx, ev, domain.PlanReminders(at, s.clk.Now())); err != nil {
		return nil, err
	}

	creator, participant, err := s.eventParties(ctx, ev)
	if err != nil {
		s.log.Error("load parties for creation notice failed", zap.Error(err))
		return ev, nil
	}
	s.notify.EventCreated(*ev, *creator, *participant)
	return ev, nil
}

// EditEvent updates a creator-owned event. All existing jobs and reminder
// rows are discarded before the new set is computed from the new instant,
// even when only the description changed. Notifications go to both parties.
func (s *Service) EditEvent(ctx context.Context, requesterID, eventID int64, description string, at time.Time) (*domain.Event, error) {
	ev, err := s.AuthorizeCreator(ctx, requesterID, eventID)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.FindEventAt(ctx, ev.ParticipantID, at, eventID)
	if err != nil {
		return nil, fmt.Errorf("conflict check: %w", err)
	}
	if taken != nil {
		return nil, fmt.Errorf("instant %s for participant %d: %w",
			domain.FormatEventTime(at, s.loc), ev.ParticipantID, domain.ErrConflict)
	}

	if err := s.repo.UpdateEvent(ctx, eventID, description, at); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	ev.Description = description
	ev.StartsAt = at

	// Cancel jobs before touching reminder rows so no stale job can fire
	// against a row that is about to disappear.
	s.sched.CancelPrefix(scheduler.EventKeyPrefix(eventID))
	if err := s.repo.DeleteReminders(ctx, eventID); err != nil {
		return nil, fmt.Errorf("drop reminders: %w", err)
	}
	if err := s.scheduleReminders(ctx, ev, domain.PlanReminders(at, s.clk.Now())); err != nil {
		return nil, err
	}
	s.log.Info("event updated", zap.Int64("eventID", eventID), zap.Time("at", at))

	creator, participant, err := s.eventParties(ctx, ev)
	if err != nil {
		s.log.Error("load parties for update notice failed", zap.Error(err))
		return ev, nil
	}
	s.notify.EventUpdated(*ev, *creator, *participant)
	return ev, nil
}

// DeleteEvent removes a creator-owned event. Ordering: cancel jobs, then
// delete reminder rows, then the event, then notify both parties.
func (s *Service) DeleteEvent(ctx context.Context, requesterID, eventID int64) error {
	ev, err := s.AuthorizeCreator(ctx, requesterID, eventID)
	if err != nil {
		return err
	}

	s.sched.CancelPrefix(scheduler.EventKeyPrefix(eventID))
	if err := s.repo.DeleteReminders(ctx, eventID); err != nil {
		return fmt.Errorf("drop reminders: %w", err)
	}
	if err := s.repo.DeleteEvent(ctx, eventID); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	s.log.Info("event deleted", zap.Int64("eventID", eventID), zap.Int64("by", requesterID))

	s.notify.EventDeleted(eventID, ev.CreatorID, ev.ParticipantID)
	return nil
}

// AddCustomReminder attaches one extra reminder N minutes before the
// creator's most recently created event. A reminder that would already be in
// the past is rejected without touching the store.
func (s *Service) AddCustomReminder(ctx context.Context, creatorID int64, minutes int) (*domain.Event, time.Time, error) {
	ev, err := s.repo.FindLastEventByCreator(ctx, creatorID)
	if err != nil {
		return nil, time.Time{}, err
	}

	at, err := domain.CustomReminderAt(ev.StartsAt, minutes, s.clk.Now())
	if err != nil {
		return nil, time.Time{}, err
	}

	if err := s.scheduleReminders(ctx, ev, []time.Time{at}); err != nil {
		return nil, time.Time{}, err
	}
	s.log.Info("custom reminder added",
		zap.Int64("eventID", ev.ID),
		zap.Int("minutes", minutes),
		zap.Time("at", at),
	)
	return ev, at, nil
}

// FireReminder handles a due job: the event snapshot is read from the store
// now, not captured at schedule time, so reminders always carry the latest
// description and instant. A raced deletion is logged and dropped.
func (s *Service) FireReminder(ctx context.Context, eventID int64, at time.Time) {
	ev, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.Warn("reminder fired for a deleted event", zap.Int64("eventID", eventID))
		} else {
			s.log.Error("load event at fire time failed", zap.Int64("eventID", eventID), zap.Error(err))
		}
		return
	}

	creator, participant, err := s.eventParties(ctx, ev)
	if err != nil {
		s.log.Error("load parties at fire time failed", zap.Int64("eventID", eventID), zap.Error(err))
		return
	}
	s.notify.EventReminder(*ev, *creator, *participant)
}

// Rearm re-registers jobs for every reminder still in the future. Called
// once at startup; reminders that became due while the process was down are
// dropped, matching the planner's past-instant rule.
func (s *Service) Rearm(ctx context.Context) error {
	pending, err := s.repo.ListPendingReminders(ctx, s.clk.Now())
	if err != nil {
		return fmt.Errorf("list pending reminders: %w", err)
	}
	for _, r := range pending {
		s.sched.Schedule(scheduler.ReminderKey(r.EventID, r.At), r.At, r.EventID)
	}
	s.log.Info("reminders rearmed", zap.Int("count", len(pending)))
	return nil
}

// scheduleReminders persists each instant and registers the matching job.
func (s *Service) scheduleReminders(ctx context.Context, ev *domain.Event, times []time.Time) error {
	for _, at := range times {
		if err := s.repo.CreateReminder(ctx, ev.ID, at); err != nil {
			return fmt.Errorf("create reminder: %w", err)
		}
		s.sched.Schedule(scheduler.ReminderKey(ev.ID, at), at, ev.ID)
	}
	return nil
}

func (s *Service) eventParties(ctx context.Context, ev *domain.Event) (creator, participant *domain.User, err error) {
	creator, err = s.repo.GetUser(ctx, ev.CreatorID)
	if err != nil {
		return nil, nil, err
	}
	participant, err = s.repo.GetUser(ctx, ev.ParticipantID)
	if err != nil {
		return nil, nil, err
	}
	return creator, participant, nil
}
