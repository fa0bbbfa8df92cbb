package store

import (
	"context"
	"time"

	"meetmate/internal/domain"
)

// Repo defines storage operations for users, events and reminders.
// Lookups that can legitimately miss return domain.ErrNotFound, except
// FindEventAt which returns (nil, nil) so conflict checks read naturally.
type Repo interface {
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
	CreateUser(ctx context.Context, u *domain.User) error
	ListUsersExcept(ctx context.Context, userID int64) ([]domain.User, error)
	ListAllUsers(ctx context.Context) ([]domain.User, error)

	CreateEvent(ctx context.Context, creatorID, participantID int64, description string, startsAt time.Time) (int64, error)
	GetEvent(ctx context.Context, eventID int64) (*domain.Event, error)
	ListEventsForUser(ctx context.Context, userID int64) ([]domain.Event, error)
	UpdateEvent(ctx context.Context, eventID int64, description string, startsAt time.Time) error
	DeleteEvent(ctx context.Context, eventID int64) error
	FindEventAt(ctx context.Context, participantID int64, startsAt time.Time, excludeEventID int64) (*domain.Event, error)
	FindLastEventByCreator(ctx context.Context, creatorID int64) (*domain.Event, error)

	CreateReminder(ctx context.Context, eventID int64, at time.Time) error
	ListReminders(ctx context.Context, eventID int64) ([]time.Time, error)
	DeleteReminders(ctx context.Context, eventID int64) error
	ListPendingReminders(ctx context.Context, now time.Time) ([]domain.Reminder, error)

	Close() error
}
