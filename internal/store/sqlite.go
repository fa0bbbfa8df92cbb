package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"meetmate/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// --- Users ---

// GetUser returns a user by id, or domain.ErrNotFound.
func (r *SQLiteRepo) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, first_name, last_name, username, created_at
		FROM users
		WHERE user_id = ?`,
		userID,
	)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	return u, err
}

// CreateUser inserts a new user row. Users are never updated afterwards.
func (r *SQLiteRepo) CreateUser(ctx context.Context, u *domain.User) error {
	if u == nil {
		return errors.New("nil user")
	}
	created := u.CreatedAt.UTC().Unix()
	if u.CreatedAt.IsZero() {
		created = time.Now().UTC().Unix()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (user_id, first_name, last_name, username, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.FirstName, u.LastName, u.Username, created,
	)
	return err
}

// ListUsersExcept returns every registered user other than userID,
// candidates for the participant pick.
func (r *SQLiteRepo) ListUsersExcept(ctx context.Context, userID int64) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, first_name, last_name, username, created_at
		FROM users
		WHERE user_id != ?
		ORDER BY user_id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

// ListAllUsers returns every registered user.
func (r *SQLiteRepo) ListAllUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, first_name, last_name, username, created_at
		FROM users
		ORDER BY user_id`,
	)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

// --- Events ---

// CreateEvent inserts an event and returns its store-assigned id.
func (r *SQLiteRepo) CreateEvent(ctx context.Context, creatorID, participantID int64, description string, startsAt time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO events (creator_id, participant_id, description, starts_at)
		VALUES (?, ?, ?, ?)`,
		creatorID, participantID, description, startsAt.UTC().Unix(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetEvent returns an event by id, or domain.ErrNotFound.
func (r *SQLiteRepo) GetEvent(ctx context.Context, eventID int64) (*domain.Event, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT event_id, creator_id, participant_id, description, starts_at
		FROM events
		WHERE event_id = ?`,
		eventID,
	)
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %d: %w", eventID, domain.ErrNotFound)
	}
	return ev, err
}

// ListEventsForUser returns events where the user is creator or participant,
// ordered by instant ascending.
func (r *SQLiteRepo) ListEventsForUser(ctx context.Context, userID int64) ([]domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT event_id, creator_id, participant_id, description, starts_at
		FROM events
		WHERE creator_id = ? OR participant_id = ?
		ORDER BY starts_at ASC`,
		userID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *ev)
	}
	return res, rows.Err()
}

// UpdateEvent rewrites an event's description and instant.
func (r *SQLiteRepo) UpdateEvent(ctx context.Context, eventID int64, description string, startsAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE events
		SET description = ?, starts_at = ?
		WHERE event_id = ?`,
		description, startsAt.UTC().Unix(), eventID,
	)
	return err
}

// DeleteEvent removes an event row.
func (r *SQLiteRepo) DeleteEvent(ctx context.Context, eventID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE event_id = ?`, eventID)
	return err
}

// FindEventAt returns an event occupying the exact instant for the
// participant, other than excludeEventID, or (nil, nil) when the slot is
// free. Pass excludeEventID = 0 when creating.
func (r *SQLiteRepo) FindEventAt(ctx context.Context, participantID int64, startsAt time.Time, excludeEventID int64) (*domain.Event, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT event_id, creator_id, participant_id, description, starts_at
		FROM events
		WHERE participant_id = ? AND starts_at = ? AND event_id != ?
		LIMIT 1`,
		participantID, startsAt.UTC().Unix(), excludeEventID,
	)
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return ev, err
}

// FindLastEventByCreator returns the creator's most recently created event,
// or domain.ErrNotFound.
func (r *SQLiteRepo) FindLastEventByCreator(ctx context.Context, creatorID int64) (*domain.Event, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT event_id, creator_id, participant_id, description, starts_at
		FROM events
		WHERE creator_id = ?
		ORDER BY event_id DESC
		LIMIT 1`,
		creatorID,
	)
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("last event of %d: %w", creatorID, domain.ErrNotFound)
	}
	return ev, err
}

// --- Reminders ---

// CreateReminder inserts a reminder row for an event.
func (r *SQLiteRepo) CreateReminder(ctx context.Context, eventID int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reminders (event_id, remind_at)
		VALUES (?, ?)`,
		eventID, at.UTC().Unix(),
	)
	return err
}

// ListReminders returns all reminder instants for an event, ascending.
func (r *SQLiteRepo) ListReminders(ctx context.Context, eventID int64) ([]time.Time, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT remind_at
		FROM reminders
		WHERE event_id = ?
		ORDER BY remind_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []time.Time
	for rows.Next() {
		var at int64
		if err := rows.Scan(&at); err != nil {
			return nil, err
		}
		res = append(res, time.Unix(at, 0).UTC())
	}
	return res, rows.Err()
}

// DeleteReminders removes every reminder of an event.
func (r *SQLiteRepo) DeleteReminders(ctx context.Context, eventID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE event_id = ?`, eventID)
	return err
}

// ListPendingReminders returns reminders whose instant is strictly after
// now, ordered ascending. Used to rearm the scheduler at startup.
func (r *SQLiteRepo) ListPendingReminders(ctx context.Context, now time.Time) ([]domain.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT event_id, remind_at
		FROM reminders
		WHERE remind_at > ?
		ORDER BY remind_at ASC`,
		now.UTC().Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Reminder
	for rows.Next() {
		var (
			eventID int64
			at      int64
		)
		if err := rows.Scan(&eventID, &at); err != nil {
			return nil, err
		}
		res = append(res, domain.Reminder{EventID: eventID, At: time.Unix(at, 0).UTC()})
	}
	return res, rows.Err()
}
