package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetmate/internal/domain"
)

func openTestRepo(t *testing.T) *SQLiteRepo {
	t.Helper()
	repo, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func seedUsers(t *testing.T, repo *SQLiteRepo, ids ...int64) {
	t.Helper()
	for _, id := range ids {
		err := repo.CreateUser(context.Background(), &domain.User{
			ID:        id,
			FirstName: "User",
			Username:  "u",
			CreatedAt: time.Now().UTC(),
		})
		require.NoError(t, err)
	}
}

func TestUsers(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	_, err := repo.GetUser(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = repo.CreateUser(ctx, &domain.User{ID: 1, FirstName: "Alice", LastName: "A", Username: "alice"})
	require.NoError(t, err)
	err = repo.CreateUser(ctx, &domain.User{ID: 2, FirstName: "Bob"})
	require.NoError(t, err)

	u, err := repo.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.FirstName)
	assert.Equal(t, "alice", u.Username)

	all, err := repo.ListAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	others, err := repo.ListUsersExcept(ctx, 1)
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, int64(2), others[0].ID)
}

func TestEvents(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	seedUsers(t, repo, 1, 2)

	at := time.Date(2025, time.July, 1, 10, 0, 0, 0, time.UTC)
	id, err := repo.CreateEvent(ctx, 1, 2, "sync", at)
	require.NoError(t, err)
	require.NotZero(t, id)

	ev, err := repo.GetEvent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ev.CreatorID)
	assert.Equal(t, int64(2), ev.ParticipantID)
	assert.Equal(t, "sync", ev.Description)
	assert.True(t, ev.StartsAt.Equal(at))

	// Exact-instant lookup for the participant.
	hit, err := repo.FindEventAt(ctx, 2, at, 0)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, id, hit.ID)

	// Excluding the event itself frees the slot (edit path).
	hit, err = repo.FindEventAt(ctx, 2, at, id)
	require.NoError(t, err)
	assert.Nil(t, hit)

	// One minute apart does not collide.
	hit, err = repo.FindEventAt(ctx, 2, at.Add(time.Minute), 0)
	require.NoError(t, err)
	assert.Nil(t, hit)

	// Same instant, different participant does not collide.
	hit, err = repo.FindEventAt(ctx, 1, at, 0)
	require.NoError(t, err)
	assert.Nil(t, hit)

	err = repo.UpdateEvent(ctx, id, "moved sync", at.Add(time.Hour))
	require.NoError(t, err)
	ev, err = repo.GetEvent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "moved sync", ev.Description)
	assert.True(t, ev.StartsAt.Equal(at.Add(time.Hour)))

	err = repo.DeleteEvent(ctx, id)
	require.NoError(t, err)
	_, err = repo.GetEvent(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListEventsForUserOrdering(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	seedUsers(t, repo, 1, 2, 3)

	base := time.Date(2025, time.July, 1, 10, 0, 0, 0, time.UTC)
	_, err := repo.CreateEvent(ctx, 1, 2, "later", base.Add(2*time.Hour))
	require.NoError(t, err)
	_, err = repo.CreateEvent(ctx, 3, 1, "earlier", base)
	require.NoError(t, err)
	_, err = repo.CreateEvent(ctx, 2, 3, "unrelated", base.Add(time.Hour))
	require.NoError(t, err)

	evs, err := repo.ListEventsForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, "earlier", evs[0].Description)
	assert.Equal(t, "later", evs[1].Description)
}

func TestFindLastEventByCreator(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	seedUsers(t, repo, 1, 2)

	_, err := repo.FindLastEventByCreator(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	at := time.Date(2025, time.July, 1, 10, 0, 0, 0, time.UTC)
	_, err = repo.CreateEvent(ctx, 1, 2, "first", at)
	require.NoError(t, err)
	second, err := repo.CreateEvent(ctx, 1, 2, "second", at.Add(time.Hour))
	require.NoError(t, err)

	ev, err := repo.FindLastEventByCreator(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, second, ev.ID)
}

func TestReminders(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	seedUsers(t, repo, 1, 2)

	at := time.Date(2025, time.July, 1, 10, 0, 0, 0, time.UTC)
	id, err := repo.CreateEvent(ctx, 1, 2, "sync", at)
	require.NoError(t, err)

	require.NoError(t, repo.CreateReminder(ctx, id, at.Add(-2*time.Hour)))
	require.NoError(t, repo.CreateReminder(ctx, id, at.Add(-24*time.Hour)))

	times, err := repo.ListReminders(ctx, id)
	require.NoError(t, err)
	require.Len(t, times, 2)
	assert.True(t, times[0].Before(times[1]))

	pending, err := repo.ListPendingReminders(ctx, at.Add(-3*time.Hour))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, id, pending[0].EventID)
	assert.True(t, pending[0].At.Equal(at.Add(-2*time.Hour)))

	require.NoError(t, repo.DeleteReminders(ctx, id))
	times, err = repo.ListReminders(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, times)
}
