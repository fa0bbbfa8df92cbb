package scheduler

import (
	"testing"
	"time"

	"github.com/jmhodges/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestScheduler() (*Scheduler, clock.FakeClock) {
	clk := clock.NewFake()
	return New(zap.NewNop(), clk), clk
}

func waitFire(t *testing.T, s *Scheduler) Fire {
	t.Helper()
	select {
	case f := <-s.Fires():
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("no fire within deadline")
		return Fire{}
	}
}

func assertNoFire(t *testing.T, s *Scheduler) {
	t.Helper()
	select {
	case f := <-s.Fires():
		t.Fatalf("unexpected fire: %+v", f)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestKeys(t *testing.T) {
	at := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	key := ReminderKey(42, at)
	assert.Equal(t, "reminder_42_1748772000", key)
	assert.True(t, len(EventKeyPrefix(42)) < len(key))
	assert.Contains(t, key, EventKeyPrefix(42))
	assert.NotContains(t, key, EventKeyPrefix(4))
}

func TestScheduleFires(t *testing.T) {
	s, clk := newTestScheduler()

	at := clk.Now().Add(time.Hour)
	key := ReminderKey(7, at)
	s.Schedule(key, at, 7)
	require.True(t, s.Has(key))

	clk.Add(30 * time.Minute)
	assertNoFire(t, s)
	require.True(t, s.Has(key))

	clk.Add(31 * time.Minute)
	f := waitFire(t, s)
	assert.Equal(t, key, f.Key)
	assert.Equal(t, int64(7), f.EventID)
	assert.True(t, f.At.Equal(at))

	// Fired jobs leave the registry; each key fires at most once.
	assert.False(t, s.Has(key))
	clk.Add(time.Hour)
	assertNoFire(t, s)
}

func TestScheduleIdempotentByKey(t *testing.T) {
	s, clk := newTestScheduler()

	at := clk.Now().Add(time.Minute)
	key := ReminderKey(1, at)
	s.Schedule(key, at, 1)
	s.Schedule(key, at, 1)
	s.Schedule(key, at, 1)

	clk.Add(2 * time.Minute)
	waitFire(t, s)
	assertNoFire(t, s)
}

func TestSchedulePastInstantFiresImmediately(t *testing.T) {
	s, clk := newTestScheduler()

	at := clk.Now().Add(-time.Minute)
	s.Schedule(ReminderKey(3, at), at, 3)
	clk.Add(time.Millisecond)
	f := waitFire(t, s)
	assert.Equal(t, int64(3), f.EventID)

	// Exactly one fire, and later advances find no leftover job.
	assertNoFire(t, s)
	assert.False(t, s.Has(ReminderKey(3, at)))
	clk.Add(time.Hour)
	assertNoFire(t, s)
}

func TestCancelledJobNeverFires(t *testing.T) {
	s, clk := newTestScheduler()

	at := clk.Now().Add(time.Hour)
	key := ReminderKey(9, at)
	s.Schedule(key, at, 9)
	require.Equal(t, 1, s.CancelPrefix(EventKeyPrefix(9)))
	require.False(t, s.Has(key))

	// Advancing past the instant after cancellation stays silent.
	clk.Add(2 * time.Hour)
	assertNoFire(t, s)
}

func TestCancelPrefix(t *testing.T) {
	s, clk := newTestScheduler()
	now := clk.Now()

	s.Schedule(ReminderKey(10, now.Add(time.Hour)), now.Add(time.Hour), 10)
	s.Schedule(ReminderKey(10, now.Add(2*time.Hour)), now.Add(2*time.Hour), 10)
	s.Schedule(ReminderKey(11, now.Add(time.Hour)), now.Add(time.Hour), 11)

	n := s.CancelPrefix(EventKeyPrefix(10))
	assert.Equal(t, 2, n)
	assert.False(t, s.Has(ReminderKey(10, now.Add(time.Hour))))
	assert.False(t, s.Has(ReminderKey(10, now.Add(2*time.Hour))))
	assert.True(t, s.Has(ReminderKey(11, now.Add(time.Hour))))

	// Only event 11 survives to fire.
	clk.Add(3 * time.Hour)
	f := waitFire(t, s)
	assert.Equal(t, int64(11), f.EventID)
	assertNoFire(t, s)
}

func TestCancelPrefixDoesNotMatchOtherIDs(t *testing.T) {
	s, clk := newTestScheduler()
	now := clk.Now()

	// Event 1 vs event 12: the trailing underscore keeps prefixes distinct.
	s.Schedule(ReminderKey(1, now.Add(time.Hour)), now.Add(time.Hour), 1)
	s.Schedule(ReminderKey(12, now.Add(time.Hour)), now.Add(time.Hour), 12)

	assert.Equal(t, 1, s.CancelPrefix(EventKeyPrefix(1)))
	assert.True(t, s.Has(ReminderKey(12, now.Add(time.Hour))))
}
