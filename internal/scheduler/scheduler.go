package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jmhodges/clock"
	"go.uber.org/zap"
)

// ReminderKey derives the job key for one reminder of one event. The event id
// prefix lets every job of an event be cancelled without a separate index.
func ReminderKey(eventID int64, at time.Time) string {
	return fmt.Sprintf("reminder_%d_%d", eventID, at.UTC().Unix())
}

// EventKeyPrefix matches every job key of the given event.
func EventKeyPrefix(eventID int64) string {
	return fmt.Sprintf("reminder_%d_", eventID)
}

// Fire describes one due reminder handed to the dispatch loop.
type Fire struct {
	Key     string
	EventID int64
	At      time.Time
}

// Firer handles a due reminder. The service implements it by reading the
// event from the store at fire time and dispatching notifications.
type Firer interface {
	FireReminder(ctx context.Context, eventID int64, at time.Time)
}

// Scheduler keeps one timer per registered job, keyed so that registration
// is idempotent and cancellation works by event-id prefix. Expired jobs only
// push into the fires channel; the Run loop is the single place due jobs are
// handled, keeping transport access off the per-job goroutines.
type Scheduler struct {
	log   *zap.Logger
	clk   clock.Clock
	mu    sync.Mutex
	jobs  map[string]*job
	fires chan Fire
}

type job struct {
	eventID int64
	at      time.Time
	timer   *clock.Timer
	done    chan struct{}
}

// New creates a Scheduler. The clock is injected so tests can drive time.
func New(log *zap.Logger, clk clock.Clock) *Scheduler {
	return &Scheduler{
		log:   log,
		clk:   clk,
		jobs:  make(map[string]*job),
		fires: make(chan Fire, 64),
	}
}

// Schedule registers a job firing at the given instant. Registering an
// already-known key is a no-op. An instant in the past fires immediately.
func (s *Scheduler) Schedule(key string, at time.Time, eventID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[key]; ok {
		return
	}

	delay := at.Sub(s.clk.Now())
	if delay < 0 {
		delay = 0
	}

	j := &job{eventID: eventID, at: at, done: make(chan struct{})}
	j.timer = s.clk.NewTimer(delay)
	s.jobs[key] = j

	// One goroutine per armed job. Cancellation closes done so the
	// goroutine exits without firing.
	go func() {
		select {
		case <-j.timer.C:
			s.fire(key)
		case <-j.done:
		}
	}()

	s.log.Debug("job scheduled",
		zap.String("key", key),
		zap.Time("at", at),
	)
}

// Has reports whether a job with the exact key is registered.
func (s *Scheduler) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[key]
	return ok
}

// CancelPrefix stops and removes every job whose key starts with prefix.
// It is synchronous: once it returns, none of the matched jobs will fire.
// A job mid-fire when cancellation arrives may still complete.
func (s *Scheduler) CancelPrefix(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key, j := range s.jobs {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		j.timer.Stop()
		close(j.done)
		delete(s.jobs, key)
		n++
	}
	if n > 0 {
		s.log.Info("jobs cancelled", zap.String("prefix", prefix), zap.Int("count", n))
	}
	return n
}

// fire runs on the job's waiter goroutine: remove the job first so each key fires
// at most once, then hand it to the dispatch loop.
func (s *Scheduler) fire(key string) {
	s.mu.Lock()
	j, ok := s.jobs[key]
	if ok {
		delete(s.jobs, key)
	}
	s.mu.Unlock()
	if !ok {
		// Cancelled between expiry and lock acquisition.
		return
	}
	s.fires <- Fire{Key: key, EventID: j.eventID, At: j.at}
}

// Fires exposes the due-job channel; tests consume it directly.
func (s *Scheduler) Fires() <-chan Fire {
	return s.fires
}

// Run consumes due jobs and dispatches them until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context, f Firer) {
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case due := <-s.fires:
			s.log.Info("reminder due",
				zap.String("key", due.Key),
				zap.Int64("eventID", due.EventID),
			)
			f.FireReminder(ctx, due.EventID, due.At)
		}
	}
}
