package syncfix

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/oceanBigOne/mre-who-am-i/internal/adapter/metrics"
)

var ErrInvalidInterval = errors.New("sync interval must be positive")

// Scheduler fires its registered actions no more than once per interval.
type Scheduler struct {
	clock    clockwork.Clock
	interval time.Duration
	metrics  *metrics.SchedulerMetrics

	mu       sync.Mutex
	actions  []func()
	lastFire time.Time
	fired    bool
	pending  bool
	timer    clockwork.Timer
	gen      uint64
	stopped  bool
}

// New creates a scheduler. The interval is fixed for the scheduler's lifetime.
func New(interval time.Duration, clock clockwork.Clock, m *metrics.SchedulerMetrics) (*Scheduler, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	return &Scheduler{
		clock:    clock,
		interval: interval,
		metrics:  m,
	}, nil
}

// Interval returns the minimum spacing between firings.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Register adds fn to the actions invoked on every firing, after those already registered.
func (s *Scheduler) Register(fn func()) {
	s.mu.Lock()
	s.actions = append(s.actions, fn)
	s.mu.Unlock()
}

// Request asks for a firing soon. It fires immediately when the last firing is at
// least one interval old, otherwise it arms one deferred firing for the end of the
// cooldown. Requests made before any action is registered are dropped.
func (s *Scheduler) Request() {
	s.mu.Lock()
	if s.stopped || len(s.actions) == 0 {
		s.mu.Unlock()
		s.count(metrics.OutcomeDropped)
		return
	}

	now := s.clock.Now()
	if !s.fired || now.Sub(s.lastFire) >= s.interval {
		actions := s.markFired(now)
		s.mu.Unlock()
		s.count(metrics.OutcomeImmediate)
		s.fire(actions)
		return
	}

	if s.pending {
		s.mu.Unlock()
		s.count(metrics.OutcomeCoalesced)
		return
	}

	s.pending = true
	gen := s.gen
	s.timer = s.clock.AfterFunc(s.lastFire.Add(s.interval).Sub(now), func() { s.deferred(gen) })
	s.mu.Unlock()
	s.count(metrics.OutcomeDeferred)
}

// Stop disarms any pending deferred firing. Later requests are dropped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	s.pending = false
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// deferred runs on the timer goroutine. A callback armed before the latest firing
// is stale: its request was served and Stop on its timer may have come too late.
func (s *Scheduler) deferred(gen uint64) {
	s.mu.Lock()
	if s.stopped || gen != s.gen || !s.pending {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	actions := s.markFired(s.clock.Now())
	s.mu.Unlock()

	s.fire(actions)
}

// markFired must be called with s.mu held.
func (s *Scheduler) markFired(now time.Time) []func() {
	s.fired = true
	s.lastFire = now
	s.pending = false
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	actions := make([]func(), len(s.actions))
	copy(actions, s.actions)
	return actions
}

func (s *Scheduler) fire(actions []func()) {
	if s.metrics != nil {
		s.metrics.Firings.Inc()
	}
	for i, action := range actions {
		s.invoke(i, action)
	}
}

func (s *Scheduler) invoke(index int, action func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Sync action panic recovered", "action", index, "panic", r)
			if s.metrics != nil {
				s.metrics.ActionPanics.Inc()
			}
		}
	}()
	action()
}

func (s *Scheduler) count(outcome string) {
	if s.metrics != nil {
		s.metrics.Requests.WithLabelValues(outcome).Inc()
	}
}
