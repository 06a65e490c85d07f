package coordinator

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// RefreshScheduler drives a recurring callback on a fixed interval with an
// in-flight guard: a tick that fires while a previous tick's work is still
// running is skipped, not queued, so a slow collaborator plus a short
// interval can never stack overlapping runs.
//
// Lifecycle: Stopped -> Start -> Running -> Stop -> Stopped. Start while
// Running, Stop while Stopped, and Reconfigure while Stopped are all no-ops;
// inconsistent caller lifecycle management must not crash the scheduler. The
// owner must call Stop before discarding the scheduler.
type RefreshScheduler struct {
	clock    clockwork.Clock
	callback func(context.Context)

	mu       sync.Mutex
	running  bool
	inFlight bool
	stop     chan struct{}
}

// NewRefreshScheduler creates a scheduler that invokes callback on each
// non-skipped tick.
func NewRefreshScheduler(clock clockwork.Clock, callback func(context.Context)) *RefreshScheduler {
	return &RefreshScheduler{clock: clock, callback: callback}
}

// Start begins ticking every interval. No-op when already running or when
// interval is not positive.
func (s *RefreshScheduler) Start(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running || interval <= 0 {
		return
	}

	s.running = true
	stop := make(chan struct{})
	s.stop = stop

	ticker := s.clock.NewTicker(interval)
	go s.run(ticker, stop)
}

// Stop cancels future ticks. Idempotent. Work already in flight completes;
// a tick dispatched around the same moment re-checks the stop channel and is
// suppressed rather than started.
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	close(s.stop)
	s.stop = nil
}

// Reconfigure restarts the timer with a new interval: the pending tick's
// remaining delay is discarded, not adjusted. No-op while stopped.
func (s *RefreshScheduler) Reconfigure(interval time.Duration) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.Stop()
	s.Start(interval)
}

// Running reports whether the scheduler is currently ticking.
func (s *RefreshScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *RefreshScheduler) run(ticker clockwork.Ticker, stop chan struct{}) {
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			s.dispatch(stop)
		}
	}
}

// dispatch claims the in-flight slot unless one is already taken or the
// scheduler stopped, then hands off to invoke.
func (s *RefreshScheduler) dispatch(stop chan struct{}) {
	s.mu.Lock()
	if !s.running || s.stop != stop || s.inFlight {
		s.mu.Unlock()
		return
	}
	s.inFlight = true
	s.mu.Unlock()

	go s.invoke(stop)
}

// invoke re-checks the stop channel before calling back: a dispatch that
// claimed the slot just as Stop closed the channel releases it here instead
// of running against a stopped scheduler.
func (s *RefreshScheduler) invoke(stop chan struct{}) {
	s.mu.Lock()
	if !s.running || s.stop != stop {
		s.inFlight = false
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()
	s.callback(context.Background())
}
