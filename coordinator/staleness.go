package coordinator

import (
	"sync"
	"time"
)

// StalenessTracker records when a view was last brought fresh and answers
// whether it has aged past a threshold. It is stale until the first MarkFresh
// call; the only state it holds is the last-fresh instant.
type StalenessTracker struct {
	mu        sync.Mutex
	lastFresh time.Time
	marked    bool
}

// MarkFresh records at as the most recent fresh instant.
func (t *StalenessTracker) MarkFresh(at time.Time) {
	t.mu.Lock()
	t.lastFresh = at
	t.marked = true
	t.mu.Unlock()
}

// IsStale reports whether the tracked view is older than maxAge at the given
// instant. The boundary is inclusive: exactly maxAge old is stale.
func (t *StalenessTracker) IsStale(now time.Time, maxAge time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.marked {
		return true
	}
	return now.Sub(t.lastFresh) >= maxAge
}

// LastFresh returns the last-fresh instant and whether one was ever recorded.
func (t *StalenessTracker) LastFresh() (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastFresh, t.marked
}
