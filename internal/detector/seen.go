package detector

import (
	"sync"
	"time"
)

// SeenTracker remembers which trades have already been alerted, so a
// trade surfacing across consecutive polls of an overlapping
// recent-trades window is pushed at most once per retention horizon.
type SeenTracker struct {
	mu        sync.Mutex
	seen      map[string]time.Time // tradeID -> first alerted at
	retention time.Duration
}

// DefaultSeenRetention is the default retention horizon.
const DefaultSeenRetention = 24 * time.Hour

// NewSeenTracker creates a SeenTracker with the given retention horizon.
func NewSeenTracker(retention time.Duration) *SeenTracker {
	if retention <= 0 {
		retention = DefaultSeenRetention
	}
	return &SeenTracker{
		seen:      make(map[string]time.Time),
		retention: retention,
	}
}

// ShouldAlert reports whether tradeID has not been alerted within the
// retention horizon, and marks it seen in the same critical section.
// Two concurrent calls for the same identifier cannot both return true.
func (t *SeenTracker) ShouldAlert(tradeID string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if at, ok := t.seen[tradeID]; ok && now.Sub(at) < t.retention {
		return false
	}
	t.seen[tradeID] = now
	return true
}

// Len returns the number of tracked entries, including any not yet purged.
func (t *SeenTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}

// Cleanup purges entries older than the retention horizon.
// Should be called periodically to bound memory.
func (t *SeenTracker) Cleanup(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, at := range t.seen {
		if now.Sub(at) >= t.retention {
			delete(t.seen, id)
		}
	}
}
