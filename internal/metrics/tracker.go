// Package metrics provides real-time metrics tracking for the engine.
package metrics

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time view of engine metrics.
type Snapshot struct {
	CyclesRun        int64
	CyclesSkipped    int64
	TradesObserved   int64
	TradesEligible   int64
	CacheHits        int64
	CacheMisses      int64
	LookupFailures   int64
	AlertsByTier     map[string]int64
	AlertsSuppressed int64
	DispatchErrors   int64
	Uptime           time.Duration
	LastCycle        time.Time
	WebSocketStatus  string
}

// Tracker provides thread-safe metrics tracking.
type Tracker struct {
	mu               sync.RWMutex
	cyclesRun        int64
	cyclesSkipped    int64
	tradesObserved   int64
	tradesEligible   int64
	cacheHits        int64
	cacheMisses      int64
	lookupFailures   int64
	alertsByTier     map[string]int64
	alertsSuppressed int64
	dispatchErrors   int64
	startTime        time.Time
	lastCycle        time.Time
	wsStatus         string
}

// NewTracker creates a Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		alertsByTier: make(map[string]int64),
		startTime:    time.Now(),
		wsStatus:     "disconnected",
	}
}

// CycleCompleted records a finished poll cycle.
func (t *Tracker) CycleCompleted() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cyclesRun++
	t.lastCycle = time.Now()
}

// CycleSkipped records a cycle abandoned due to a fetch failure.
func (t *Tracker) CycleSkipped() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cyclesSkipped++
	t.lastCycle = time.Now()
}

// TradesObserved adds n to the raw trade counter.
func (t *Tracker) TradesObserved(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tradesObserved += int64(n)
}

// TradeEligible records a trade that passed the base filter.
func (t *Tracker) TradeEligible() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tradesEligible++
}

// CacheHit records a nonce cache hit.
func (t *Tracker) CacheHit() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cacheHits++
}

// CacheMiss records a nonce cache miss.
func (t *Tracker) CacheMiss() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cacheMisses++
}

// LookupFailed records a failed nonce lookup.
func (t *Tracker) LookupFailed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lookupFailures++
}

// AlertSent records a dispatched alert by tier.
func (t *Tracker) AlertSent(tier string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.alertsByTier[tier]++
}

// AlertSuppressed records an alert stopped by the dedup gate.
func (t *Tracker) AlertSuppressed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.alertsSuppressed++
}

// DispatchFailed records a failed notification delivery.
func (t *Tracker) DispatchFailed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dispatchErrors++
}

// SetWebSocketStatus sets the WebSocket connection status.
func (t *Tracker) SetWebSocketStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.wsStatus = status
}

// Snapshot returns a point-in-time copy of all metrics.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	tiersCopy := make(map[string]int64, len(t.alertsByTier))
	for k, v := range t.alertsByTier {
		tiersCopy[k] = v
	}

	return Snapshot{
		CyclesRun:        t.cyclesRun,
		CyclesSkipped:    t.cyclesSkipped,
		TradesObserved:   t.tradesObserved,
		TradesEligible:   t.tradesEligible,
		CacheHits:        t.cacheHits,
		CacheMisses:      t.cacheMisses,
		LookupFailures:   t.lookupFailures,
		AlertsByTier:     tiersCopy,
		AlertsSuppressed: t.alertsSuppressed,
		DispatchErrors:   t.dispatchErrors,
		Uptime:           time.Since(t.startTime),
		LastCycle:        t.lastCycle,
		WebSocketStatus:  t.wsStatus,
	}
}
