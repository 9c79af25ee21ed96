package detector

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestShouldAlertOncePerRetention(t *testing.T) {
	tracker := NewSeenTracker(24 * time.Hour)
	now := time.Now()

	if !tracker.ShouldAlert("0xaaa", now) {
		t.Fatal("first sighting should alert")
	}
	if tracker.ShouldAlert("0xaaa", now) {
		t.Error("second sighting should be suppressed")
	}
	if tracker.ShouldAlert("0xaaa", now.Add(time.Hour)) {
		t.Error("sighting within retention should be suppressed")
	}
	if !tracker.ShouldAlert("0xbbb", now) {
		t.Error("distinct trade should alert")
	}
}

func TestShouldAlertAfterRetentionExpiry(t *testing.T) {
	tracker := NewSeenTracker(time.Hour)
	now := time.Now()

	if !tracker.ShouldAlert("0xaaa", now) {
		t.Fatal("first sighting should alert")
	}
	if !tracker.ShouldAlert("0xaaa", now.Add(time.Hour)) {
		t.Error("sighting at retention boundary should alert again")
	}
}

func TestShouldAlertConcurrent(t *testing.T) {
	tracker := NewSeenTracker(24 * time.Hour)
	now := time.Now()

	var alerted int64
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tracker.ShouldAlert("0xsame", now) {
				atomic.AddInt64(&alerted, 1)
			}
		}()
	}
	wg.Wait()

	if alerted != 1 {
		t.Errorf("concurrent ShouldAlert returned true %d times, want exactly 1", alerted)
	}
}

func TestSeenCleanup(t *testing.T) {
	tracker := NewSeenTracker(time.Hour)
	now := time.Now()

	tracker.ShouldAlert("0xold", now)
	tracker.ShouldAlert("0xnew", now.Add(30*time.Minute))

	tracker.Cleanup(now.Add(time.Hour))

	if got := tracker.Len(); got != 1 {
		t.Errorf("Len() = %d after cleanup, want 1", got)
	}
	if tracker.ShouldAlert("0xnew", now.Add(40*time.Minute)) {
		t.Error("unexpired entry should survive cleanup")
	}
}

func TestSeenTrackerZeroRetentionDefaults(t *testing.T) {
	tracker := NewSeenTracker(0)

	if !tracker.ShouldAlert("0xaaa", time.Now()) {
		t.Fatal("first sighting should alert")
	}
	if tracker.ShouldAlert("0xaaa", time.Now()) {
		t.Error("default retention should suppress the repeat")
	}
}
