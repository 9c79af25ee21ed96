package ui

import (
	"fmt"
	"time"

	"github.com/rivo/tview"

	"github.com/polyshadow/engine/internal/metrics"
)

// StatsDashboardView displays engine health and pipeline counters.
type StatsDashboardView struct {
	textView *tview.TextView
}

// NewStatsDashboardView creates a stats dashboard view.
func NewStatsDashboardView() *StatsDashboardView {
	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)

	textView.SetTitle(" Stats ").SetBorder(true)

	return &StatsDashboardView{textView: textView}
}

// Widget returns the tview primitive.
func (v *StatsDashboardView) Widget() tview.Primitive {
	return v.textView
}

// Update refreshes the stats display.
func (v *StatsDashboardView) Update(snapshot metrics.Snapshot) {
	v.textView.Clear()

	wsColor := "red"
	if snapshot.WebSocketStatus == "connected" {
		wsColor = "green"
	}

	lastCycle := "never"
	if !snapshot.LastCycle.IsZero() {
		lastCycle = formatTimeAgo(snapshot.LastCycle)
	}

	cacheTotal := snapshot.CacheHits + snapshot.CacheMisses
	hitRate := 0.0
	if cacheTotal > 0 {
		hitRate = float64(snapshot.CacheHits) / float64(cacheTotal) * 100
	}

	text := fmt.Sprintf(`[yellow]System[-]
Uptime: %s
WebSocket: [%s]%s[-]
Last Cycle: %s
Cycles: %d run, %d skipped

[yellow]Pipeline[-]
Trades: %d observed, %d eligible
Nonce Cache: %.0f%% hit (%d/%d)
Lookup Failures: %d

[yellow]Alerts[-]
S-GHOST: %d
A-WHALE: %d
B-SHARK: %d
Suppressed: %d
Dispatch Errors: %d
`,
		formatDuration(snapshot.Uptime),
		wsColor, snapshot.WebSocketStatus,
		lastCycle,
		snapshot.CyclesRun, snapshot.CyclesSkipped,
		snapshot.TradesObserved, snapshot.TradesEligible,
		hitRate, snapshot.CacheHits, cacheTotal,
		snapshot.LookupFailures,
		snapshot.AlertsByTier["S-GHOST"],
		snapshot.AlertsByTier["A-WHALE"],
		snapshot.AlertsByTier["B-SHARK"],
		snapshot.AlertsSuppressed,
		snapshot.DispatchErrors,
	)

	fmt.Fprint(v.textView, text)
}

// formatDuration formats a duration in human-readable form.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// formatTimeAgo formats a time as "X ago".
func formatTimeAgo(t time.Time) string {
	elapsed := time.Since(t)

	if elapsed < time.Minute {
		return fmt.Sprintf("%.0fs ago", elapsed.Seconds())
	}
	if elapsed < time.Hour {
		return fmt.Sprintf("%.0fm ago", elapsed.Minutes())
	}
	return fmt.Sprintf("%.0fh ago", elapsed.Hours())
}
