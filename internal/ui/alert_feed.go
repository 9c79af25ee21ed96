package ui

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/polyshadow/engine/internal/store"
)

// AlertFeedView displays dispatched alerts, newest first.
type AlertFeedView struct {
	list     *tview.List
	alerts   []store.AlertPayload
	maxItems int
}

// NewAlertFeedView creates an alert feed view.
func NewAlertFeedView() *AlertFeedView {
	list := tview.NewList().
		ShowSecondaryText(true)

	list.SetTitle(" 🚨 Alerts ").SetBorder(true)

	return &AlertFeedView{
		list:     list,
		alerts:   make([]store.AlertPayload, 0, 50),
		maxItems: 50,
	}
}

// Widget returns the tview primitive.
func (v *AlertFeedView) Widget() tview.Primitive {
	return v.list
}

// AddAlert prepends an alert to the feed.
func (v *AlertFeedView) AddAlert(alert store.AlertPayload) {
	v.alerts = append([]store.AlertPayload{alert}, v.alerts...)
	if len(v.alerts) > v.maxItems {
		v.alerts = v.alerts[:v.maxItems]
	}
	v.rebuildList()
}

// rebuildList redraws the list from the retained alerts.
func (v *AlertFeedView) rebuildList() {
	v.list.Clear()

	if len(v.alerts) == 0 {
		v.list.AddItem("No alerts yet", "", 0, nil)
		return
	}

	for _, alert := range v.alerts {
		main, secondary := formatAlert(alert)
		v.list.AddItem(main, secondary, 0, nil)
	}

	v.list.SetTitle(fmt.Sprintf(" 🚨 Alerts (%d) ", len(v.alerts)))
}

// formatAlert renders one alert as list item text.
func formatAlert(alert store.AlertPayload) (string, string) {
	var icon string
	switch alert.Tier {
	case store.TierGhost:
		icon = "👻"
	case store.TierWhale:
		icon = "🐳"
	default:
		icon = "🦈"
	}

	question := alert.MarketQuestion
	if len(question) > 40 {
		question = question[:40] + "..."
	}

	main := fmt.Sprintf("%s %s %s  score %d",
		alert.Timestamp.Format("15:04:05"), icon, alert.Tier, alert.Score.Score)

	nonce := "nonce ?"
	if alert.AgeKnown {
		nonce = fmt.Sprintf("nonce %d", alert.Nonce)
	}

	secondary := fmt.Sprintf("%s | %s $%.0f @ %.0f%% | %s | %s",
		question, alert.Outcome, alert.SizeUSD, alert.Odds*100,
		truncateAddress(alert.Wallet), nonce)

	return main, secondary
}

// truncateAddress truncates a wallet address for display.
func truncateAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
