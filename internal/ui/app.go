// Package ui provides an optional terminal dashboard for the engine.
package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/polyshadow/engine/internal/metrics"
	"github.com/polyshadow/engine/internal/store"
)

// App is the main TUI application.
type App struct {
	app    *tview.Application
	layout *tview.Flex

	alertFeed  *AlertFeedView
	liveTrades *LiveTradesView
	stats      *StatsDashboardView

	tradeChan   <-chan store.TradeEvent
	alertChan   <-chan store.AlertPayload
	tracker     *metrics.Tracker
	refreshRate time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates a TUI application over the given data channels.
func NewApp(tradeChan <-chan store.TradeEvent, alertChan <-chan store.AlertPayload,
	tracker *metrics.Tracker, refreshRate time.Duration) *App {

	if refreshRate <= 0 {
		refreshRate = 500 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		app:         tview.NewApplication(),
		alertFeed:   NewAlertFeedView(),
		liveTrades:  NewLiveTradesView(),
		stats:       NewStatsDashboardView(),
		tradeChan:   tradeChan,
		alertChan:   alertChan,
		tracker:     tracker,
		refreshRate: refreshRate,
		ctx:         ctx,
		cancel:      cancel,
	}

	app.setupLayout()
	app.setupKeyboard()

	return app
}

// setupLayout arranges the three panels.
func (a *App) setupLayout() {
	topRow := tview.NewFlex().
		AddItem(a.alertFeed.Widget(), 0, 2, false).
		AddItem(a.stats.Widget(), 0, 1, false)

	a.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(topRow, 0, 2, false).
		AddItem(a.liveTrades.Widget(), 0, 3, false)

	a.app.SetRoot(a.layout, true)
}

// setupKeyboard configures keyboard shortcuts.
func (a *App) setupKeyboard() {
	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			a.Stop()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'q', 'Q':
				a.Stop()
				return nil
			}
		}
		return event
	})
}

// Run starts the TUI application (blocking).
func (a *App) Run() error {
	go a.processTrades()
	go a.processAlerts()
	go a.updateLoop()

	if err := a.app.Run(); err != nil {
		return fmt.Errorf("app run failed: %w", err)
	}
	return nil
}

// Stop gracefully stops the application.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}

// processTrades feeds the live trades panel.
func (a *App) processTrades() {
	for {
		select {
		case <-a.ctx.Done():
			return
		case trade, ok := <-a.tradeChan:
			if !ok {
				return
			}
			a.app.QueueUpdateDraw(func() {
				a.liveTrades.AddTrade(trade)
			})
		}
	}
}

// processAlerts feeds the alert feed panel.
func (a *App) processAlerts() {
	for {
		select {
		case <-a.ctx.Done():
			return
		case alert, ok := <-a.alertChan:
			if !ok {
				return
			}
			a.app.QueueUpdateDraw(func() {
				a.alertFeed.AddAlert(alert)
			})
		}
	}
}

// updateLoop periodically refreshes the stats panel.
func (a *App) updateLoop() {
	ticker := time.NewTicker(a.refreshRate)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			snapshot := a.tracker.Snapshot()
			a.app.QueueUpdateDraw(func() {
				a.stats.Update(snapshot)
			})
		}
	}
}
