// Package monitor drives the detection pipeline: fetch, filter, enrich,
// score, classify, de-duplicate, dispatch.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/polyshadow/engine/internal/chain"
	"github.com/polyshadow/engine/internal/config"
	"github.com/polyshadow/engine/internal/detector"
	"github.com/polyshadow/engine/internal/metrics"
	"github.com/polyshadow/engine/internal/store"
)

// TradeSource yields recent trade events for politically tagged markets.
// Callers must not assume events are unique across calls.
type TradeSource interface {
	FetchRecentPoliticalTrades(ctx context.Context) ([]store.TradeEvent, error)
}

// NonceResolver resolves a wallet to its current transaction count.
type NonceResolver interface {
	ResolveTransactionCount(ctx context.Context, wallet string) (uint64, error)
}

// Notifier renders and delivers a structured alert.
type Notifier interface {
	Dispatch(ctx context.Context, alert store.AlertPayload) error
}

// ErrorReporter is implemented by notifiers that can surface degraded
// engine status alongside alerts.
type ErrorReporter interface {
	SendError(ctx context.Context, errMsg string) error
}

// cleanupInterval paces periodic cache and tracker sweeps.
const cleanupInterval = 5 * time.Minute

// degradedCycleThreshold is how many consecutive skipped cycles trigger
// an error notification.
const degradedCycleThreshold = 3

// Monitor owns the recurring poll cycle and all pipeline state.
type Monitor struct {
	cfg        *config.Config
	source     TradeSource
	resolver   NonceResolver
	cache      *chain.NonceCache
	scorer     *detector.Scorer
	classifier *detector.Classifier
	seen       *detector.SeenTracker
	notifier   Notifier
	tracker    *metrics.Tracker

	// liveChan optionally feeds real-time trades into the same pipeline.
	liveChan <-chan store.TradeEvent

	// alertSink optionally mirrors dispatched alerts (for the TUI).
	alertSink chan<- store.AlertPayload

	// consecutiveSkips counts fetch failures since the last good cycle.
	// Only touched from the Run goroutine.
	consecutiveSkips int
}

// New creates a Monitor with fresh cache and dedup state.
func New(cfg *config.Config, source TradeSource, resolver NonceResolver,
	notifier Notifier, tracker *metrics.Tracker) *Monitor {

	return &Monitor{
		cfg:        cfg,
		source:     source,
		resolver:   resolver,
		cache:      chain.NewNonceCache(cfg.NonceCacheTTL),
		scorer:     detector.NewScorer(cfg),
		classifier: detector.NewClassifier(cfg),
		seen:       detector.NewSeenTracker(cfg.SeenRetention),
		notifier:   notifier,
		tracker:    tracker,
	}
}

// SetLiveTrades wires a channel of live trades into the pipeline.
// Must be called before Run.
func (m *Monitor) SetLiveTrades(ch <-chan store.TradeEvent) {
	m.liveChan = ch
}

// SetAlertSink mirrors dispatched alerts to ch without blocking.
// Must be called before Run.
func (m *Monitor) SetAlertSink(ch chan<- store.AlertPayload) {
	m.alertSink = ch
}

// Run executes poll cycles until ctx is cancelled. No cycle failure is
// fatal; fetch errors skip the cycle and the loop continues.
func (m *Monitor) Run(ctx context.Context) {
	slog.Info("monitor_started",
		"poll_interval", m.cfg.PollInterval,
		"min_trade_usd", m.cfg.MinTradeUSD,
		"max_odds", m.cfg.MaxContrarianOdds,
	)

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	cleanup := time.NewTicker(cleanupInterval)
	defer cleanup.Stop()

	m.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("monitor_stopped")
			return
		case <-ticker.C:
			m.runCycle(ctx)
		case trade, ok := <-m.liveChan:
			if !ok {
				m.liveChan = nil
				continue
			}
			m.tracker.TradesObserved(1)
			if m.eligible(trade) {
				m.tracker.TradeEligible()
				m.processTrade(ctx, trade)
			}
		case <-cleanup.C:
			now := time.Now()
			m.cache.Cleanup(now)
			m.seen.Cleanup(now)
		}
	}
}

// runCycle executes one fetch-filter-enrich-score-dispatch pass.
func (m *Monitor) runCycle(ctx context.Context) {
	start := time.Now()

	trades, err := m.source.FetchRecentPoliticalTrades(ctx)
	if err != nil {
		slog.Warn("fetch_failed_skipping_cycle", "error", err)
		m.tracker.CycleSkipped()
		m.consecutiveSkips++
		if m.consecutiveSkips%degradedCycleThreshold == 0 {
			m.reportDegraded(ctx, err)
		}
		return
	}
	m.consecutiveSkips = 0

	m.tracker.TradesObserved(len(trades))

	var eligible []store.TradeEvent
	for _, trade := range trades {
		if m.eligible(trade) {
			m.tracker.TradeEligible()
			eligible = append(eligible, trade)
		}
	}

	// Enrichment lookups for distinct trades are independent; run them
	// with bounded concurrency so one slow RPC doesn't stretch the cycle.
	sem := make(chan struct{}, m.cfg.EnrichConcurrency)
	var wg sync.WaitGroup

	for _, trade := range eligible {
		wg.Add(1)
		go func(trade store.TradeEvent) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			m.processTrade(ctx, trade)
		}(trade)
	}

	wg.Wait()

	m.tracker.CycleCompleted()
	slog.Info("cycle_complete",
		"trades", len(trades),
		"eligible", len(eligible),
		"duration", time.Since(start),
	)
}

// eligible applies the base filter: politics category, BUY side,
// minimum size, and odds at or below the contrarian ceiling.
func (m *Monitor) eligible(trade store.TradeEvent) bool {
	if !strings.EqualFold(trade.Category, "politics") {
		return false
	}
	if !strings.EqualFold(trade.Side, "BUY") {
		return false
	}
	if trade.SizeUSD < m.cfg.MinTradeUSD {
		return false
	}
	if trade.Price <= 0 || trade.Price > m.cfg.MaxContrarianOdds {
		return false
	}
	return true
}

// processTrade runs one eligible trade through enrichment, scoring,
// classification, the dedup gate, and dispatch. Lookup failures degrade
// to age-unknown; they never abort the batch.
func (m *Monitor) processTrade(ctx context.Context, trade store.TradeEvent) {
	age := m.resolveAge(ctx, trade.Wallet)

	result := m.scorer.Score(trade, age)
	tier := m.classifier.Classify(result)

	if !m.seen.ShouldAlert(trade.TradeID, time.Now()) {
		m.tracker.AlertSuppressed()
		return
	}

	alert := store.AlertPayload{
		ID:             uuid.NewString(),
		Tier:           tier,
		Score:          result,
		MarketQuestion: trade.MarketQuestion,
		MarketURL:      trade.MarketURL(),
		Outcome:        trade.Outcome,
		Odds:           trade.Price,
		CurrentOdds:    trade.CurrentOdds,
		SizeUSD:        trade.SizeUSD,
		Wallet:         trade.Wallet,
		WalletURL:      "https://polygonscan.com/address/" + trade.Wallet,
		Nonce:          age.Nonce,
		AgeKnown:       age.Known,
		TraderName:     trade.TraderName,
		Timestamp:      trade.Timestamp,
	}

	if err := m.notifier.Dispatch(ctx, alert); err != nil {
		// The trade stays marked seen: a flapping notifier must not
		// cause alert storms on the next cycle.
		slog.Error("dispatch_failed", "trade", trade.TradeID, "error", err)
		m.tracker.DispatchFailed()
	} else {
		m.tracker.AlertSent(tier.String())
		slog.Info("alert_dispatched",
			"tier", tier.String(),
			"score", result.Score,
			"market", trade.MarketQuestion,
			"size_usd", trade.SizeUSD,
			"wallet", trade.Wallet,
			"age_known", age.Known,
		)
	}

	if m.alertSink != nil {
		select {
		case m.alertSink <- alert:
		default:
		}
	}
}

// reportDegraded surfaces repeated skipped cycles through the notifier,
// so a long-unattended engine does not fail silently.
func (m *Monitor) reportDegraded(ctx context.Context, fetchErr error) {
	reporter, ok := m.notifier.(ErrorReporter)
	if !ok {
		return
	}

	msg := fmt.Sprintf("Trade fetch failed %d cycles in a row: %v", m.consecutiveSkips, fetchErr)
	if err := reporter.SendError(ctx, msg); err != nil {
		slog.Warn("error_notification_failed", "error", err)
	}
}

// resolveAge returns age evidence for a wallet, consulting the cache
// before the chain.
func (m *Monitor) resolveAge(ctx context.Context, wallet string) detector.AgeEvidence {
	now := time.Now()

	if nonce, ok := m.cache.Get(wallet, now); ok {
		m.tracker.CacheHit()
		return detector.AgeEvidence{Nonce: nonce, Known: true}
	}
	m.tracker.CacheMiss()

	nonce, err := m.resolver.ResolveTransactionCount(ctx, wallet)
	if err != nil {
		m.tracker.LookupFailed()
		slog.Warn("nonce_lookup_failed", "wallet", wallet, "error", err)
		return detector.AgeEvidence{Known: false}
	}

	m.cache.Put(wallet, nonce, now)
	return detector.AgeEvidence{Nonce: nonce, Known: true}
}
