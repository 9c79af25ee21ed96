// Package main is the entry point for the PolyShadow monitoring engine.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/polyshadow/engine/internal/chain"
	"github.com/polyshadow/engine/internal/config"
	"github.com/polyshadow/engine/internal/ingest"
	"github.com/polyshadow/engine/internal/metrics"
	"github.com/polyshadow/engine/internal/monitor"
	"github.com/polyshadow/engine/internal/notify"
	"github.com/polyshadow/engine/internal/store"
	"github.com/polyshadow/engine/internal/ui"
)

const (
	// TradeChannelBuffer is the size of the buffered live-trade channel
	TradeChannelBuffer = 1000
	// AlertChannelBuffer is the size of the buffered alert channel
	AlertChannelBuffer = 100
	// ShutdownGrace bounds how long in-flight work may run after a signal
	ShutdownGrace = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	slog.Info("polyshadow starting", "version", "1.0.0")

	slog.Info("config_loaded",
		"gamma_api_url", cfg.GammaAPIURL,
		"data_api_url", cfg.DataAPIURL,
		"polymarket_ws_url", cfg.PolymarketWSURL,
		"polygon_rpc", cfg.MaskedRPCURL(),
		"telegram_token", cfg.MaskedBotToken(),
		"poll_interval", cfg.PollInterval,
		"min_trade_usd", cfg.MinTradeUSD,
		"max_odds", cfg.MaxContrarianOdds,
		"fresh_wallet_nonce", cfg.FreshWalletNonce,
		"nonce_cache_ttl", cfg.NonceCacheTTL,
		"seen_retention", cfg.SeenRetention,
		"enrich_concurrency", cfg.EnrichConcurrency,
		"enable_tui", cfg.EnableTUI,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Collaborators
	source := ingest.NewClient(cfg.GammaAPIURL, cfg.DataAPIURL, cfg.MarketLimit, cfg.TradesPerMarket)

	ethClient, err := chain.Dial(ctx, cfg.PolygonRPCURL)
	if err != nil {
		slog.Error("failed to connect to polygon rpc", "error", err)
		os.Exit(1)
	}
	defer ethClient.Close()
	resolver := chain.NewResolver(ethClient, cfg.LookupTimeout, cfg.LookupRetries, cfg.LookupBackoff)

	notifier := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.TelegramThreadID)
	if err := notifier.SendStartup(ctx, cfg.MinTradeUSD, cfg.MaxContrarianOdds, cfg.FreshWalletNonce); err != nil {
		slog.Warn("startup_notification_failed", "error", err)
	}

	tracker := metrics.NewTracker()

	mon := monitor.New(cfg, source, resolver, notifier, tracker)

	// Live WebSocket feed into the same pipeline
	wsChan := make(chan store.TradeEvent, TradeChannelBuffer)
	listener := ingest.NewListener(cfg.PolymarketWSURL, source.Index(), wsChan)
	listener.OnStatusChange(tracker.SetWebSocketStatus)
	listener.Start(ctx)

	var tuiTradeChan chan store.TradeEvent
	alertChan := make(chan store.AlertPayload, AlertChannelBuffer)
	mon.SetAlertSink(alertChan)

	if cfg.EnableTUI {
		// Tee live trades so the dashboard sees them too
		tuiTradeChan = make(chan store.TradeEvent, TradeChannelBuffer)
		monChan := make(chan store.TradeEvent, TradeChannelBuffer)
		go teeTrades(ctx, wsChan, monChan, tuiTradeChan)
		mon.SetLiveTrades(monChan)
	} else {
		mon.SetLiveTrades(wsChan)
	}

	monDone := make(chan struct{})
	go func() {
		defer close(monDone)
		mon.Run(ctx)
	}()

	slog.Info("engine_started", "status", "monitoring politics markets")

	if cfg.EnableTUI {
		app := ui.NewApp(tuiTradeChan, alertChan, tracker, cfg.UIRefreshRate)

		go func() {
			if err := app.Run(); err != nil {
				slog.Error("tui_error", "error", err)
				cancel()
			}
		}()

		select {
		case sig := <-sigChan:
			slog.Info("shutdown_signal_received", "signal", sig.String())
			app.Stop()
		case <-ctx.Done():
			app.Stop()
		}
	} else {
		sig := <-sigChan
		slog.Info("shutdown_signal_received", "signal", sig.String())
	}

	cancel()

	// Graceful shutdown: stop the feed, then give in-flight work a
	// bounded grace period to finish.
	slog.Info("shutting_down", "status", "stopping listener")
	listener.Stop()

	select {
	case <-monDone:
	case <-time.After(ShutdownGrace):
		slog.Warn("shutdown_grace_expired")
	}

	slog.Info("shutdown_complete")
}

// teeTrades copies live trades to the monitor and, best effort, the TUI.
func teeTrades(ctx context.Context, in <-chan store.TradeEvent, mon chan<- store.TradeEvent, tui chan<- store.TradeEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case trade, ok := <-in:
			if !ok {
				return
			}
			select {
			case mon <- trade:
			default:
				slog.Warn("trade_channel_full", "dropped_trade", trade.TradeID)
			}
			select {
			case tui <- trade:
			default:
			}
		}
	}
}

// setupLogger creates a structured logger with the specified level.
// Format: 2025-01-04 14:32:01 [INFO]  message key=value
func setupLogger(levelStr string) *slog.Logger {
	var level slog.Level
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format("2006-01-02 15:04:05"))
				}
			}
			return a
		},
	}

	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler)
}
