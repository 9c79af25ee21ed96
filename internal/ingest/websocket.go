package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/polyshadow/engine/internal/store"
)

// Reconnection and heartbeat tuning.
const (
	InitialBackoff = 1 * time.Second
	MaxBackoff     = 60 * time.Second
	BackoffFactor  = 2.0
	JitterPercent  = 0.2

	HeartbeatTimeout = 60 * time.Second
	PongTimeout      = 10 * time.Second
	WriteTimeout     = 10 * time.Second
)

// Listener streams live trades from the Polymarket market channel into
// tradeChan, supplementing the poll cycle with real-time activity.
type Listener struct {
	url       string
	tradeChan chan<- store.TradeEvent
	index     *MarketIndex
	conn      *websocket.Conn
	connMu    sync.Mutex
	backoff   time.Duration
	lastMsg   time.Time
	lastMsgMu sync.RWMutex
	stopChan  chan struct{}
	wg        sync.WaitGroup
	statusFn  func(status string)
}

// NewListener creates a WebSocket listener. Trades for markets absent
// from index are dropped before reaching tradeChan.
func NewListener(url string, index *MarketIndex, tradeChan chan<- store.TradeEvent) *Listener {
	return &Listener{
		url:       url,
		tradeChan: tradeChan,
		index:     index,
		backoff:   InitialBackoff,
		stopChan:  make(chan struct{}),
	}
}

// OnStatusChange registers a callback invoked on connection status
// transitions ("connected", "disconnected"). Must be set before Start.
func (l *Listener) OnStatusChange(fn func(status string)) {
	l.statusFn = fn
}

// reportStatus notifies the registered callback, if any.
func (l *Listener) reportStatus(status string) {
	if l.statusFn != nil {
		l.statusFn(status)
	}
}

// Start begins the WebSocket listener with automatic reconnection.
func (l *Listener) Start(ctx context.Context) {
	l.wg.Add(1)
	go l.runLoop(ctx)

	l.wg.Add(1)
	go l.heartbeatMonitor(ctx)
}

// Stop gracefully shuts down the listener.
func (l *Listener) Stop() {
	close(l.stopChan)
	l.closeConnection()
	l.wg.Wait()
}

// runLoop handles connection, reading, and reconnection.
func (l *Listener) runLoop(ctx context.Context) {
	defer l.wg.Done()

	for {
		select {
		case <-ctx.Done():
			slog.Info("ws_loop_stopping", "reason", "context cancelled")
			return
		case <-l.stopChan:
			slog.Info("ws_loop_stopping", "reason", "stop signal")
			return
		default:
		}

		if err := l.connect(ctx); err != nil {
			slog.Error("ws_connect_failed", "error", err, "backoff", l.backoff)
			l.waitBackoff(ctx)
			continue
		}

		if err := l.readLoop(ctx); err != nil {
			slog.Warn("ws_read_error", "error", err)
		}

		l.closeConnection()

		select {
		case <-ctx.Done():
			return
		case <-l.stopChan:
			return
		default:
			l.waitBackoff(ctx)
		}
	}
}

// connect establishes the WebSocket connection and subscribes to trades.
func (l *Listener) connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	headers := http.Header{}
	headers.Set("Origin", "https://polymarket.com")

	// The market channel lives under the /market path
	url := l.url
	if !strings.HasSuffix(url, "/market") {
		url = strings.TrimSuffix(url, "/") + "/market"
	}

	conn, resp, err := dialer.DialContext(ctx, url, headers)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial failed with status %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("dial failed: %w", err)
	}

	l.connMu.Lock()
	l.conn = conn
	l.connMu.Unlock()

	// Reset backoff on successful connection
	l.backoff = InitialBackoff

	slog.Info("ws_connected", "endpoint", url)
	l.reportStatus("connected")

	if err := l.subscribe(); err != nil {
		return fmt.Errorf("subscribe failed: %w", err)
	}

	l.updateLastMsg()
	return nil
}

// subscribe sends the market-channel subscription for the tracked tokens.
func (l *Listener) subscribe() error {
	tokenIDs := l.index.TokenIDs()

	msg := map[string]interface{}{
		"type":       "market",
		"assets_ids": tokenIDs,
	}

	l.connMu.Lock()
	defer l.connMu.Unlock()

	if l.conn == nil {
		return fmt.Errorf("connection is nil")
	}

	l.conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
	if err := l.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to send subscribe message: %w", err)
	}

	slog.Info("ws_subscribed", "channel", "market", "asset_count", len(tokenIDs))
	return nil
}

// readLoop reads messages from the WebSocket.
func (l *Listener) readLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stopChan:
			return nil
		default:
		}

		l.connMu.Lock()
		conn := l.conn
		l.connMu.Unlock()

		if conn == nil {
			return fmt.Errorf("connection is nil")
		}

		conn.SetReadDeadline(time.Now().Add(HeartbeatTimeout + PongTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read error: %w", err)
		}

		l.updateLastMsg()
		l.handleMessage(message)
	}
}

// handleMessage parses a message and dispatches trade events.
func (l *Listener) handleMessage(data []byte) {
	events, msgType, err := parseWSMessage(data, l.index)
	if err != nil {
		slog.Debug("ws_parse_error", "error", err)
		return
	}

	if len(events) == 0 {
		if msgType != "" {
			slog.Debug("ws_message", "type", msgType)
		}
		return
	}

	for _, ev := range events {
		select {
		case l.tradeChan <- ev:
			slog.Debug("ws_trade_received",
				"market", truncate(ev.MarketID, 16),
				"wallet", truncate(ev.Wallet, 10),
				"size_usd", ev.SizeUSD,
				"price", ev.Price,
			)
		default:
			slog.Warn("trade_channel_full", "dropped_trade", ev.TradeID)
		}
	}
}

// heartbeatMonitor checks for connection health.
func (l *Listener) heartbeatMonitor(ctx context.Context) {
	defer l.wg.Done()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.checkHeartbeat()
		}
	}
}

// checkHeartbeat verifies we've received messages recently.
func (l *Listener) checkHeartbeat() {
	l.lastMsgMu.RLock()
	lastMsg := l.lastMsg
	l.lastMsgMu.RUnlock()

	if lastMsg.IsZero() {
		return
	}

	elapsed := time.Since(lastMsg)
	if elapsed > HeartbeatTimeout {
		slog.Warn("ws_heartbeat_timeout", "elapsed", elapsed)

		l.connMu.Lock()
		conn := l.conn
		l.connMu.Unlock()

		if conn != nil {
			conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				slog.Warn("ws_ping_failed", "error", err)
				l.closeConnection()
			}
		}
	}
}

// updateLastMsg updates the last message timestamp.
func (l *Listener) updateLastMsg() {
	l.lastMsgMu.Lock()
	l.lastMsg = time.Now()
	l.lastMsgMu.Unlock()
}

// closeConnection safely closes the WebSocket connection.
func (l *Listener) closeConnection() {
	l.connMu.Lock()
	defer l.connMu.Unlock()

	if l.conn != nil {
		l.conn.Close()
		l.conn = nil
		slog.Info("ws_disconnected")
		l.reportStatus("disconnected")
	}
}

// waitBackoff waits for the backoff duration with jitter.
func (l *Listener) waitBackoff(ctx context.Context) {
	jitter := time.Duration(float64(l.backoff) * JitterPercent * (rand.Float64()*2 - 1))
	wait := l.backoff + jitter

	slog.Debug("ws_waiting_backoff", "duration", wait)

	select {
	case <-ctx.Done():
	case <-l.stopChan:
	case <-time.After(wait):
	}

	l.backoff = time.Duration(float64(l.backoff) * BackoffFactor)
	if l.backoff > MaxBackoff {
		l.backoff = MaxBackoff
	}
}

// truncate shortens a string for logging.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
