package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/polyshadow/engine/internal/store"
)

// TelegramAPIBase is the Telegram Bot API endpoint prefix.
const TelegramAPIBase = "https://api.telegram.org/bot"

// Telegram sends alert messages through the Telegram Bot API.
// Outbound requests are rate limited to stay under bot API quotas.
type Telegram struct {
	apiURL   string
	chatID   string
	threadID string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewTelegram creates a Telegram notifier. threadID may be empty; it is
// only used for groups with Topics enabled.
func NewTelegram(botToken, chatID, threadID string) *Telegram {
	return &Telegram{
		apiURL:   TelegramAPIBase + botToken,
		chatID:   chatID,
		threadID: threadID,
		client:   &http.Client{Timeout: 10 * time.Second},
		// Telegram allows ~1 msg/sec per chat
		limiter: rate.NewLimiter(rate.Limit(1), 3),
	}
}

// Dispatch renders and delivers an alert.
func (t *Telegram) Dispatch(ctx context.Context, alert store.AlertPayload) error {
	return t.sendMessage(ctx, buildAlertMessage(alert))
}

// SendStartup announces that monitoring has begun, with active thresholds.
func (t *Telegram) SendStartup(ctx context.Context, minTradeUSD, maxOdds float64, freshNonce uint64) error {
	msg := fmt.Sprintf(`🟢 <b>PolyShadow Monitor Started</b>

━━━━━━━━━━━━━━━━━━━━
📊 <b>Monitoring</b>: Polymarket Politics
💰 <b>Min Amount</b>: %s USDC
📉 <b>Max Odds</b>: ≤%.0f%% (Contrarian only)
👛 <b>Wallet Filter</b>: Nonce &lt; %d

🦈 Alert Levels:
   👻 <b>S-GHOST</b>: Likely insider
   🐳 <b>A-WHALE</b>: High suspicion
   🦈 <b>B-SHARK</b>: Smart money
━━━━━━━━━━━━━━━━━━━━
<i>Scanning for insider activity...</i>`,
		formatAmount(minTradeUSD), maxOdds*100, freshNonce)

	return t.sendMessage(ctx, msg)
}

// SendError reports a recoverable engine error.
func (t *Telegram) SendError(ctx context.Context, errMsg string) error {
	msg := fmt.Sprintf(`🔴 <b>PolyShadow Error</b>

%s

<i>The monitor will attempt to recover automatically.</i>`, escapeHTML(errMsg))

	return t.sendMessage(ctx, msg)
}

// sendMessage posts one HTML-formatted message to the configured chat.
func (t *Telegram) sendMessage(ctx context.Context, text string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	payload := map[string]interface{}{
		"chat_id":                  t.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": false,
	}

	if t.threadID != "" {
		if threadID, err := strconv.Atoi(t.threadID); err == nil {
			payload["message_thread_id"] = threadID
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.apiURL+"/sendMessage", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram api status %d", resp.StatusCode)
	}

	return nil
}
