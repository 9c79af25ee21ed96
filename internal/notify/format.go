// Package notify renders and delivers alert notifications via Telegram.
package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/polyshadow/engine/internal/store"
)

// tierTag returns the headline tag for an alert tier.
func tierTag(tier store.Tier) string {
	switch tier {
	case store.TierGhost:
		return "🚨 <b>SUSPECTED INSIDER</b> 🚨"
	case store.TierWhale:
		return "⚠️ <b>WHALE ALERT</b> ⚠️"
	default:
		return "🦈 <b>SMART MONEY</b>"
	}
}

// tierEmoji returns the icon for an alert tier.
func tierEmoji(tier store.Tier) string {
	switch tier {
	case store.TierGhost:
		return "👻"
	case store.TierWhale:
		return "🐳"
	default:
		return "🦈"
	}
}

// walletAgeBand describes a wallet's age from its transaction count.
func walletAgeBand(nonce uint64, known bool) string {
	switch {
	case !known:
		return "❓ Unknown"
	case nonce <= 1:
		return "👻 Ghost"
	case nonce <= 5:
		return "🆕 Fresh"
	case nonce <= 10:
		return "🐣 Young"
	default:
		return "👤 Known"
	}
}

// formatAmount renders a dollar amount with K/M suffixes.
func formatAmount(amount float64) string {
	switch {
	case amount >= 1_000_000:
		return fmt.Sprintf("$%.2fM", amount/1_000_000)
	case amount >= 1_000:
		return fmt.Sprintf("$%.1fK", amount/1_000)
	default:
		return fmt.Sprintf("$%.2f", amount)
	}
}

// shortWallet truncates a wallet address for display.
func shortWallet(addr string) string {
	if len(addr) <= 14 {
		return addr
	}
	return addr[:8] + "..." + addr[len(addr)-6:]
}

// escapeHTML escapes user-provided text to prevent Telegram parse errors.
func escapeHTML(s string) string {
	return html.EscapeString(s)
}

// formatFactors renders per-factor score contributions, e.g.
// "fresh_wallet +3, size +3, odds +2".
func formatFactors(result store.ScoreResult) string {
	if len(result.Factors) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(result.Factors))
	for _, f := range result.Factors {
		parts = append(parts, fmt.Sprintf("%s +%d", f.Name, f.Points))
	}
	return strings.Join(parts, ", ")
}

// buildAlertMessage renders the HTML alert message for Telegram.
func buildAlertMessage(a store.AlertPayload) string {
	question := a.MarketQuestion
	truncated := false
	if len(question) > 60 {
		question = question[:60]
		truncated = true
	}
	safeQuestion := escapeHTML(question)
	if truncated {
		safeQuestion += "..."
	}

	betEmoji := "🟢"
	if strings.EqualFold(a.Outcome, "NO") {
		betEmoji = "🔴"
	}

	nonceLine := "unknown"
	if a.AgeKnown {
		nonceLine = fmt.Sprintf("%d", a.Nonce)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n", tierTag(a.Tier), strings.Repeat("━", 30))
	fmt.Fprintf(&b, "%s <b>%s</b> | score %d (%s)\n\n",
		tierEmoji(a.Tier), a.Tier, a.Score.Score, formatFactors(a.Score))
	fmt.Fprintf(&b, "🎯 <b>Event</b>: %s\n\n", safeQuestion)
	fmt.Fprintf(&b, "%s <b>Bet</b>: <code>%s</code>\n", betEmoji, escapeHTML(strings.ToUpper(a.Outcome)))
	fmt.Fprintf(&b, "📉 <b>Odds</b>: %.1f%%", a.Odds*100)
	if a.CurrentOdds > 0 {
		fmt.Fprintf(&b, " (now %.1f%%)", a.CurrentOdds*100)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "💰 <b>Size</b>: <code>%s</code> ($%.0f)\n\n", formatAmount(a.SizeUSD), a.SizeUSD)
	fmt.Fprintf(&b, "🕵️ <b>Wallet</b>: <code>%s</code>\n", shortWallet(a.Wallet))
	fmt.Fprintf(&b, "   ├─ Nonce: <b>%s</b> %s\n", nonceLine, walletAgeBand(a.Nonce, a.AgeKnown))
	fmt.Fprintf(&b, "   └─ <a href=\"%s\">View on PolygonScan</a>\n", a.WalletURL)
	if a.TraderName != "" {
		fmt.Fprintf(&b, "👤 <b>Trader</b>: %s\n", escapeHTML(a.TraderName))
	}
	fmt.Fprintf(&b, "\n🔗 <a href=\"%s\">View on Polymarket</a>\n", a.MarketURL)
	fmt.Fprintf(&b, "%s\n", strings.Repeat("━", 30))
	fmt.Fprintf(&b, "<i>⏰ %s | Captured by PolyShadow</i>",
		a.Timestamp.UTC().Format("2006-01-02 15:04:05 UTC"))

	return b.String()
}
