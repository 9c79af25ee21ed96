package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/polyshadow/engine/internal/store"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{500, "$500.00"},
		{999.99, "$999.99"},
		{1000, "$1.0K"},
		{10000, "$10.0K"},
		{35500, "$35.5K"},
		{1000000, "$1.00M"},
		{2500000, "$2.50M"},
	}

	for _, tt := range tests {
		if got := formatAmount(tt.amount); got != tt.want {
			t.Errorf("formatAmount(%.2f) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestWalletAgeBand(t *testing.T) {
	tests := []struct {
		nonce uint64
		known bool
		want  string
	}{
		{0, false, "❓ Unknown"},
		{0, true, "👻 Ghost"},
		{1, true, "👻 Ghost"},
		{2, true, "🆕 Fresh"},
		{5, true, "🆕 Fresh"},
		{6, true, "🐣 Young"},
		{10, true, "🐣 Young"},
		{11, true, "👤 Known"},
		{5000, true, "👤 Known"},
	}

	for _, tt := range tests {
		if got := walletAgeBand(tt.nonce, tt.known); got != tt.want {
			t.Errorf("walletAgeBand(%d, %v) = %q, want %q", tt.nonce, tt.known, got, tt.want)
		}
	}
}

func TestShortWallet(t *testing.T) {
	long := "0x1234567890abcdef1234567890abcdef12345678"
	got := shortWallet(long)
	if got != "0x123456...345678" {
		t.Errorf("shortWallet = %q", got)
	}
	if short := shortWallet("0xabc"); short != "0xabc" {
		t.Errorf("short address should pass through, got %q", short)
	}
}

func TestFormatFactors(t *testing.T) {
	result := store.ScoreResult{
		Score: 8,
		Factors: []store.Factor{
			{Name: store.FactorFreshWallet, Points: 3},
			{Name: store.FactorSize, Points: 3},
			{Name: store.FactorOdds, Points: 2},
		},
	}

	got := formatFactors(result)
	want := "fresh_wallet +3, size +3, odds +2"
	if got != want {
		t.Errorf("formatFactors = %q, want %q", got, want)
	}

	if got := formatFactors(store.ScoreResult{}); got != "none" {
		t.Errorf("empty factors = %q, want %q", got, "none")
	}
}

func testAlert() store.AlertPayload {
	return store.AlertPayload{
		ID:   "test-id",
		Tier: store.TierGhost,
		Score: store.ScoreResult{
			Score: 8,
			Factors: []store.Factor{
				{Name: store.FactorFreshWallet, Points: 3},
				{Name: store.FactorSize, Points: 3},
				{Name: store.FactorOdds, Points: 2},
			},
		},
		MarketQuestion: "Will the incumbent win?",
		MarketURL:      "https://polymarket.com/event/will-the-incumbent-win",
		Outcome:        "Yes",
		Odds:           0.15,
		SizeUSD:        35000,
		Wallet:         "0x1234567890abcdef1234567890abcdef12345678",
		WalletURL:      "https://polygonscan.com/address/0x1234567890abcdef1234567890abcdef12345678",
		Nonce:          0,
		AgeKnown:       true,
		Timestamp:      time.Date(2025, 1, 4, 14, 32, 1, 0, time.UTC),
	}
}

func TestBuildAlertMessage(t *testing.T) {
	msg := buildAlertMessage(testAlert())

	wantParts := []string{
		"SUSPECTED INSIDER",
		"S-GHOST",
		"score 8",
		"fresh_wallet +3",
		"Will the incumbent win?",
		"YES",
		"15.0%",
		"$35.0K",
		"0x123456...345678",
		"👻 Ghost",
		"https://polygonscan.com/address/",
		"https://polymarket.com/event/will-the-incumbent-win",
		"2025-01-04 14:32:01 UTC",
	}

	for _, part := range wantParts {
		if !strings.Contains(msg, part) {
			t.Errorf("alert message missing %q\n%s", part, msg)
		}
	}
}

func TestBuildAlertMessageCurrentOdds(t *testing.T) {
	alert := testAlert()
	alert.CurrentOdds = 0.22

	msg := buildAlertMessage(alert)
	if !strings.Contains(msg, "(now 22.0%)") {
		t.Errorf("alert missing current odds:\n%s", msg)
	}

	alert.CurrentOdds = 0
	msg = buildAlertMessage(alert)
	if strings.Contains(msg, "(now") {
		t.Errorf("unknown current odds should be omitted:\n%s", msg)
	}
}

func TestBuildAlertMessageUnknownAge(t *testing.T) {
	alert := testAlert()
	alert.AgeKnown = false
	alert.Score.AgeUnknown = true

	msg := buildAlertMessage(alert)

	if !strings.Contains(msg, "unknown") {
		t.Errorf("unknown-age alert should say so:\n%s", msg)
	}
	if !strings.Contains(msg, "❓ Unknown") {
		t.Errorf("unknown-age alert missing age band:\n%s", msg)
	}
}

func TestBuildAlertMessageEscapesHTML(t *testing.T) {
	alert := testAlert()
	alert.MarketQuestion = "Will <script> win & lose?"
	alert.TraderName = "a<b"

	msg := buildAlertMessage(alert)

	if strings.Contains(msg, "<script>") {
		t.Error("market question was not HTML-escaped")
	}
	if !strings.Contains(msg, "&lt;script&gt;") {
		t.Error("expected escaped market question")
	}
	if !strings.Contains(msg, "a&lt;b") {
		t.Error("expected escaped trader name")
	}
}

func TestBuildAlertMessageTruncatesLongQuestion(t *testing.T) {
	alert := testAlert()
	alert.MarketQuestion = strings.Repeat("x", 100)

	msg := buildAlertMessage(alert)

	if !strings.Contains(msg, strings.Repeat("x", 60)+"...") {
		t.Error("long question should be truncated with ellipsis")
	}
	if strings.Contains(msg, strings.Repeat("x", 61)) {
		t.Error("question not truncated at 60 characters")
	}
}
