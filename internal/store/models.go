// Package store provides the shared data models for the detection pipeline.
package store

import "time"

// TradeEvent represents a single observed trade on Polymarket.
// Events are immutable once created by the ingest layer.
type TradeEvent struct {
	// TradeID is a unique, stable identifier for this trade (transaction hash)
	TradeID string

	// MarketID is the market condition ID
	MarketID string

	// MarketQuestion is the human-readable market title
	MarketQuestion string

	// MarketSlug is used to build the market URL
	MarketSlug string

	// Category is the market category tag (e.g. "politics")
	Category string

	// Outcome is the side the trade was placed on (YES or NO)
	Outcome string

	// Side is BUY or SELL
	Side string

	// Price is the execution price / odds (0-1 range)
	Price float64

	// CurrentOdds is the market's present price for the bet outcome,
	// resolved from market metadata; 0 when unknown
	CurrentOdds float64

	// SizeUSD is the notional trade size in USDC
	SizeUSD float64

	// Wallet is the originating account address (0x-prefixed hex)
	Wallet string

	// TraderName is the trader's display name, if the venue exposes one
	TraderName string

	// Timestamp is when the trade occurred
	Timestamp time.Time
}

// MarketURL returns the public Polymarket URL for this trade's market.
func (t TradeEvent) MarketURL() string {
	return "https://polymarket.com/event/" + t.MarketSlug
}

// AgeRecord holds on-chain account-age evidence for a wallet.
type AgeRecord struct {
	Wallet     string
	Nonce      uint64
	ObservedAt time.Time
}

// Factor is one named contribution to a suspicion score.
type Factor struct {
	Name   string
	Points int
}

// Factor names emitted by the scorer.
const (
	FactorFreshWallet = "fresh_wallet"
	FactorSize        = "size"
	FactorOdds        = "odds"
)

// ScoreResult is the output of scoring one trade.
type ScoreResult struct {
	Score int

	// Factors lists per-factor contributions in scoring order,
	// for notification transparency.
	Factors []Factor

	// AgeUnknown is set when the account-age lookup failed and the
	// fresh-wallet factor was omitted rather than assumed.
	AgeUnknown bool
}

// Tier is the severity classification of an alert.
type Tier int

const (
	TierNone Tier = iota
	TierShark
	TierWhale
	TierGhost
)

// String returns the level/codename form used in alerts, e.g. "S-GHOST".
func (t Tier) String() string {
	switch t {
	case TierGhost:
		return "S-GHOST"
	case TierWhale:
		return "A-WHALE"
	case TierShark:
		return "B-SHARK"
	default:
		return "NONE"
	}
}

// AlertPayload is the structured alert handed to the Notifier.
type AlertPayload struct {
	ID             string
	Tier           Tier
	Score          ScoreResult
	MarketQuestion string
	MarketURL      string
	Outcome        string
	Odds           float64
	CurrentOdds    float64
	SizeUSD        float64
	Wallet         string
	WalletURL      string
	Nonce          uint64
	AgeKnown       bool
	TraderName     string
	Timestamp      time.Time
}
