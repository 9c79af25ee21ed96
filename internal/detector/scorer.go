// Package detector scores filtered trades and classifies them into alert tiers.
package detector

import (
	"github.com/polyshadow/engine/internal/config"
	"github.com/polyshadow/engine/internal/store"
)

// Scorer computes suspicion scores for trades that already passed the
// base eligibility filter. Scoring is pure: no I/O, no state.
type Scorer struct {
	cfg *config.Config
}

// NewScorer creates a Scorer using the thresholds in cfg.
func NewScorer(cfg *config.Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// AgeEvidence carries the result of the account-age lookup for one trade.
type AgeEvidence struct {
	Nonce uint64
	// Known is false when the lookup failed; the fresh-wallet factor is
	// then omitted rather than assumed fresh or assumed established.
	Known bool
}

// Score computes the suspicion score for a trade with the given age evidence.
// Each factor contributes 1-3 points; contributions are retained per factor.
func (s *Scorer) Score(trade store.TradeEvent, age AgeEvidence) store.ScoreResult {
	result := store.ScoreResult{AgeUnknown: !age.Known}

	// Fresh-wallet factor: lower nonce, bigger bonus
	if age.Known {
		var pts int
		switch {
		case age.Nonce <= s.cfg.GhostNonce:
			pts = 3
		case age.Nonce <= s.cfg.YoungNonce:
			pts = 2
		case age.Nonce < s.cfg.FreshWalletNonce:
			pts = 1
		}
		if pts > 0 {
			result.Factors = append(result.Factors, store.Factor{Name: store.FactorFreshWallet, Points: pts})
		}
	}

	// Size factor: tiered on multiples of the minimum trade size
	var sizePts int
	switch {
	case trade.SizeUSD >= 3*s.cfg.MinTradeUSD:
		sizePts = 3
	case trade.SizeUSD >= 2*s.cfg.MinTradeUSD:
		sizePts = 2
	case trade.SizeUSD >= s.cfg.MinTradeUSD:
		sizePts = 1
	}
	if sizePts > 0 {
		result.Factors = append(result.Factors, store.Factor{Name: store.FactorSize, Points: sizePts})
	}

	// Odds factor: the more contrarian the bet, the bigger the bonus
	var oddsPts int
	switch {
	case trade.Price < s.cfg.MaxContrarianOdds/3:
		oddsPts = 3
	case trade.Price < 2*s.cfg.MaxContrarianOdds/3:
		oddsPts = 2
	case trade.Price < s.cfg.MaxContrarianOdds:
		oddsPts = 1
	}
	if oddsPts > 0 {
		result.Factors = append(result.Factors, store.Factor{Name: store.FactorOdds, Points: oddsPts})
	}

	for _, f := range result.Factors {
		result.Score += f.Points
	}
	return result
}
