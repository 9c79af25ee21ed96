package detector

import (
	"testing"

	"github.com/polyshadow/engine/internal/config"
	"github.com/polyshadow/engine/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		MinTradeUSD:       10000,
		MaxContrarianOdds: 0.30,
		GhostNonce:        1,
		YoungNonce:        5,
		FreshWalletNonce:  10,
		ScoreCutoffGhost:  7,
		ScoreCutoffWhale:  5,
	}
}

func trade(sizeUSD, price float64) store.TradeEvent {
	return store.TradeEvent{
		TradeID:  "0xabc",
		Category: "politics",
		Side:     "BUY",
		SizeUSD:  sizeUSD,
		Price:    price,
	}
}

func TestScoreGhostWalletLargeContrarianBet(t *testing.T) {
	s := NewScorer(testConfig())

	// Brand new wallet, 3.5x minimum size, deeply contrarian odds
	result := s.Score(trade(35000, 0.15), AgeEvidence{Nonce: 0, Known: true})

	if result.Score != 8 {
		t.Errorf("Score = %d, want 8", result.Score)
	}
	if result.AgeUnknown {
		t.Error("AgeUnknown = true, want false")
	}
	if len(result.Factors) != 3 {
		t.Fatalf("len(Factors) = %d, want 3", len(result.Factors))
	}
}

func TestScoreEstablishedWalletModestBet(t *testing.T) {
	s := NewScorer(testConfig())

	result := s.Score(trade(12000, 0.25), AgeEvidence{Nonce: 200, Known: true})

	// No fresh-wallet points, size +1, odds +1
	if result.Score != 2 {
		t.Errorf("Score = %d, want 2", result.Score)
	}
	for _, f := range result.Factors {
		if f.Name == store.FactorFreshWallet {
			t.Error("established wallet should not earn the fresh-wallet factor")
		}
	}
}

func TestScoreFreshWalletTiers(t *testing.T) {
	s := NewScorer(testConfig())

	tests := []struct {
		nonce uint64
		want  int
	}{
		{0, 3},
		{1, 3},
		{2, 2},
		{5, 2},
		{6, 1},
		{9, 1},
		{10, 0},
		{500, 0},
	}

	for _, tt := range tests {
		result := s.Score(trade(5000, 0.50), AgeEvidence{Nonce: tt.nonce, Known: true})
		if result.Score != tt.want {
			t.Errorf("nonce %d: Score = %d, want %d", tt.nonce, result.Score, tt.want)
		}
	}
}

func TestScoreSizeTiers(t *testing.T) {
	s := NewScorer(testConfig())

	tests := []struct {
		sizeUSD float64
		want    int
	}{
		{9999, 0},
		{10000, 1},
		{19999, 1},
		{20000, 2},
		{29999, 2},
		{30000, 3},
		{250000, 3},
	}

	for _, tt := range tests {
		result := s.Score(trade(tt.sizeUSD, 0.50), AgeEvidence{Nonce: 100, Known: true})
		if result.Score != tt.want {
			t.Errorf("size %.0f: Score = %d, want %d", tt.sizeUSD, result.Score, tt.want)
		}
	}
}

func TestScoreOddsTiers(t *testing.T) {
	s := NewScorer(testConfig())

	tests := []struct {
		price float64
		want  int
	}{
		{0.05, 3},
		{0.15, 2},
		{0.25, 1},
		{0.30, 0},
		{0.50, 0},
	}

	for _, tt := range tests {
		result := s.Score(trade(5000, tt.price), AgeEvidence{Nonce: 100, Known: true})
		if result.Score != tt.want {
			t.Errorf("price %.2f: Score = %d, want %d", tt.price, result.Score, tt.want)
		}
	}
}

func TestScoreUnknownAgeIsNeutral(t *testing.T) {
	s := NewScorer(testConfig())
	tr := trade(35000, 0.15)

	unknown := s.Score(tr, AgeEvidence{Known: false})
	known := s.Score(tr, AgeEvidence{Nonce: 0, Known: true})

	if !unknown.AgeUnknown {
		t.Error("AgeUnknown = false, want true")
	}
	for _, f := range unknown.Factors {
		if f.Name == store.FactorFreshWallet {
			t.Error("unknown age must not earn the fresh-wallet factor")
		}
	}

	// Unknown age can never score higher than a fresh wallet on the same trade
	if unknown.Score > known.Score {
		t.Errorf("unknown-age score %d exceeds fresh-wallet score %d", unknown.Score, known.Score)
	}

	// Size + odds max out at 6, below the default ghost cutoff of 7
	if unknown.Score != 6 {
		t.Errorf("Score = %d, want 6", unknown.Score)
	}
}

func TestScoreMonotonicInNonce(t *testing.T) {
	s := NewScorer(testConfig())
	tr := trade(35000, 0.15)

	prev := s.Score(tr, AgeEvidence{Nonce: 0, Known: true}).Score
	for _, nonce := range []uint64{1, 2, 5, 6, 9, 10, 100} {
		got := s.Score(tr, AgeEvidence{Nonce: nonce, Known: true}).Score
		if got > prev {
			t.Errorf("score increased from %d to %d when nonce rose to %d", prev, got, nonce)
		}
		prev = got
	}
}

func TestScoreFactorPointsSumToScore(t *testing.T) {
	s := NewScorer(testConfig())

	result := s.Score(trade(25000, 0.08), AgeEvidence{Nonce: 3, Known: true})

	sum := 0
	for _, f := range result.Factors {
		sum += f.Points
	}
	if sum != result.Score {
		t.Errorf("factor sum %d != Score %d", sum, result.Score)
	}
}
