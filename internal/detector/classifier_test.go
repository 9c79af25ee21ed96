package detector

import (
	"testing"

	"github.com/polyshadow/engine/internal/store"
)

func TestClassifyCutoffs(t *testing.T) {
	c := NewClassifier(testConfig())

	tests := []struct {
		score int
		want  store.Tier
	}{
		{0, store.TierShark},
		{2, store.TierShark},
		{4, store.TierShark},
		{5, store.TierWhale},
		{6, store.TierWhale},
		{7, store.TierGhost},
		{9, store.TierGhost},
	}

	for _, tt := range tests {
		got := c.Classify(store.ScoreResult{Score: tt.score})
		if got != tt.want {
			t.Errorf("Classify(score=%d) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestClassifyNeverReturnsNone(t *testing.T) {
	c := NewClassifier(testConfig())

	for score := 0; score <= 9; score++ {
		if got := c.Classify(store.ScoreResult{Score: score}); got == store.TierNone {
			t.Errorf("Classify(score=%d) returned TierNone", score)
		}
	}
}

func TestTierString(t *testing.T) {
	tests := []struct {
		tier store.Tier
		want string
	}{
		{store.TierGhost, "S-GHOST"},
		{store.TierWhale, "A-WHALE"},
		{store.TierShark, "B-SHARK"},
		{store.TierNone, "NONE"},
	}

	for _, tt := range tests {
		if got := tt.tier.String(); got != tt.want {
			t.Errorf("Tier(%d).String() = %q, want %q", tt.tier, got, tt.want)
		}
	}
}
