package detector

import (
	"github.com/polyshadow/engine/internal/config"
	"github.com/polyshadow/engine/internal/store"
)

// Classifier maps a suspicion score to a discrete severity tier.
type Classifier struct {
	cutoffGhost int
	cutoffWhale int
}

// NewClassifier creates a Classifier with the configured tier cutoffs.
func NewClassifier(cfg *config.Config) *Classifier {
	return &Classifier{
		cutoffGhost: cfg.ScoreCutoffGhost,
		cutoffWhale: cfg.ScoreCutoffWhale,
	}
}

// Classify returns the tier for a score result. Any trade that reached
// scoring already passed base eligibility, so the floor is TierShark;
// TierNone is never returned here.
func (c *Classifier) Classify(result store.ScoreResult) store.Tier {
	switch {
	case result.Score >= c.cutoffGhost:
		return store.TierGhost
	case result.Score >= c.cutoffWhale:
		return store.TierWhale
	default:
		return store.TierShark
	}
}
