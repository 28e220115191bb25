// Package sentiment aggregates review texts into a business-level sentiment
// profile: compound distribution, topic frequencies, and a 0-10 score.
package sentiment

import (
	"go.uber.org/zap"
)

// Estimator scores a single text. Compound is in [-1, 1]; 0 is the neutral
// sentinel that causes the chain to fall through to the next estimator.
type Estimator interface {
	Name() string
	Score(text string) (compound float64, err error)
}

// Chain tries estimators in priority order and accepts the first non-zero
// compound score. Estimator failures are logged and skipped; a chain where
// every estimator fails or returns neutral yields 0.
type Chain struct {
	estimators []Estimator
}

// NewChain builds a cascade from the given estimators, tried in argument
// order.
func NewChain(estimators ...Estimator) *Chain {
	return &Chain{estimators: estimators}
}

// DefaultChain is the production cascade: Turkish lexicon first, VADER
// second, naive polarity last.
func DefaultChain() *Chain {
	return NewChain(NewTurkishLexicon(), NewVADER(), NewNaivePolarity())
}

// Score runs the cascade over one text. The returned source names the
// estimator whose score was accepted, or "" when everything was neutral.
func (c *Chain) Score(text string) (float64, string) {
	for _, est := range c.estimators {
		compound, err := est.Score(text)
		if err != nil {
			zap.L().Debug("sentiment: estimator failed",
				zap.String("estimator", est.Name()),
				zap.Error(err),
			)
			continue
		}
		if compound != 0 {
			return compound, est.Name()
		}
	}
	return 0, ""
}
