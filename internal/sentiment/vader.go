package sentiment

import "github.com/jonreiter/govader"

// VADER adapts the govader lexicon analyzer as the second estimator in the
// cascade. It covers the English reviews the Turkish lexicon cannot score.
type VADER struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVADER creates the estimator.
func NewVADER() *VADER {
	return &VADER{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Name implements Estimator.
func (v *VADER) Name() string { return "vader" }

// Score implements Estimator.
func (v *VADER) Score(text string) (float64, error) {
	return v.analyzer.PolarityScores(text).Compound, nil
}
