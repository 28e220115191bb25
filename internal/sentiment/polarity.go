package sentiment

import "strings"

// Minimal generic polarity word lists for the last-resort estimator.
var polarityPositive = []string{
	"good", "great", "excellent", "amazing", "love", "best", "nice",
	"friendly", "delicious", "perfect", "recommend", "wonderful",
}

var polarityNegative = []string{
	"bad", "terrible", "awful", "worst", "hate", "poor", "rude",
	"dirty", "slow", "disappointing", "avoid", "horrible",
}

// NaivePolarity is the generic fallback estimator: token-level polarity
// counting over a tiny English lexicon.
type NaivePolarity struct{}

// NewNaivePolarity creates the estimator.
func NewNaivePolarity() *NaivePolarity { return &NaivePolarity{} }

// Name implements Estimator.
func (NaivePolarity) Name() string { return "naive_polarity" }

// Score implements Estimator.
func (NaivePolarity) Score(text string) (float64, error) {
	tokens := strings.Fields(strings.ToLower(text))
	pos, neg := 0, 0
	for _, tok := range tokens {
		tok = strings.Trim(tok, ".,!?;:\"'()")
		for _, w := range polarityPositive {
			if tok == w {
				pos++
				break
			}
		}
		for _, w := range polarityNegative {
			if tok == w {
				neg++
				break
			}
		}
	}
	if pos+neg == 0 {
		return 0, nil
	}
	return float64(pos-neg) / float64(pos+neg), nil
}
