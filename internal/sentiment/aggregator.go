package sentiment

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sells-group/siteiq/internal/model"
)

// minReviewLength is the minimum trimmed length, in runes, for a review text
// to be analyzed.
const minReviewLength = 10

// Distribution bucket thresholds on the compound score.
const (
	positiveThreshold = 0.1
	negativeThreshold = -0.1
)

// Aggregator turns a business's reviews into an aggregate sentiment profile.
type Aggregator struct {
	chain  *Chain
	tagger *TopicTagger
}

// NewAggregator creates an Aggregator. Nil chain or tagger fall back to the
// defaults.
func NewAggregator(chain *Chain, tagger *TopicTagger) *Aggregator {
	if chain == nil {
		chain = DefaultChain()
	}
	if tagger == nil {
		tagger = NewTopicTagger()
	}
	return &Aggregator{chain: chain, tagger: tagger}
}

// Analyze aggregates review sentiments. Reviews shorter than ten characters
// are skipped; per-review estimator failures are isolated inside the chain
// and never abort the batch. An empty or fully skipped review set yields the
// neutral default.
func (a *Aggregator) Analyze(reviews []model.Review) model.BusinessSentiment {
	var compounds []float64
	topicCounts := make(map[string]int)

	for _, review := range reviews {
		text := strings.TrimSpace(review.Text)
		if utf8.RuneCountInString(text) < minReviewLength {
			continue
		}

		compound, source := a.chain.Score(text)
		compounds = append(compounds, compound)
		if source != "" {
			zap.L().Debug("sentiment: scored review",
				zap.Int64("review_id", review.ID),
				zap.String("estimator", source),
				zap.Float64("compound", compound),
			)
		}

		for _, topic := range a.tagger.Tag(text) {
			topicCounts[topic]++
		}
	}

	if len(compounds) == 0 {
		return neutralResult()
	}

	total := len(compounds)
	sum := 0.0
	dist := model.SentimentDistribution{}
	for _, c := range compounds {
		sum += c
		switch {
		case c > positiveThreshold:
			dist.Positive++
		case c < negativeThreshold:
			dist.Negative++
		default:
			dist.Neutral++
		}
	}
	avg := sum / float64(total)

	return model.BusinessSentiment{
		AvgSentiment:   avg,
		Distribution:   dist,
		TotalAnalyzed:  total,
		TopTopics:      topicCounts,
		SentimentScore: sentimentScore(avg, dist, total),
	}
}

// sentimentScore maps the aggregate onto a 0-10 scale. The base comes from
// the average compound, the adjustment from distribution skew, and the
// confidence multiplier saturates at 20 analyzed reviews.
func sentimentScore(avg float64, dist model.SentimentDistribution, total int) float64 {
	base := (avg + 1) * 5

	confidence := float64(total) / 20
	if confidence > 1 {
		confidence = 1
	}

	posRatio := float64(dist.Positive) / float64(total)
	negRatio := float64(dist.Negative) / float64(total)

	adjustment := 0.0
	switch {
	case posRatio > 0.7:
		adjustment = 0.5
	case negRatio > 0.5:
		adjustment = -0.5
	}

	return model.Clamp(base+adjustment*confidence, 0, 10)
}

func neutralResult() model.BusinessSentiment {
	return model.BusinessSentiment{
		AvgSentiment:   0,
		Distribution:   model.SentimentDistribution{},
		TotalAnalyzed:  0,
		TopTopics:      map[string]int{},
		SentimentScore: 5.0,
	}
}
