package scoring

import (
	"math"

	"github.com/sells-group/siteiq/internal/feature"
	"github.com/sells-group/siteiq/internal/model"
)

// Component sub-scores are fixed deterministic formulas over the feature
// vector, independent of whether the overall score came from the ML or the
// rule-based path. Thresholds and weights here are user-visible; change them
// only deliberately.

// componentScores computes all five sub-scores.
func componentScores(v feature.Vector) model.ComponentScores {
	return model.ComponentScores{
		Competition:   competitionScore(v),
		FootTraffic:   footTrafficScore(v),
		Accessibility: accessibilityScore(v),
		Demographic:   demographicScore(v),
		Environmental: environmentalScore(v),
	}
}

// competitionScore is a bucketed inverse of the 500m competitor count.
func competitionScore(v feature.Vector) float64 {
	competitors := v["competitors_500m"]
	switch {
	case competitors == 0:
		return 10.0
	case competitors <= 3:
		return 8.0
	case competitors <= 7:
		return 6.0
	case competitors <= 15:
		return 4.0
	default:
		return 2.0
	}
}

// footTrafficScore proxies foot traffic from area review volume plus an
// engagement term.
func footTrafficScore(v feature.Vector) float64 {
	totalReviews := v[feature.KeyTotalAreaReviews]
	engagement := v[feature.KeyMarketEngagement]
	score := math.Log(totalReviews+1)/math.Log(1000)*8 + engagement*2
	return model.Clamp(score, 0, 10)
}

func accessibilityScore(v feature.Vector) float64 {
	return model.Clamp(v[feature.KeyAccessibilityScore]*10, 0, 10)
}

// demographicScore combines the tourism and income proxies.
func demographicScore(v feature.Vector) float64 {
	tourism := v[feature.KeyTourismFactor]
	income := v[feature.KeyAvgIncome]
	return model.Clamp(tourism*5+income/10000, 0, 10)
}

// environmentalScore rewards capped park and cultural-landmark counts.
func environmentalScore(v feature.Vector) float64 {
	parks := math.Min(v[feature.KeyNearbyParks], 5)
	cultural := math.Min(v[feature.KeyCulturalAttractions], 3)
	return model.Clamp(parks*1.5+cultural*2.0+2.0, 0, 10)
}

// fallbackScore is the rule-based overall score used when no trained model
// is available or loadable.
func fallbackScore(v feature.Vector) float64 {
	score := 5.0

	competitors := v["competitors_500m"]
	switch {
	case competitors == 0:
		score += 2.0 // no competition bonus
	case competitors <= 3:
		score += 1.0 // light competition
	case competitors <= 7:
		score += 0.0 // normal competition
	default:
		score -= 1.0 // heavy competition
	}

	// The quality adjustment only applies when there are competitors to
	// average over; an empty market has no rating signal either way.
	if competitors > 0 {
		switch avgRating := v["avg_competitor_rating_500m"]; {
		case avgRating >= 4.0:
			score += 1.0 // high quality area
		case avgRating <= 3.0:
			score -= 0.5 // low quality area
		}
	}

	score += v[feature.KeyAccessibilityScore] * 2
	score += v[feature.KeyTourismFactor] * 1.5

	return model.Clamp(score, 0, 10)
}
