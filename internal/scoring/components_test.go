package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/siteiq/internal/feature"
)

func TestCompetitionScoreBuckets(t *testing.T) {
	tests := []struct {
		name        string
		competitors float64
		want        float64
	}{
		{"empty market", 0, 10},
		{"light", 3, 8},
		{"normal", 7, 6},
		{"crowded", 15, 4},
		{"saturated", 16, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := feature.Vector{"competitors_500m": tt.competitors}
			assert.Equal(t, tt.want, competitionScore(v))
		})
	}
}

func TestFootTrafficScore(t *testing.T) {
	v := feature.Vector{
		feature.KeyTotalAreaReviews: 999,
		feature.KeyMarketEngagement: 1,
	}
	want := math.Log(1000)/math.Log(1000)*8 + 2
	assert.InDelta(t, want, footTrafficScore(v), 1e-9)

	// Huge volume clamps at 10.
	v[feature.KeyTotalAreaReviews] = 1e9
	v[feature.KeyMarketEngagement] = 50
	assert.Equal(t, 10.0, footTrafficScore(v))

	assert.Equal(t, 0.0, footTrafficScore(feature.Vector{}))
}

func TestDemographicScore(t *testing.T) {
	v := feature.Vector{
		feature.KeyTourismFactor: 0.3,
		feature.KeyAvgIncome:     50000,
	}
	assert.InDelta(t, 0.3*5+5.0, demographicScore(v), 1e-9)

	v[feature.KeyAvgIncome] = 1e6
	assert.Equal(t, 10.0, demographicScore(v))
}

func TestEnvironmentalScoreCaps(t *testing.T) {
	v := feature.Vector{
		feature.KeyNearbyParks:         20,
		feature.KeyCulturalAttractions: 10,
	}
	// Parks cap at 5, cultural at 3: 5*1.5 + 3*2 + 2 = 15.5, clamped.
	assert.Equal(t, 10.0, environmentalScore(v))

	v = feature.Vector{
		feature.KeyNearbyParks:         2,
		feature.KeyCulturalAttractions: 1,
	}
	assert.InDelta(t, 2*1.5+1*2+2, environmentalScore(v), 1e-9)
}

func TestFallbackScoreEmptyMarket(t *testing.T) {
	// No competitors, zero accessibility and tourism: exactly the base plus
	// the empty-market bonus.
	v := feature.Vector{
		"competitors_500m":           0,
		feature.KeyAccessibilityScore: 0,
		feature.KeyTourismFactor:      0,
	}
	assert.Equal(t, 7.0, fallbackScore(v))
}

func TestFallbackScoreAdjustments(t *testing.T) {
	tests := []struct {
		name string
		v    feature.Vector
		want float64
	}{
		{
			"light competition high quality",
			feature.Vector{"competitors_500m": 2, "avg_competitor_rating_500m": 4.5},
			5 + 1 + 1,
		},
		{
			"heavy competition low quality",
			feature.Vector{"competitors_500m": 20, "avg_competitor_rating_500m": 2.5},
			5 - 1 - 0.5,
		},
		{
			"normal competition mid quality",
			feature.Vector{"competitors_500m": 7, "avg_competitor_rating_500m": 3.5},
			5.0,
		},
		{
			"accessibility and tourism lift",
			feature.Vector{
				"competitors_500m":            7,
				"avg_competitor_rating_500m":  3.5,
				feature.KeyAccessibilityScore: 1.0,
				feature.KeyTourismFactor:      1.0,
			},
			5 + 2 + 1.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, fallbackScore(tt.v), 1e-9)
		})
	}
}

func TestComponentScoresBounded(t *testing.T) {
	vectors := []feature.Vector{
		{},
		{
			"competitors_500m":             100,
			feature.KeyTotalAreaReviews:    1e9,
			feature.KeyMarketEngagement:    1e6,
			feature.KeyAccessibilityScore:  5,
			feature.KeyTourismFactor:       10,
			feature.KeyAvgIncome:           1e9,
			feature.KeyNearbyParks:         1e3,
			feature.KeyCulturalAttractions: 1e3,
		},
	}

	for _, v := range vectors {
		c := componentScores(v)
		for _, score := range []float64{c.Competition, c.FootTraffic, c.Accessibility, c.Demographic, c.Environmental} {
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 10.0)
		}
	}
}

func TestInsightRules(t *testing.T) {
	t.Run("empty market is an opportunity", func(t *testing.T) {
		v := feature.Vector{"competitors_500m": 0, feature.KeyAccessibilityScore: 0.5}
		ins := generateInsights(v, 7.0)

		assert.Contains(t, ins.Opportunities[0], "first-mover")
		assert.Empty(t, ins.RiskFactors)
	})

	t.Run("crowded market is a risk", func(t *testing.T) {
		v := feature.Vector{"competitors_500m": 11, feature.KeyAccessibilityScore: 0.5}
		ins := generateInsights(v, 5.0)

		assert.Contains(t, ins.RiskFactors[0], "11 similar businesses")
	})

	t.Run("competitor quality cuts both ways", func(t *testing.T) {
		high := feature.Vector{
			"competitors_500m":            5,
			"avg_competitor_rating_500m":  4.2,
			feature.KeyAccessibilityScore: 0.5,
		}
		assert.NotEmpty(t, generateInsights(high, 6.5).KeyInsights)

		low := feature.Vector{
			"competitors_500m":            5,
			"avg_competitor_rating_500m":  2.8,
			feature.KeyAccessibilityScore: 0.5,
		}
		assert.NotEmpty(t, generateInsights(low, 6.5).Opportunities)
	})

	t.Run("weak accessibility pairs risk with recommendation", func(t *testing.T) {
		v := feature.Vector{"competitors_500m": 5, feature.KeyAccessibilityScore: 0.2}
		ins := generateInsights(v, 6.5)

		assert.NotEmpty(t, ins.RiskFactors)
		assert.NotEmpty(t, ins.Recommendations)
	})

	t.Run("strong tourism pairs opportunity with recommendation", func(t *testing.T) {
		v := feature.Vector{
			"competitors_500m":            5,
			feature.KeyAccessibilityScore: 0.5,
			feature.KeyTourismFactor:      0.7,
		}
		ins := generateInsights(v, 6.5)

		assert.NotEmpty(t, ins.Opportunities)
		assert.NotEmpty(t, ins.Recommendations)
	})

	t.Run("score bands are mutually exclusive", func(t *testing.T) {
		v := feature.Vector{"competitors_500m": 5, feature.KeyAccessibilityScore: 0.5}

		excellent := generateInsights(v, 8.5)
		assert.Contains(t, excellent.KeyInsights[len(excellent.KeyInsights)-1], "excellent")
		assert.Empty(t, excellent.Recommendations)

		good := generateInsights(v, 6.0)
		assert.Contains(t, good.KeyInsights[len(good.KeyInsights)-1], "good")
		require.NotEmpty(t, good.Recommendations)
		assert.Contains(t, good.Recommendations[len(good.Recommendations)-1], "concept")
		assert.Empty(t, good.RiskFactors)

		weak := generateInsights(v, 4.0)
		require.NotEmpty(t, weak.RiskFactors)
		assert.Contains(t, weak.RiskFactors[len(weak.RiskFactors)-1], "Low overall potential")
		require.NotEmpty(t, weak.Recommendations)
		assert.Contains(t, weak.Recommendations[len(weak.Recommendations)-1], "alternative locations")
		assert.Empty(t, weak.KeyInsights)
	})

	t.Run("lists are never nil", func(t *testing.T) {
		ins := generateInsights(feature.Vector{"competitors_500m": 5, feature.KeyAccessibilityScore: 0.5}, 6.5)
		assert.NotNil(t, ins.KeyInsights)
		assert.NotNil(t, ins.Recommendations)
		assert.NotNil(t, ins.RiskFactors)
		assert.NotNil(t, ins.Opportunities)
	})
}
