package model

import "time"

// Scoring methods recorded on persisted results.
const (
	MethodML        = "ml"
	MethodRuleBased = "rule_based"
)

// Fixed confidence constants per scoring path. These are documented
// simplifications, not statistically derived intervals.
const (
	ConfidenceML        = 0.85
	ConfidenceRuleBased = 0.6
)

// ComponentScores holds the five independently computed 0-10 sub-scores.
type ComponentScores struct {
	Competition   float64 `json:"competition"`
	FootTraffic   float64 `json:"foot_traffic"`
	Accessibility float64 `json:"accessibility"`
	Demographic   float64 `json:"demographic"`
	Environmental float64 `json:"environmental"`
}

// Insights groups the categorized human-readable statements produced for a
// score. Lists may be empty, never nil once generated.
type Insights struct {
	KeyInsights     []string `json:"key_insights"`
	Recommendations []string `json:"recommendations"`
	RiskFactors     []string `json:"risk_factors"`
	Opportunities   []string `json:"opportunities"`
}

// ScoreResult is the immutable outcome of one scoring call.
type ScoreResult struct {
	ID                 string             `json:"id"`
	Latitude           float64            `json:"latitude"`
	Longitude          float64            `json:"longitude"`
	Category           Category           `json:"category"`
	OverallScore       float64            `json:"overall_score"`
	Confidence         float64            `json:"confidence"`
	Method             string             `json:"method"`
	Components         ComponentScores    `json:"component_scores"`
	Insights           Insights           `json:"insights"`
	FeatureImportance  map[string]float64 `json:"feature_importance,omitempty"`
	BusinessesAnalyzed int                `json:"businesses_analyzed"`
	CreatedAt          time.Time          `json:"created_at"`
}

// Clamp bounds v to the [lo, hi] interval.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
