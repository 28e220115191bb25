// Package feature turns a (point, category, radius) query into the
// fixed-schema numeric feature vector consumed by model training and score
// inference.
package feature

import (
	"fmt"
	"sort"

	"github.com/sells-group/siteiq/internal/model"
)

// SchemaVersion identifies the feature-key schema. Persisted model artifacts
// record both this version and their exact column order, so older artifacts
// stay interpretable after the schema evolves.
const SchemaVersion = "v1"

// RadiusLadder is the fixed set of competition query radii in meters. The
// ladder is truncated at the requested maximum radius.
var RadiusLadder = []float64{100, 250, 500, 750, 1000}

// Vector maps feature keys to values. A vector always contains every key of
// the schema for its max radius; gaps are filled with the documented defaults
// (0, or the outer search bound for nearest-distance features).
type Vector map[string]float64

// Keys returns the canonical sorted key list for a vector. Sorting makes the
// column order deterministic for training matrices.
func (v Vector) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Competition feature keys, bucketed by radius.
func keyCompetitors(r float64) string           { return fmt.Sprintf("competitors_%dm", int(r)) }
func keyAvgCompetitorRating(r float64) string   { return fmt.Sprintf("avg_competitor_rating_%dm", int(r)) }
func keyAvgCompetitorReviews(r float64) string  { return fmt.Sprintf("avg_competitor_reviews_%dm", int(r)) }
func keyTotalCompetitorReviews(r float64) string {
	return fmt.Sprintf("total_competitor_reviews_%dm", int(r))
}

func keyHasNearby(c model.Category) string   { return fmt.Sprintf("has_%s_nearby", c) }
func keyCountNearby(c model.Category) string { return fmt.Sprintf("count_%s_nearby", c) }

// Derived and block-level feature keys.
const (
	KeyCompetitionIntensity  = "competition_intensity"
	KeyCompetitorDensityKm2  = "competitor_density_per_km2"
	KeyTotalBusinesses       = "total_businesses"
	KeyBusinessTypeDiversity = "business_type_diversity"
	KeyAvgAreaRating         = "avg_area_rating"
	KeyTotalAreaReviews      = "total_area_reviews"
	KeyHighQualityCount      = "high_quality_competitors"
	KeyHighQualityAvgRating  = "high_quality_avg_rating"
	KeyHighQualityAvgReviews = "high_quality_avg_reviews"
	KeyMarketEngagement      = "market_engagement"
	KeyAccessibilityScore    = "accessibility_score"
	KeyNearbyParks           = "nearby_parks"
	KeyDistanceToPark        = "distance_to_park"
	KeyCulturalAttractions   = "cultural_attractions"
	KeyEstimatedNoiseLevel   = "estimated_noise_level"
	KeyTourismFactor         = "tourism_factor"
	KeyPopulationDensity     = "population_density_estimate"
	KeyAvgIncome             = "avg_income_estimate"
	KeyMonth                 = "month"
	KeyDayOfWeek             = "day_of_week"
	KeyHour                  = "hour"
	KeyIsWeekend             = "is_weekend"
	KeyIsSummerSeason        = "is_summer_season"
	KeyIsBusinessHours       = "is_business_hours"
)

// accessibilityCategories are the proxy-service categories used for the
// accessibility block, queried at twice the request radius.
var accessibilityCategories = []model.Category{model.CategoryGasStation, model.CategoryBank}

// culturalCategories are counted within twice the request radius for the
// environmental block.
var culturalCategories = []model.Category{model.CategoryMuseum, model.CategoryMosque, model.CategoryChurch}

func keyProxyCount(c model.Category) string    { return fmt.Sprintf("%s_count", c) }
func keyProxyDistance(c model.Category) string { return fmt.Sprintf("distance_to_nearest_%s", c) }
