// Package geospatial provides the spatial repository: read-only aggregate
// queries over the businesses table used for feature extraction, plus the
// SQL migrations for the scoring schema.
package geospatial

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/siteiq/internal/model"
)

// ErrRepository marks any spatial query failure. Extraction must propagate
// it rather than defaulting to a partial feature vector.
var ErrRepository = eris.New("geospatial: repository query failed")

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// AggregateStats summarizes same-category businesses within a radius.
// Averages are 0 when no rows match.
type AggregateStats struct {
	Count          int     `json:"count"`
	AvgRating      float64 `json:"avg_rating"`
	AvgReviewCount float64 `json:"avg_review_count"`
	SumReviewCount int     `json:"sum_review_count"`
}

// DensityStats summarizes all businesses within a radius regardless of
// category.
type DensityStats struct {
	TotalCount         int     `json:"total_count"`
	DistinctCategories int     `json:"distinct_categories"`
	AvgRating          float64 `json:"avg_rating"`
	SumReviews         int     `json:"sum_reviews"`
}

// NearestStats holds proximity results for one category. MinDistanceM is nil
// when nothing was found within the search bound; callers choose the default.
type NearestStats struct {
	Count        int      `json:"count"`
	MinDistanceM *float64 `json:"min_distance_m,omitempty"`
}

// Repository is the read-only spatial query surface consumed by feature
// extraction and training. All distances are geographic (great-circle)
// meters, computed on the geography type.
type Repository interface {
	// Aggregate returns count/rating/review stats for active businesses of
	// one category within radiusM of center.
	Aggregate(ctx context.Context, category model.Category, center Point, radiusM float64) (AggregateStats, error)

	// QualityAggregate is Aggregate restricted to businesses rated at least
	// minRating.
	QualityAggregate(ctx context.Context, category model.Category, center Point, radiusM, minRating float64) (AggregateStats, error)

	// Density returns category-agnostic stats within radiusM of center.
	Density(ctx context.Context, center Point, radiusM float64) (DensityStats, error)

	// CategoryCounts returns per-category business counts within radiusM.
	CategoryCounts(ctx context.Context, center Point, radiusM float64) (map[model.Category]int, error)

	// Nearest returns the count of and distance to the closest business of
	// one category within maxRadiusM.
	Nearest(ctx context.Context, category model.Category, center Point, maxRadiusM float64) (NearestStats, error)

	// ListEligible returns active, rated businesses of one category with
	// more than minReviews reviews, for training data assembly.
	ListEligible(ctx context.Context, category model.Category, minReviews int) ([]model.Business, error)

	// ListReviews returns all non-empty reviews for a business.
	ListReviews(ctx context.Context, businessID int64) ([]model.Review, error)
}
