package feature

import (
	"context"
	"math"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/siteiq/internal/geospatial"
	"github.com/sells-group/siteiq/internal/model"
)

// highQualityMinRating is the rating floor for the quality feature block.
const highQualityMinRating = 4.0

// Extractor computes feature vectors from spatial repository aggregates.
// Given fixed repository state and a fixed clock, output is reproducible
// bit-for-bit across calls.
type Extractor struct {
	repo geospatial.Repository
	demo DemographicEstimator
	now  func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock overrides the wall clock used for temporal features. Tests inject
// a fixed clock to make vectors deterministic.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// WithDemographics overrides the demographic estimator.
func WithDemographics(d DemographicEstimator) Option {
	return func(e *Extractor) { e.demo = d }
}

// NewExtractor creates an Extractor over the given spatial repository.
func NewExtractor(repo geospatial.Repository, opts ...Option) *Extractor {
	e := &Extractor{
		repo: repo,
		demo: StubDemographics{},
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// radiusStats pairs one ladder radius with its aggregate result.
type radiusStats struct {
	radius float64
	stats  geospatial.AggregateStats
}

// Extract computes the full feature vector for a point and category. Any
// repository failure aborts extraction; a partial vector is never returned.
func (e *Extractor) Extract(ctx context.Context, center geospatial.Point, category model.Category, maxRadiusM float64) (Vector, error) {
	if !category.Valid() {
		return nil, eris.Wrapf(model.ErrUnknownCategory, "%q", category)
	}
	if err := model.ValidateCoordinates(center.Lat, center.Lng); err != nil {
		return nil, err
	}
	if maxRadiusM <= 0 {
		return nil, eris.Errorf("feature: non-positive radius %f", maxRadiusM)
	}

	v := make(Vector)

	if err := e.competitionBlock(ctx, v, center, category, maxRadiusM); err != nil {
		return nil, err
	}
	if err := e.densityBlock(ctx, v, center, maxRadiusM); err != nil {
		return nil, err
	}
	if err := e.qualityBlock(ctx, v, center, category, maxRadiusM); err != nil {
		return nil, err
	}
	if err := e.accessibilityBlock(ctx, v, center, maxRadiusM); err != nil {
		return nil, err
	}
	if err := e.environmentalBlock(ctx, v, center, maxRadiusM); err != nil {
		return nil, err
	}
	for k, val := range e.demo.Estimate(center, maxRadiusM) {
		v[k] = val
	}
	e.temporalBlock(v)

	zap.L().Debug("feature: extracted vector",
		zap.Float64("lat", center.Lat),
		zap.Float64("lng", center.Lng),
		zap.String("category", category.String()),
		zap.Int("features", len(v)),
	)
	return v, nil
}

// competitionBlock runs one aggregate query per ladder radius, in parallel.
// Each radius is independent and read-only, so ordering does not matter; the
// merged result is deterministic.
func (e *Extractor) competitionBlock(ctx context.Context, v Vector, center geospatial.Point, category model.Category, maxRadiusM float64) error {
	var radii []float64
	for _, r := range RadiusLadder {
		if r <= maxRadiusM {
			radii = append(radii, r)
		}
	}

	results := make([]radiusStats, len(radii))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range radii {
		g.Go(func() error {
			stats, err := e.repo.Aggregate(gctx, category, center, r)
			if err != nil {
				return eris.Wrapf(err, "feature: competition aggregate at %dm", int(r))
			}
			results[i] = radiusStats{radius: r, stats: stats}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, rs := range results {
		v[keyCompetitors(rs.radius)] = float64(rs.stats.Count)
		v[keyAvgCompetitorRating(rs.radius)] = rs.stats.AvgRating
		v[keyAvgCompetitorReviews(rs.radius)] = rs.stats.AvgReviewCount
		v[keyTotalCompetitorReviews(rs.radius)] = float64(rs.stats.SumReviewCount)
	}

	// Derived intensity: inner-ring concentration relative to the 500m ring.
	c250 := v[keyCompetitors(250)]
	c500 := v[keyCompetitors(500)]
	if c500 > 0 {
		v[KeyCompetitionIntensity] = c250 / math.Max(c500, 1)
	} else {
		v[KeyCompetitionIntensity] = 0
	}

	areaKm2 := math.Pi * math.Pow(maxRadiusM/1000, 2)
	v[KeyCompetitorDensityKm2] = c500 / areaKm2

	return nil
}

func (e *Extractor) densityBlock(ctx context.Context, v Vector, center geospatial.Point, radiusM float64) error {
	density, err := e.repo.Density(ctx, center, radiusM)
	if err != nil {
		return eris.Wrap(err, "feature: density")
	}
	v[KeyTotalBusinesses] = float64(density.TotalCount)
	v[KeyBusinessTypeDiversity] = float64(density.DistinctCategories)
	v[KeyAvgAreaRating] = density.AvgRating
	v[KeyTotalAreaReviews] = float64(density.SumReviews)

	counts, err := e.repo.CategoryCounts(ctx, center, radiusM)
	if err != nil {
		return eris.Wrap(err, "feature: category counts")
	}
	for _, c := range model.ReferenceCategories() {
		n := counts[c]
		if n > 0 {
			v[keyHasNearby(c)] = 1
		} else {
			v[keyHasNearby(c)] = 0
		}
		v[keyCountNearby(c)] = float64(n)
	}
	return nil
}

func (e *Extractor) qualityBlock(ctx context.Context, v Vector, center geospatial.Point, category model.Category, radiusM float64) error {
	quality, err := e.repo.QualityAggregate(ctx, category, center, radiusM, highQualityMinRating)
	if err != nil {
		return eris.Wrap(err, "feature: quality aggregate")
	}
	v[KeyHighQualityCount] = float64(quality.Count)
	v[KeyHighQualityAvgRating] = quality.AvgRating
	v[KeyHighQualityAvgReviews] = quality.AvgReviewCount

	v[KeyMarketEngagement] = v[KeyTotalAreaReviews] / math.Max(v[KeyTotalBusinesses], 1)
	return nil
}

// accessibilityBlock queries proxy-service categories within twice the
// request radius. A missing nearest distance defaults to the outer search
// bound, signaling "nothing found in range" rather than distance zero.
func (e *Extractor) accessibilityBlock(ctx context.Context, v Vector, center geospatial.Point, radiusM float64) error {
	bound := radiusM * 2
	proxyTotal := 0.0
	for _, c := range accessibilityCategories {
		stats, err := e.repo.Nearest(ctx, c, center, bound)
		if err != nil {
			return eris.Wrapf(err, "feature: nearest %s", c)
		}
		v[keyProxyCount(c)] = float64(stats.Count)
		if stats.MinDistanceM != nil {
			v[keyProxyDistance(c)] = *stats.MinDistanceM
		} else {
			v[keyProxyDistance(c)] = bound
		}
		proxyTotal += float64(stats.Count)
	}
	v[KeyAccessibilityScore] = math.Min(proxyTotal/5, 1.0)
	return nil
}

func (e *Extractor) environmentalBlock(ctx context.Context, v Vector, center geospatial.Point, radiusM float64) error {
	parkBound := radiusM * 3
	parks, err := e.repo.Nearest(ctx, model.CategoryPark, center, parkBound)
	if err != nil {
		return eris.Wrap(err, "feature: nearest park")
	}
	v[KeyNearbyParks] = float64(parks.Count)
	if parks.MinDistanceM != nil {
		v[KeyDistanceToPark] = *parks.MinDistanceM
	} else {
		v[KeyDistanceToPark] = parkBound
	}

	cultural := 0.0
	for _, c := range culturalCategories {
		stats, err := e.repo.Nearest(ctx, c, center, radiusM*2)
		if err != nil {
			return eris.Wrapf(err, "feature: nearest %s", c)
		}
		cultural += float64(stats.Count)
	}
	v[KeyCulturalAttractions] = cultural

	// Noise proxy from the busiest reference categories.
	busy := v[keyCountNearby(model.CategoryRestaurant)] + v[keyCountNearby(model.CategoryCafe)]
	v[KeyEstimatedNoiseLevel] = math.Min(busy/10, 1.0)
	return nil
}

// temporalBlock derives calendar features from the injected clock. Weekday is
// Monday-based (0=Monday .. 6=Sunday).
func (e *Extractor) temporalBlock(v Vector) {
	now := e.now()
	weekday := (int(now.Weekday()) + 6) % 7

	v[KeyMonth] = float64(int(now.Month()))
	v[KeyDayOfWeek] = float64(weekday)
	v[KeyHour] = float64(now.Hour())

	v[KeyIsWeekend] = 0
	if weekday >= 5 {
		v[KeyIsWeekend] = 1
	}

	v[KeyIsSummerSeason] = 0
	switch now.Month() {
	case time.June, time.July, time.August, time.September:
		v[KeyIsSummerSeason] = 1
	}

	v[KeyIsBusinessHours] = 0
	if h := now.Hour(); h >= 8 && h <= 22 {
		v[KeyIsBusinessHours] = 1
	}
}
