package training

import (
	"context"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/siteiq/internal/feature"
	"github.com/sells-group/siteiq/internal/geospatial"
	"github.com/sells-group/siteiq/internal/model"
)

// trainRepo serves a fixed eligible list and benign aggregates, counting
// how many feature queries were issued.
type trainRepo struct {
	eligible       []model.Business
	aggregateCalls atomic.Int64
}

func (r *trainRepo) Aggregate(_ context.Context, _ model.Category, _ geospatial.Point, _ float64) (geospatial.AggregateStats, error) {
	r.aggregateCalls.Add(1)
	return geospatial.AggregateStats{Count: 4, AvgRating: 4.1, AvgReviewCount: 30, SumReviewCount: 120}, nil
}

func (r *trainRepo) QualityAggregate(_ context.Context, _ model.Category, _ geospatial.Point, _, _ float64) (geospatial.AggregateStats, error) {
	return geospatial.AggregateStats{Count: 1, AvgRating: 4.5, AvgReviewCount: 60}, nil
}

func (r *trainRepo) Density(_ context.Context, _ geospatial.Point, _ float64) (geospatial.DensityStats, error) {
	return geospatial.DensityStats{TotalCount: 25, DistinctCategories: 6, AvgRating: 3.8, SumReviews: 700}, nil
}

func (r *trainRepo) CategoryCounts(_ context.Context, _ geospatial.Point, _ float64) (map[model.Category]int, error) {
	return map[model.Category]int{model.CategoryRestaurant: 3}, nil
}

func (r *trainRepo) Nearest(_ context.Context, _ model.Category, _ geospatial.Point, _ float64) (geospatial.NearestStats, error) {
	return geospatial.NearestStats{Count: 1}, nil
}

func (r *trainRepo) ListEligible(_ context.Context, _ model.Category, _ int) ([]model.Business, error) {
	return r.eligible, nil
}

func (r *trainRepo) ListReviews(_ context.Context, _ int64) ([]model.Review, error) {
	return nil, nil
}

func eligibleBusinesses(n int) []model.Business {
	out := make([]model.Business, n)
	for i := range out {
		rating := 3.0 + float64(i%20)*0.1
		out[i] = model.Business{
			ID:          int64(i + 1),
			Category:    model.CategoryCafe,
			Latitude:    41.0 + float64(i)*0.001,
			Longitude:   29.0 + float64(i)*0.001,
			Rating:      &rating,
			ReviewCount: 10 + i,
			Active:      true,
		}
	}
	return out
}

func newTestBuilder(repo *trainRepo) *Builder {
	extractor := feature.NewExtractor(repo)
	return NewBuilder(repo, extractor, 500, 2, 0)
}

func TestBuildRejectsTooFewEligible(t *testing.T) {
	repo := &trainRepo{eligible: eligibleBusinesses(MinEligibleBusinesses - 1)}
	b := newTestBuilder(repo)

	_, err := b.Build(context.Background(), model.CategoryCafe)

	require.ErrorIs(t, err, ErrInsufficientData)
	assert.Zero(t, repo.aggregateCalls.Load(), "no feature queries before the eligibility gate")
}

func TestBuildRejectsTooFewRows(t *testing.T) {
	// Passes the 30-business pre-check but lands under the 50-row fit floor.
	repo := &trainRepo{eligible: eligibleBusinesses(MinEligibleBusinesses)}
	b := newTestBuilder(repo)

	_, err := b.Build(context.Background(), model.CategoryCafe)

	require.ErrorIs(t, err, ErrInsufficientData)
	assert.Positive(t, repo.aggregateCalls.Load(), "feature generation ran before the row gate")
}

func TestBuildDataset(t *testing.T) {
	repo := &trainRepo{eligible: eligibleBusinesses(60)}
	b := newTestBuilder(repo)

	ds, err := b.Build(context.Background(), model.CategoryCafe)
	require.NoError(t, err)

	assert.Equal(t, model.CategoryCafe, ds.Category)
	assert.Len(t, ds.X, 60)
	assert.Len(t, ds.Y, 60)
	assert.Len(t, ds.BusinessIDs, 60)
	assert.Equal(t, int64(1), ds.BusinessIDs[0])

	require.NotEmpty(t, ds.Columns)
	assert.IsIncreasing(t, ds.Columns, "column order is the sorted key union")
	for _, row := range ds.X {
		assert.Len(t, row, len(ds.Columns))
		for _, cell := range row {
			assert.False(t, math.IsNaN(cell))
		}
	}

	// Labels match the success formula for each business.
	for i, biz := range repo.eligible {
		assert.InDelta(t, SuccessScore(*biz.Rating, biz.ReviewCount), ds.Y[i], 1e-9)
	}
}

func TestSuccessScore(t *testing.T) {
	tests := []struct {
		name    string
		rating  float64
		reviews int
		want    float64
	}{
		{"perfect saturated", 5.0, 100, 10.0},
		{"perfect beyond saturation", 5.0, 5000, 10.0},
		{"zero everything", 0, 0, 0},
		{"rating only", 5.0, 0, 7.0},
		{"mid", 4.0, 50, 4.0/5*10*0.7 + math.Log(51)/math.Log(100)*10*0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SuccessScore(tt.rating, tt.reviews), 1e-9)
		})
	}
}

func TestSuccessScoreMonotonicInReviews(t *testing.T) {
	prev := -1.0
	for _, reviews := range []int{0, 1, 5, 20, 50, 99} {
		got := SuccessScore(4.0, reviews)
		assert.Greater(t, got, prev)
		prev = got
	}
}

func TestImputeMedians(t *testing.T) {
	nan := math.NaN()
	X := [][]float64{
		{1, nan},
		{3, 10},
		{nan, 20},
		{5, 30},
	}

	imputeMedians(X)

	assert.Equal(t, 3.0, X[2][0], "column median replaces the gap")
	assert.Equal(t, 20.0, X[0][1])
	for _, row := range X {
		for _, cell := range row {
			assert.False(t, math.IsNaN(cell))
		}
	}
}

func TestImputeMediansAllMissingColumn(t *testing.T) {
	nan := math.NaN()
	X := [][]float64{{nan}, {nan}}

	imputeMedians(X)

	assert.Equal(t, 0.0, X[0][0])
	assert.Equal(t, 0.0, X[1][0])
}
