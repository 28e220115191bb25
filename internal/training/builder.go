// Package training assembles labeled datasets from historical businesses and
// runs the candidate-model tournament.
package training

import (
	"context"
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/siteiq/internal/feature"
	"github.com/sells-group/siteiq/internal/geospatial"
	"github.com/sells-group/siteiq/internal/model"
	"github.com/sells-group/siteiq/internal/resilience"
)

// Eligibility and fit floors.
//
// The 30-business pre-check and the 50-row fit floor are both enforced, as
// two distinct gates: 30 bounds the eligibility query before any expensive
// feature generation starts, 50 bounds the rows that actually made it
// through feature generation before a model may be fit. Hitting the second
// gate with 30-49 rows fails with ErrInsufficientData, never silently
// downgrades.
const (
	MinEligibleBusinesses = 30
	MinTrainingRows       = 50
	MinReviewCount        = 5
)

// ErrInsufficientData is returned when a training gate is not met. No
// artifact is written.
var ErrInsufficientData = eris.New("training: insufficient training data")

// Dataset is a feature matrix with labels, ready for fitting. Columns define
// the vector-to-matrix mapping recorded on the resulting artifact.
type Dataset struct {
	Category    model.Category
	Columns     []string
	X           [][]float64
	Y           []float64
	BusinessIDs []int64
}

// Builder assembles training datasets. Feature generation fans out over a
// bounded worker group and is rate-limited to keep repository load sane.
type Builder struct {
	repo        geospatial.Repository
	extractor   *feature.Extractor
	radiusM     float64
	concurrency int
	limiter     *rate.Limiter
	retry       resilience.RetryConfig
}

// NewBuilder creates a Builder. queryRate bounds feature-generation
// extractions per second; zero disables the limiter.
func NewBuilder(repo geospatial.Repository, extractor *feature.Extractor, radiusM float64, concurrency int, queryRate float64) *Builder {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if queryRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(queryRate), 1)
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Builder{
		repo:        repo,
		extractor:   extractor,
		radiusM:     radiusM,
		concurrency: concurrency,
		limiter:     limiter,
		retry:       resilience.DefaultRetryConfig(),
	}
}

// Build selects eligible businesses of one category and computes one labeled
// example per business at its own coordinates.
func (b *Builder) Build(ctx context.Context, category model.Category) (*Dataset, error) {
	log := zap.L().With(zap.String("component", "training.builder"), zap.String("category", category.String()))

	eligible, err := b.repo.ListEligible(ctx, category, MinReviewCount)
	if err != nil {
		return nil, eris.Wrap(err, "training: list eligible businesses")
	}
	if len(eligible) < MinEligibleBusinesses {
		return nil, eris.Wrapf(ErrInsufficientData, "%d eligible businesses, need %d", len(eligible), MinEligibleBusinesses)
	}

	log.Info("building training dataset", zap.Int("eligible", len(eligible)))

	vectors := make([]feature.Vector, len(eligible))
	labels := make([]float64, len(eligible))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, biz := range eligible {
		g.Go(func() error {
			if err := b.limiter.Wait(gctx); err != nil {
				return err
			}

			center := geospatial.Point{Lat: biz.Latitude, Lng: biz.Longitude}
			var vec feature.Vector
			extractErr := resilience.Do(gctx, b.retry, func(ctx context.Context) error {
				var err error
				vec, err = b.extractor.Extract(ctx, center, category, b.radiusM)
				return err
			})
			if extractErr != nil {
				return eris.Wrapf(extractErr, "training: features for business %d", biz.ID)
			}

			vectors[i] = vec
			labels[i] = SuccessScore(*biz.Rating, biz.ReviewCount)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds := assemble(category, eligible, vectors, labels)
	if len(ds.X) < MinTrainingRows {
		return nil, eris.Wrapf(ErrInsufficientData, "%d feature rows, need %d", len(ds.X), MinTrainingRows)
	}

	log.Info("training dataset ready",
		zap.Int("rows", len(ds.X)),
		zap.Int("columns", len(ds.Columns)),
	)
	return ds, nil
}

// SuccessScore is the training label: 70% normalized rating, 30% log-scaled
// review volume saturating at 100 reviews.
func SuccessScore(rating float64, reviewCount int) float64 {
	ratingNormalized := rating / 5 * 10
	reviewFactor := math.Min(math.Log(float64(reviewCount)+1)/math.Log(100), 1)
	return model.Clamp(ratingNormalized*0.7+reviewFactor*10*0.3, 0, 10)
}

// assemble builds the design matrix over the union of feature keys. A key
// missing from a row becomes NaN and is imputed with the column median.
// Inference uses a 0-default for query gaps instead; the two paths do not
// share fill behavior.
func assemble(category model.Category, eligible []model.Business, vectors []feature.Vector, labels []float64) *Dataset {
	union := make(feature.Vector)
	for _, vec := range vectors {
		for k := range vec {
			union[k] = 0
		}
	}
	columns := union.Keys()

	X := make([][]float64, len(vectors))
	ids := make([]int64, len(vectors))
	for i, vec := range vectors {
		row := make([]float64, len(columns))
		for j, col := range columns {
			if val, ok := vec[col]; ok {
				row[j] = val
			} else {
				row[j] = math.NaN()
			}
		}
		X[i] = row
		ids[i] = eligible[i].ID
	}

	imputeMedians(X)

	return &Dataset{
		Category:    category,
		Columns:     columns,
		X:           X,
		Y:           labels,
		BusinessIDs: ids,
	}
}

// imputeMedians replaces NaN cells with their column median, in place.
func imputeMedians(X [][]float64) {
	if len(X) == 0 {
		return
	}
	width := len(X[0])
	col := make([]float64, 0, len(X))

	for j := 0; j < width; j++ {
		col = col[:0]
		for i := range X {
			if !math.IsNaN(X[i][j]) {
				col = append(col, X[i][j])
			}
		}
		if len(col) == len(X) {
			continue // nothing missing
		}

		median := 0.0
		if len(col) > 0 {
			sort.Float64s(col)
			median = stat.Quantile(0.5, stat.Empirical, col, nil)
		}
		for i := range X {
			if math.IsNaN(X[i][j]) {
				X[i][j] = median
			}
		}
	}
}
