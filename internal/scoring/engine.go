package scoring

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/siteiq/internal/feature"
	"github.com/sells-group/siteiq/internal/geospatial"
	"github.com/sells-group/siteiq/internal/mlstore"
	"github.com/sells-group/siteiq/internal/model"
	"github.com/sells-group/siteiq/internal/regress"
)

// AnalysisSink persists finished score results. Failures are logged and do
// not fail the scoring call; the result has already been computed.
type AnalysisSink interface {
	Insert(ctx context.Context, result *model.ScoreResult) error
}

// Engine answers scoring requests. It prefers the active trained model for
// the category and degrades to the rule-based path when none exists or the
// artifact cannot be decoded.
type Engine struct {
	extractor *feature.Extractor
	store     mlstore.Store
	cache     *ModelCache
	sink      AnalysisSink
	now       func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithSink sets the analysis persistence sink.
func WithSink(sink AnalysisSink) EngineOption {
	return func(e *Engine) { e.sink = sink }
}

// WithEngineClock overrides the timestamp source, for tests.
func WithEngineClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine builds an Engine around an extractor and a model store.
func NewEngine(extractor *feature.Extractor, store mlstore.Store, opts ...EngineOption) *Engine {
	e := &Engine{
		extractor: extractor,
		store:     store,
		cache:     NewModelCache(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score extracts features for the location and produces a full score result.
// The category must be one of the known categories and coordinates must be
// valid; radius is the maximum competition radius in meters.
func (e *Engine) Score(ctx context.Context, lat, lng float64, category model.Category, radiusM float64) (*model.ScoreResult, error) {
	vec, err := e.extractor.Extract(ctx, geospatial.Point{Lat: lat, Lng: lng}, category, radiusM)
	if err != nil {
		return nil, eris.Wrap(err, "scoring: extract features")
	}

	result := &model.ScoreResult{
		ID:                 uuid.NewString(),
		Latitude:           lat,
		Longitude:          lng,
		Category:           category,
		BusinessesAnalyzed: int(vec[feature.KeyTotalBusinesses]),
		CreatedAt:          e.now().UTC(),
	}

	entry := e.resolveModel(ctx, category)
	if entry != nil {
		x := orderVector(vec, entry.meta.FeatureNames)
		result.OverallScore = model.Clamp(entry.reg.Predict(x), 0, 10)
		result.Confidence = model.ConfidenceML
		result.Method = model.MethodML
		result.FeatureImportance = entry.meta.FeatureImportance
	} else {
		result.OverallScore = fallbackScore(vec)
		result.Confidence = model.ConfidenceRuleBased
		result.Method = model.MethodRuleBased
	}

	result.Components = componentScores(vec)
	result.Insights = generateInsights(vec, result.OverallScore)

	if e.sink != nil {
		if err := e.sink.Insert(ctx, result); err != nil {
			zap.L().Warn("scoring: persist analysis failed",
				zap.String("analysis_id", result.ID),
				zap.Error(err))
		}
	}
	return result, nil
}

// RefreshModel drops the cached model for a category so the next score call
// loads the newly activated artifact.
func (e *Engine) RefreshModel(category model.Category) {
	e.cache.Invalidate(category)
}

// resolveModel returns the usable model for a category, or nil when scoring
// should take the rule-based path. Store and decode failures degrade rather
// than fail the request.
func (e *Engine) resolveModel(ctx context.Context, category model.Category) *cachedModel {
	if entry, ok := e.cache.Get(category); ok {
		return entry
	}

	artifact, err := e.store.LoadLatestActive(ctx, category)
	if err != nil {
		if !errors.Is(err, mlstore.ErrNotFound) {
			zap.L().Warn("scoring: model load failed, using rule-based path",
				zap.String("category", string(category)),
				zap.Error(err))
		}
		return nil
	}

	reg, err := regress.Unmarshal(artifact.Payload)
	if err != nil {
		zap.L().Warn("scoring: model decode failed, using rule-based path",
			zap.String("category", string(category)),
			zap.String("model_id", artifact.Metadata.ID),
			zap.Error(err))
		return nil
	}

	entry := &cachedModel{reg: reg, meta: artifact.Metadata}
	e.cache.Put(category, entry)
	return entry
}

// orderVector lays the vector out in the artifact's column order. Keys the
// artifact knows but the vector lacks default to 0.
func orderVector(v feature.Vector, names []string) []float64 {
	x := make([]float64, len(names))
	for i, name := range names {
		x[i] = v[name]
	}
	return x
}
