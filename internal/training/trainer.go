package training

import (
	"context"
	"math/rand"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/siteiq/internal/feature"
	"github.com/sells-group/siteiq/internal/mlstore"
	"github.com/sells-group/siteiq/internal/model"
	"github.com/sells-group/siteiq/internal/regress"
)

// splitSeed fixes the train/test shuffle so runs are reproducible.
const splitSeed = 42

// testFraction is the held-out share of the dataset.
const testFraction = 0.2

// Result summarizes one training run.
type Result struct {
	Success     bool            `json:"success"`
	ModelID     string          `json:"model_id,omitempty"`
	Algorithm   string          `json:"algorithm,omitempty"`
	Metrics     regress.Metrics `json:"fit_quality"`
	SampleCount int             `json:"sample_count"`
	Reason      string          `json:"reason,omitempty"`
}

// Trainer runs the candidate tournament and persists the winner. Training is
// long-lived; the context deadline bounds total fitting cost and is checked
// between candidates for cooperative cancellation.
type Trainer struct {
	store   mlstore.Store
	timeout time.Duration
}

// NewTrainer creates a Trainer. timeout bounds a whole training run; zero
// means no bound beyond the caller's context.
func NewTrainer(store mlstore.Store, timeout time.Duration) *Trainer {
	return &Trainer{store: store, timeout: timeout}
}

// Train fits every candidate on an 80/20 split, selects the strictly best
// held-out R², and persists the winner as the new active artifact. A failed
// run writes nothing, so the previously active artifact is untouched.
func (t *Trainer) Train(ctx context.Context, ds *Dataset) (*Result, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	log := zap.L().With(zap.String("component", "training.trainer"), zap.String("category", ds.Category.String()))

	trainX, trainY, testX, testY := split(ds, splitSeed)

	var (
		best        regress.Regressor
		bestName    string
		bestMetrics regress.Metrics
		evaluated   int
	)

	for _, candidate := range regress.Candidates() {
		// Cooperative cancellation between fits: each candidate is a large
		// sequential unit of work.
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "training: cancelled")
		}

		reg := candidate.New(splitSeed)
		if err := reg.Fit(trainX, trainY); err != nil {
			return nil, eris.Wrapf(err, "training: fit %s", candidate.Name)
		}

		predicted := make([]float64, len(testX))
		for i, row := range testX {
			predicted[i] = reg.Predict(row)
		}
		metrics, err := regress.Evaluate(predicted, testY)
		if err != nil {
			return nil, eris.Wrapf(err, "training: evaluate %s", candidate.Name)
		}

		log.Info("candidate evaluated",
			zap.String("algorithm", candidate.Name),
			zap.Float64("r2", metrics.R2),
			zap.Float64("rmse", metrics.RMSE),
			zap.Float64("mae", metrics.MAE),
		)

		// Strict greater-than: an exact R² tie keeps the first-evaluated
		// candidate.
		if evaluated == 0 || metrics.R2 > bestMetrics.R2 {
			best = reg
			bestName = candidate.Name
			bestMetrics = metrics
		}
		evaluated++
	}

	if best == nil {
		return nil, eris.New("training: no candidate evaluated")
	}

	payload, err := regress.Marshal(best)
	if err != nil {
		return nil, eris.Wrap(err, "training: serialize winner")
	}

	artifact := &model.ModelArtifact{
		Metadata: model.ModelMetadata{
			Category:          ds.Category,
			Algorithm:         bestName,
			SchemaVersion:     feature.SchemaVersion,
			FeatureNames:      ds.Columns,
			R2:                bestMetrics.R2,
			RMSE:              bestMetrics.RMSE,
			MAE:               bestMetrics.MAE,
			SampleCount:       len(ds.X),
			FeatureImportance: importanceMap(best, ds.Columns),
		},
		Payload: payload,
	}

	id, err := t.store.Save(ctx, artifact)
	if err != nil {
		return nil, eris.Wrap(err, "training: persist winner")
	}

	log.Info("training complete",
		zap.String("model_id", id),
		zap.String("algorithm", bestName),
		zap.Float64("r2", bestMetrics.R2),
		zap.Int("samples", len(ds.X)),
	)

	return &Result{
		Success:     true,
		ModelID:     id,
		Algorithm:   bestName,
		Metrics:     bestMetrics,
		SampleCount: len(ds.X),
	}, nil
}

// split shuffles row indices with a fixed seed and carves off the held-out
// fraction.
func split(ds *Dataset, seed int64) (trainX [][]float64, trainY []float64, testX [][]float64, testY []float64) {
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(len(ds.X))

	testN := int(float64(len(ds.X)) * testFraction)
	if testN < 1 {
		testN = 1
	}

	for i, p := range perm {
		if i < testN {
			testX = append(testX, ds.X[p])
			testY = append(testY, ds.Y[p])
		} else {
			trainX = append(trainX, ds.X[p])
			trainY = append(trainY, ds.Y[p])
		}
	}
	return trainX, trainY, testX, testY
}

// importanceMap maps learner importances back onto column names. Learners
// without importances yield an empty map.
func importanceMap(reg regress.Regressor, columns []string) map[string]float64 {
	raw := reg.FeatureImportances()
	if len(raw) != len(columns) {
		return map[string]float64{}
	}
	out := make(map[string]float64, len(columns))
	for i, col := range columns {
		if raw[i] > 0 {
			out[col] = raw[i]
		}
	}
	return out
}
