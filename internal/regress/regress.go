// Package regress implements the regression capability used by model
// training and inference: a common fit/predict contract, several concrete
// tree-ensemble learners, held-out fit metrics, and artifact serialization.
package regress

import (
	"github.com/rotisserie/eris"
)

// Regressor is the abstract regression capability. Any learner satisfying it
// plugs into the same selection tournament.
type Regressor interface {
	// Fit trains on the design matrix X (rows = samples) and labels y.
	Fit(X [][]float64, y []float64) error

	// Predict returns the estimate for one feature row.
	Predict(x []float64) float64

	// FeatureImportances returns per-column importance summing to 1, or nil
	// when the learner does not expose importances.
	FeatureImportances() []float64
}

// Candidate pairs an algorithm identifier with its constructor.
type Candidate struct {
	Name string
	New  func(seed int64) Regressor
}

// Candidates returns the tournament lineup in evaluation order. Order
// matters: ties on held-out R² keep the first-evaluated winner.
func Candidates() []Candidate {
	return []Candidate{
		{Name: "gradient_boosting", New: func(seed int64) Regressor {
			return NewGradientBoosting(100, 0.1, 3, seed)
		}},
		{Name: "random_forest", New: func(seed int64) Regressor {
			return NewRandomForest(100, 8, seed)
		}},
		{Name: "boosted_stumps", New: func(seed int64) Regressor {
			return NewGradientBoosting(200, 0.1, 1, seed)
		}},
		{Name: "regression_tree", New: func(seed int64) Regressor {
			return NewRegressionTree(6, 5)
		}},
	}
}

func validateMatrix(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return eris.New("regress: empty design matrix")
	}
	if len(X) != len(y) {
		return eris.Errorf("regress: %d rows but %d labels", len(X), len(y))
	}
	width := len(X[0])
	if width == 0 {
		return eris.New("regress: zero-width design matrix")
	}
	for i, row := range X {
		if len(row) != width {
			return eris.Errorf("regress: ragged row %d (%d != %d)", i, len(row), width)
		}
	}
	return nil
}
