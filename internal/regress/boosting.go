package regress

import (
	"gonum.org/v1/gonum/stat"
)

// GradientBoosting fits shallow regression trees to squared-error residuals.
// With MaxDepth 1 it degenerates to boosted stumps, which serves as the
// generic boosting candidate.
type GradientBoosting struct {
	NumTrees     int
	LearningRate float64
	MaxDepth     int
	Seed         int64

	Init  float64
	Trees []*RegressionTree

	AggImportances []float64
}

// NewGradientBoosting creates an unfitted booster.
func NewGradientBoosting(numTrees int, learningRate float64, maxDepth int, seed int64) *GradientBoosting {
	return &GradientBoosting{
		NumTrees:     numTrees,
		LearningRate: learningRate,
		MaxDepth:     maxDepth,
		Seed:         seed,
	}
}

// Fit implements Regressor.
func (g *GradientBoosting) Fit(X [][]float64, y []float64) error {
	if err := validateMatrix(X, y); err != nil {
		return err
	}

	width := len(X[0])
	g.Init = stat.Mean(y, nil)
	g.Trees = make([]*RegressionTree, 0, g.NumTrees)
	g.AggImportances = make([]float64, width)

	// Current ensemble prediction per sample.
	pred := make([]float64, len(y))
	for i := range pred {
		pred[i] = g.Init
	}

	residual := make([]float64, len(y))
	for range g.NumTrees {
		for i := range y {
			residual[i] = y[i] - pred[i]
		}

		tree := NewRegressionTree(g.MaxDepth, 2)
		if err := tree.Fit(X, residual); err != nil {
			return err
		}
		g.Trees = append(g.Trees, tree)

		for i := range pred {
			pred[i] += g.LearningRate * tree.Predict(X[i])
		}
		for i, imp := range tree.Importances {
			g.AggImportances[i] += imp
		}
	}

	normalize(g.AggImportances)
	return nil
}

// Predict implements Regressor.
func (g *GradientBoosting) Predict(x []float64) float64 {
	out := g.Init
	for _, tree := range g.Trees {
		out += g.LearningRate * tree.Predict(x)
	}
	return out
}

// FeatureImportances implements Regressor.
func (g *GradientBoosting) FeatureImportances() []float64 {
	return g.AggImportances
}
