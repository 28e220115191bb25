package regress

import (
	"math"
	"math/rand"
)

// RandomForest is a bagged ensemble of regression trees with per-tree
// feature subsampling (sqrt of the column count).
type RandomForest struct {
	NumTrees int
	MaxDepth int
	Seed     int64
	Trees    []*RegressionTree

	AggImportances []float64
}

// NewRandomForest creates an unfitted forest.
func NewRandomForest(numTrees, maxDepth int, seed int64) *RandomForest {
	return &RandomForest{NumTrees: numTrees, MaxDepth: maxDepth, Seed: seed}
}

// Fit implements Regressor.
func (f *RandomForest) Fit(X [][]float64, y []float64) error {
	if err := validateMatrix(X, y); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(f.Seed))
	n := len(X)
	width := len(X[0])
	subsetSize := int(math.Max(1, math.Sqrt(float64(width))))

	f.Trees = make([]*RegressionTree, 0, f.NumTrees)
	f.AggImportances = make([]float64, width)

	for range f.NumTrees {
		// Bootstrap sample.
		idx := make([]int, n)
		for i := range idx {
			idx[i] = rng.Intn(n)
		}

		subset := sampleFeatures(rng, width, subsetSize)

		tree := NewRegressionTree(f.MaxDepth, 2)
		tree.Importances = make([]float64, width)
		tree.Root = tree.build(X, y, idx, 0, subset)
		normalize(tree.Importances)

		f.Trees = append(f.Trees, tree)
		for i, imp := range tree.Importances {
			f.AggImportances[i] += imp
		}
	}

	normalize(f.AggImportances)
	return nil
}

// Predict implements Regressor: the mean of the per-tree estimates.
func (f *RandomForest) Predict(x []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	sum := 0.0
	for _, tree := range f.Trees {
		sum += tree.Predict(x)
	}
	return sum / float64(len(f.Trees))
}

// FeatureImportances implements Regressor.
func (f *RandomForest) FeatureImportances() []float64 {
	return f.AggImportances
}

// sampleFeatures draws k distinct column indices.
func sampleFeatures(rng *rand.Rand, width, k int) []int {
	perm := rng.Perm(width)
	subset := perm[:k]
	return subset
}
