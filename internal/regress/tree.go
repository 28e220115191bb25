package regress

import (
	"sort"
)

// TreeNode is one node of a fitted regression tree. Fields are exported for
// gob serialization.
type TreeNode struct {
	Leaf      bool
	Value     float64
	Feature   int
	Threshold float64
	Left      *TreeNode
	Right     *TreeNode
}

// RegressionTree is a CART regression tree using variance-reduction splits.
type RegressionTree struct {
	MaxDepth    int
	MinLeaf     int
	Root        *TreeNode
	Importances []float64
}

// NewRegressionTree creates an unfitted tree.
func NewRegressionTree(maxDepth, minLeaf int) *RegressionTree {
	return &RegressionTree{MaxDepth: maxDepth, MinLeaf: minLeaf}
}

// Fit implements Regressor.
func (t *RegressionTree) Fit(X [][]float64, y []float64) error {
	if err := validateMatrix(X, y); err != nil {
		return err
	}
	t.Importances = make([]float64, len(X[0]))

	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	t.Root = t.build(X, y, idx, 0, nil)
	normalize(t.Importances)
	return nil
}

// build grows the tree recursively. featureSubset restricts the columns
// considered at each split (used by the forest); nil means all columns.
func (t *RegressionTree) build(X [][]float64, y []float64, idx []int, depth int, featureSubset []int) *TreeNode {
	if depth >= t.MaxDepth || len(idx) < 2*t.MinLeaf || constant(y, idx) {
		return &TreeNode{Leaf: true, Value: mean(y, idx)}
	}

	feat, thresh, gain, ok := t.bestSplit(X, y, idx, featureSubset)
	if !ok {
		return &TreeNode{Leaf: true, Value: mean(y, idx)}
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feat] <= thresh {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < t.MinLeaf || len(right) < t.MinLeaf {
		return &TreeNode{Leaf: true, Value: mean(y, idx)}
	}

	t.Importances[feat] += gain

	return &TreeNode{
		Feature:   feat,
		Threshold: thresh,
		Left:      t.build(X, y, left, depth+1, featureSubset),
		Right:     t.build(X, y, right, depth+1, featureSubset),
	}
}

// bestSplit scans candidate thresholds per feature for the largest SSE
// reduction.
func (t *RegressionTree) bestSplit(X [][]float64, y []float64, idx []int, featureSubset []int) (int, float64, float64, bool) {
	parentSSE := sse(y, idx)

	features := featureSubset
	if features == nil {
		features = make([]int, len(X[0]))
		for f := range features {
			features[f] = f
		}
	}

	bestGain := 0.0
	bestFeat := -1
	bestThresh := 0.0

	order := make([]int, len(idx))
	for _, f := range features {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool { return X[order[a]][f] < X[order[b]][f] })

		// Running sums allow O(1) SSE on both sides of each cut point.
		var leftSum, leftSq float64
		totalSum, totalSq := sums(y, idx)

		for i := 0; i < len(order)-1; i++ {
			v := y[order[i]]
			leftSum += v
			leftSq += v * v

			// Only cut between distinct feature values.
			if X[order[i]][f] == X[order[i+1]][f] {
				continue
			}

			nLeft := float64(i + 1)
			nRight := float64(len(order) - i - 1)
			if int(nLeft) < t.MinLeaf || int(nRight) < t.MinLeaf {
				continue
			}

			leftSSE := leftSq - leftSum*leftSum/nLeft
			rightSum := totalSum - leftSum
			rightSSE := (totalSq - leftSq) - rightSum*rightSum/nRight

			gain := parentSSE - leftSSE - rightSSE
			if gain > bestGain {
				bestGain = gain
				bestFeat = f
				bestThresh = (X[order[i]][f] + X[order[i+1]][f]) / 2
			}
		}
	}

	if bestFeat < 0 {
		return 0, 0, 0, false
	}
	return bestFeat, bestThresh, bestGain, true
}

// Predict implements Regressor.
func (t *RegressionTree) Predict(x []float64) float64 {
	node := t.Root
	for node != nil && !node.Leaf {
		if x[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	if node == nil {
		return 0
	}
	return node.Value
}

// FeatureImportances implements Regressor.
func (t *RegressionTree) FeatureImportances() []float64 {
	return t.Importances
}

func mean(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	s := 0.0
	for _, i := range idx {
		s += y[i]
	}
	return s / float64(len(idx))
}

func sums(y []float64, idx []int) (sum, sq float64) {
	for _, i := range idx {
		sum += y[i]
		sq += y[i] * y[i]
	}
	return sum, sq
}

func sse(y []float64, idx []int) float64 {
	sum, sq := sums(y, idx)
	n := float64(len(idx))
	if n == 0 {
		return 0
	}
	return sq - sum*sum/n
}

func constant(y []float64, idx []int) bool {
	for _, i := range idx[1:] {
		if y[i] != y[idx[0]] {
			return false
		}
	}
	return true
}

func normalize(v []float64) {
	total := 0.0
	for _, x := range v {
		total += x
	}
	if total == 0 {
		return
	}
	for i := range v {
		v[i] /= total
	}
}
