package regress

import (
	"math"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat"
)

// Metrics holds held-out fit quality for one candidate.
type Metrics struct {
	R2   float64 `json:"r2"`
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
}

// Evaluate computes fit metrics of predictions against observed labels.
func Evaluate(predicted, observed []float64) (Metrics, error) {
	if len(predicted) == 0 || len(predicted) != len(observed) {
		return Metrics{}, eris.Errorf("regress: metric length mismatch (%d vs %d)", len(predicted), len(observed))
	}

	n := float64(len(predicted))
	var sqErr, absErr float64
	for i := range predicted {
		d := predicted[i] - observed[i]
		sqErr += d * d
		absErr += math.Abs(d)
	}

	return Metrics{
		R2:   stat.RSquaredFrom(predicted, observed, nil),
		RMSE: math.Sqrt(sqErr / n),
		MAE:  absErr / n,
	}, nil
}
