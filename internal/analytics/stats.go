package analytics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const minSamples = 3

// pearson returns the Pearson correlation coefficient and its two-tailed p-value.
// A series without variance carries no signal and yields (0, 1).
func pearson(x, y []float64) (r, p float64, err error) {
	if len(x) != len(y) {
		return 0, 1, fmt.Errorf("series length mismatch: %d vs %d", len(x), len(y))
	}
	if len(x) < minSamples {
		return 0, 1, fmt.Errorf("need at least %d samples, got %d", minSamples, len(x))
	}
	for i := range x {
		if !isFinite(x[i]) || !isFinite(y[i]) {
			return 0, 1, fmt.Errorf("non-finite value at index %d", i)
		}
	}

	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return 0, 1, nil
	}

	r = stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0, 1, nil
	}
	r = math.Max(-1, math.Min(1, r))

	return r, pValue(r, len(x)), nil
}

// pValue is the two-tailed significance of r under H0: rho = 0 (Student t, n-2 dof)
func pValue(r float64, n int) float64 {
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.Survival(math.Abs(t))
	return math.Max(0, math.Min(1, p))
}

// percentChange is (last-first)/first*100, defined as 0 when first is exactly 0
func percentChange(first, last float64) float64 {
	if first == 0 {
		return 0
	}
	return (last - first) / first * 100
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
