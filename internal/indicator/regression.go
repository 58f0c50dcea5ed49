package indicator

import (
	"errors"
	"math"
)

// ErrSingular is returned when a least squares system has no unique solution
var ErrSingular = errors.New("singular design matrix")

// Slope returns the ordinary least squares slope of values against their
// index 0..n-1. It is NaN for fewer than two values.
func Slope(values []float64) float64 {
	n := float64(len(values))
	if len(values) < 2 {
		return math.NaN()
	}

	meanX := (n - 1) / 2
	var meanY float64
	for _, v := range values {
		meanY += v
	}
	meanY /= n

	var sxy, sxx float64
	for i, v := range values {
		dx := float64(i) - meanX
		sxy += dx * (v - meanY)
		sxx += dx * dx
	}
	return sxy / sxx
}

// RollingSlope returns the slope of every trailing window. Element k is the
// slope of values[k : k+window].
func RollingSlope(values []float64, window int) []float64 {
	if window < 2 || len(values) < window {
		return []float64{}
	}
	out := make([]float64, 0, len(values)-window+1)
	for k := 0; k+window <= len(values); k++ {
		out = append(out, Slope(values[k:k+window]))
	}
	return out
}

// LogReturns returns ln(p[i]/p[i-1]) for i >= 1
func LogReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}
	out := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		out[i-1] = math.Log(prices[i] / prices[i-1])
	}
	return out
}

// LeastSquares solves min ||X·b - y|| through the normal equations. Each
// row of X is one observation.
func LeastSquares(x [][]float64, y []float64) ([]float64, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, ErrSingular
	}
	k := len(x[0])
	if k == 0 || len(x) < k {
		return nil, ErrSingular
	}

	// augmented [X'X | X'y]
	a := make([][]float64, k)
	for i := range a {
		a[i] = make([]float64, k+1)
	}
	for r, row := range x {
		for i := 0; i < k; i++ {
			for j := 0; j < k; j++ {
				a[i][j] += row[i] * row[j]
			}
			a[i][k] += row[i] * y[r]
		}
	}

	for col := 0; col < k; col++ {
		pivot := col
		for r := col + 1; r < k; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, ErrSingular
		}
		a[col], a[pivot] = a[pivot], a[col]

		for r := col + 1; r < k; r++ {
			f := a[r][col] / a[col][col]
			for c := col; c <= k; c++ {
				a[r][c] -= f * a[col][c]
			}
		}
	}

	b := make([]float64, k)
	for i := k - 1; i >= 0; i-- {
		s := a[i][k]
		for j := i + 1; j < k; j++ {
			s -= a[i][j] * b[j]
		}
		b[i] = s / a[i][i]
	}
	return b, nil
}
