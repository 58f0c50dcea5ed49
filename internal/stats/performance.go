package stats

import (
	"math"
	"sort"
)

const (
	// DefaultCalmarWindow is three years of daily bars
	DefaultCalmarWindow = 756
	// DefaultConfidence is the tail confidence used by VaR and CVaR ratios
	DefaultConfidence = 0.95
)

// Sharpe divides the annualized excess return by annualized volatility.
// riskFree is an annual rate.
func Sharpe(returns []float64, riskFree float64, n int) float64 {
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - riskFree/float64(n)
	}
	return AnnualizedReturn(excess, n) / AnnualizedStd(returns, n)
}

// AdjustedSharpe corrects the Sharpe ratio for skewness and kurtosis
func AdjustedSharpe(returns []float64, riskFree float64, n int) float64 {
	sr := Sharpe(returns, riskFree, n)
	skew := Skewness(returns)
	kurt := Kurtosis(returns)
	return sr * (1 + skew*sr/6 - (kurt-3)*sr*sr/24)
}

// Sortino replaces volatility with downside deviation below target
func Sortino(returns []float64, target float64, n int) float64 {
	return (AnnualizedReturn(returns, n) - target) / DownsideDeviation(returns, target, n)
}

// Calmar divides the annualized return by the maximum drawdown over the
// trailing window
func Calmar(returns, nav []float64, n, window int) float64 {
	return -AnnualizedReturn(returns, n) / MaxDrawdown(nav, window)
}

// Pain divides the annualized return by the mean absolute drawdown
func Pain(returns, nav []float64, n int) float64 {
	painIndex := -Mean(Drawdown(nav))
	return AnnualizedReturn(returns, n) / painIndex
}

// Percentile returns the q-th percentile (0..100) using linear
// interpolation between closest ranks
func Percentile(x []float64, q float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)

	pos := q / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo < 0 {
		return sorted[0]
	}
	if hi >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// VaRRatio divides the annualized return by the historical value at risk
// at the given confidence
func VaRRatio(returns []float64, n int, confidence float64) float64 {
	v := Percentile(returns, (1-confidence)*100)
	return -AnnualizedReturn(returns, n) / (float64(n) * v)
}

// CVaRRatio divides the annualized return by the mean of returns at or
// below the value at risk
func CVaRRatio(returns []float64, n int, confidence float64) float64 {
	v := Percentile(returns, (1-confidence)*100)
	var tail []float64
	for _, r := range returns {
		if r <= v {
			tail = append(tail, r)
		}
	}
	return -AnnualizedReturn(returns, n) / (float64(n) * Mean(tail))
}

// HitRate is the fraction of strictly positive returns
func HitRate(returns []float64) float64 {
	if len(returns) == 0 {
		return math.NaN()
	}
	var hits int
	for _, r := range returns {
		if r > 0 {
			hits++
		}
	}
	return float64(hits) / float64(len(returns))
}

// GainToPain divides the sum of gains by the absolute sum of losses.
// It is +Inf when there are no losses.
func GainToPain(returns []float64) float64 {
	var gains, pains float64
	for _, r := range returns {
		switch {
		case r > 0:
			gains += r
		case r < 0:
			pains -= r
		}
	}
	if pains == 0 {
		return math.Inf(1)
	}
	return gains / pains
}

// AlphaBeta regresses excess returns on excess benchmark returns by
// ordinary least squares. Alpha is annualized by n.
func AlphaBeta(returns, benchmark []float64, riskFree float64, n int) (alpha, beta float64) {
	if len(returns) != len(benchmark) || len(returns) < 2 {
		return math.NaN(), math.NaN()
	}
	rf := riskFree / float64(n)
	var sx, sy float64
	for i := range returns {
		sx += benchmark[i] - rf
		sy += returns[i] - rf
	}
	k := float64(len(returns))
	mx, my := sx/k, sy/k

	var sxy, sxx float64
	for i := range returns {
		dx := benchmark[i] - rf - mx
		sxy += dx * (returns[i] - rf - my)
		sxx += dx * dx
	}
	beta = sxy / sxx
	alpha = (my - beta*mx) * float64(n)
	return alpha, beta
}
