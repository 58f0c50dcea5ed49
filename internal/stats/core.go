// Package stats holds pure statistics over return and NAV series.
//
// Every function is deterministic and side-effect free. Degenerate inputs
// (empty windows, zero volatility, zero drawdown) produce NaN or ±Inf rather
// than an error or a substituted default; callers decide how to present them.
package stats

import "math"

// TradingPeriods is the default annualization factor for daily data
const TradingPeriods = 252

// Mean returns the arithmetic mean, NaN for an empty slice
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

// Std returns the sample standard deviation (n-1 denominator)
func Std(x []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	mean := Mean(x)
	var ss float64
	for _, v := range x {
		ss += (v - mean) * (v - mean)
	}
	return math.Sqrt(ss / float64(len(x)-1))
}

// SimpleReturns computes period-over-period returns of a price or NAV
// path. The first element is 0.
func SimpleReturns(prices []float64) []float64 {
	out := make([]float64, len(prices))
	for i := 1; i < len(prices); i++ {
		out[i] = prices[i]/prices[i-1] - 1
	}
	return out
}

// AnnualizedReturn scales the mean per-period return by n
func AnnualizedReturn(returns []float64, n int) float64 {
	return Mean(returns) * float64(n)
}

// CAGR compounds the returns and annualizes the growth assuming n periods
// per year
func CAGR(returns []float64, n int) float64 {
	if len(returns) == 0 {
		return math.NaN()
	}
	growth := 1.0
	for _, r := range returns {
		growth *= 1 + r
	}
	years := float64(len(returns)) / float64(n)
	return math.Pow(growth, 1/years) - 1
}

// AnnualizedStd scales the sample standard deviation by sqrt(n)
func AnnualizedStd(returns []float64, n int) float64 {
	return Std(returns) * math.Sqrt(float64(n))
}

// DownsideDeviation is the annualized root mean square of the shortfall
// below target, averaged over all observations
func DownsideDeviation(returns []float64, target float64, n int) float64 {
	return semiDeviation(returns, target, n, func(r float64) bool { return r < target })
}

// UpsideDeviation mirrors DownsideDeviation for returns above target
func UpsideDeviation(returns []float64, target float64, n int) float64 {
	return semiDeviation(returns, target, n, func(r float64) bool { return r > target })
}

func semiDeviation(returns []float64, target float64, n int, keep func(float64) bool) float64 {
	if len(returns) == 0 {
		return math.NaN()
	}
	var ss float64
	for _, r := range returns {
		if keep(r) {
			ss += (r - target) * (r - target)
		}
	}
	return math.Sqrt(ss/float64(len(returns))) * math.Sqrt(float64(n))
}

// Covariance returns the annualized sample covariance of two aligned series
func Covariance(a, b []float64, n int) float64 {
	if len(a) != len(b) || len(a) < 2 {
		return math.NaN()
	}
	ma, mb := Mean(a), Mean(b)
	var s float64
	for i := range a {
		s += (a[i] - ma) * (b[i] - mb)
	}
	return s / float64(len(a)-1) * float64(n)
}

// Correlation returns the Pearson correlation of two aligned series
func Correlation(a, b []float64) float64 {
	return Covariance(a, b, 1) / (Std(a) * Std(b))
}

// CountTrades counts the bars whose position differs from the previous
// bar. Entries, exits and flips each count once.
func CountTrades(positions []float64) int {
	var n int
	for t := 1; t < len(positions); t++ {
		if positions[t] != positions[t-1] {
			n++
		}
	}
	return n
}

// WinRate is the fraction of trade bars where the return at that bar,
// signed by the position taken at that bar, is strictly positive.
// It is 0 when there are no trades.
func WinRate(positions, returns []float64) float64 {
	var trades, wins int
	for t := 1; t < len(positions) && t < len(returns); t++ {
		if positions[t] == positions[t-1] {
			continue
		}
		trades++
		if returns[t]*positions[t] > 0 {
			wins++
		}
	}
	if trades == 0 {
		return 0
	}
	return float64(wins) / float64(trades)
}
