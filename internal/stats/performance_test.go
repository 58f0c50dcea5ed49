package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSharpe(t *testing.T) {
	got := Sharpe(sampleReturns, 0, TradingPeriods)
	assert.InDelta(t, 4.593220484431882, got, 1e-9)
	assert.False(t, math.IsNaN(got))

	// A risk-free rate lowers the ratio
	assert.Less(t, Sharpe(sampleReturns, 0.05, TradingPeriods), got)
}

func TestSharpe_ZeroVolatilityIsNotFinite(t *testing.T) {
	flat := []float64{0, 0, 0, 0}
	assert.True(t, math.IsNaN(Sharpe(flat, 0, TradingPeriods)))

	constant := []float64{0.5, 0.5, 0.5}
	assert.True(t, math.IsInf(Sharpe(constant, 0, TradingPeriods), 1))
}

func TestAdjustedSharpe(t *testing.T) {
	sr := Sharpe(sampleReturns, 0, TradingPeriods)
	skew := Skewness(sampleReturns)
	kurt := Kurtosis(sampleReturns)
	want := sr * (1 + skew*sr/6 - (kurt-3)*sr*sr/24)

	assert.InDelta(t, want, AdjustedSharpe(sampleReturns, 0, TradingPeriods), 1e-9)
}

func TestSortino(t *testing.T) {
	assert.InDelta(t, 9.524704719832526, Sortino(sampleReturns, 0, TradingPeriods), 1e-9)
	assert.True(t, math.IsInf(Sortino([]float64{0.01, 0.02}, 0, TradingPeriods), 1))
}

func TestCalmarPain(t *testing.T) {
	nav := []float64{100, 95, 90, 95, 100, 85, 90}
	returns := SimpleReturns(nav)
	ann := AnnualizedReturn(returns, TradingPeriods)

	assert.InDelta(t, -ann/-0.15, Calmar(returns, nav, TradingPeriods, DefaultCalmarWindow), 1e-9)
	assert.InDelta(t, ann/(-Mean(Drawdown(nav))), Pain(returns, nav, TradingPeriods), 1e-9)

	rising := []float64{100, 101, 102}
	assert.True(t, math.IsInf(Calmar(SimpleReturns(rising), rising, TradingPeriods, DefaultCalmarWindow), 0))
}

func TestPercentile(t *testing.T) {
	x := []float64{3, 1, 2, 5, 4}
	assert.Equal(t, 1.0, Percentile(x, 0))
	assert.Equal(t, 3.0, Percentile(x, 50))
	assert.Equal(t, 5.0, Percentile(x, 100))
	assert.InDelta(t, 1.2, Percentile(x, 5), 1e-12)
	assert.True(t, math.IsNaN(Percentile(nil, 5)))
}

func TestVaRCVaRRatio(t *testing.T) {
	assert.InDelta(t, 1.0/3.0, VaRRatio(sampleReturns, TradingPeriods, DefaultConfidence), 1e-9)

	// Only -0.02 lies at or below the 5th percentile (-0.018)
	assert.InDelta(t, -1.512/(252*-0.02), CVaRRatio(sampleReturns, TradingPeriods, DefaultConfidence), 1e-9)
}

func TestHitRate(t *testing.T) {
	assert.InDelta(t, 0.6, HitRate(sampleReturns), 1e-12)
	assert.True(t, math.IsNaN(HitRate(nil)))
}

func TestGainToPain(t *testing.T) {
	assert.InDelta(t, 2.0, GainToPain(sampleReturns), 1e-9)
	assert.True(t, math.IsInf(GainToPain([]float64{0.01, 0, 0.02}), 1))
}

func TestAlphaBeta(t *testing.T) {
	bench := []float64{0.01, -0.01, 0.02, 0.0, -0.02}
	returns := make([]float64, len(bench))
	for i, b := range bench {
		returns[i] = 0.001 + 1.5*b
	}

	alpha, beta := AlphaBeta(returns, bench, 0, TradingPeriods)
	assert.InDelta(t, 1.5, beta, 1e-9)
	assert.InDelta(t, 0.001*252, alpha, 1e-9)

	alpha, beta = AlphaBeta(returns, bench[:2], 0, TradingPeriods)
	assert.True(t, math.IsNaN(alpha))
	assert.True(t, math.IsNaN(beta))
}

func TestMetricsAreDeterministic(t *testing.T) {
	nav := []float64{100, 95, 90, 95, 100, 85, 90}
	returns := SimpleReturns(nav)

	first := []float64{
		Sharpe(returns, 0, TradingPeriods),
		Calmar(returns, nav, TradingPeriods, DefaultCalmarWindow),
		CVaRRatio(returns, TradingPeriods, DefaultConfidence),
		Kurtosis(returns),
	}
	second := []float64{
		Sharpe(returns, 0, TradingPeriods),
		Calmar(returns, nav, TradingPeriods, DefaultCalmarWindow),
		CVaRRatio(returns, TradingPeriods, DefaultConfidence),
		Kurtosis(returns),
	}
	for i := range first {
		assert.Equal(t, math.Float64bits(first[i]), math.Float64bits(second[i]))
	}
	assert.Equal(t, []float64{100, 95, 90, 95, 100, 85, 90}, nav, "inputs must not be mutated")
}
