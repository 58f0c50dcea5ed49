package backtest

import (
	"fmt"
	"math"

	"github.com/newthinker/quantsim/internal/core"
	"github.com/newthinker/quantsim/internal/stats"
)

// Result holds a simulated position path and the NAV it produced.
// Everything is computed in NewResult; a Result is read-only afterwards.
type Result struct {
	data           core.Series
	positions      core.PositionSeries
	initialCapital float64
	commission     float64
	slippage       float64
	periods        int

	returns    []float64
	nav        []float64
	navReturns []float64
}

// NewResult validates the inputs and computes the NAV path.
func NewResult(positions core.PositionSeries, data core.Series, initialCapital, commission, slippage float64) (*Result, error) {
	if positions == nil {
		return nil, core.WrapError(core.ErrMissingField,
			fmt.Errorf("positions must carry a position field"))
	}
	if data == nil {
		return nil, core.WrapError(core.ErrMissingField,
			fmt.Errorf("data must carry a close field"))
	}
	if len(data) == 0 {
		return nil, core.ErrNoData
	}
	if len(positions) != len(data) {
		return nil, core.WrapError(core.ErrLengthMismatch,
			fmt.Errorf("%d positions for %d bars", len(positions), len(data)))
	}
	for i, p := range positions {
		if !(p.Position >= -1 && p.Position <= 1) {
			return nil, core.WrapError(core.ErrPositionOutOfRange,
				fmt.Errorf("position %v at index %d", p.Position, i))
		}
		if !p.Time.IsZero() && !p.Time.Equal(data[i].Time) {
			return nil, core.WrapError(core.ErrValidation,
				fmt.Errorf("position index %d (%s) does not match data index (%s)", i, p.Time, data[i].Time))
		}
		if math.IsNaN(data[i].Close) {
			return nil, core.WrapError(core.ErrMissingField,
				fmt.Errorf("data must carry a close field, missing at index %d", i))
		}
	}

	r := &Result{
		data:           data,
		positions:      positions,
		initialCapital: initialCapital,
		commission:     commission,
		slippage:       slippage,
		periods:        stats.TradingPeriods,
		returns:        stats.SimpleReturns(data.Closes()),
	}
	r.nav = r.calculateNAV()
	r.navReturns = stats.SimpleReturns(r.nav)
	return r, nil
}

// calculateNAV folds over the bars. The return earned over bar t uses the
// position decided at bar t-1, and the turnover cost of moving from
// position t-2 to t-1 is charged at the same bar.
func (r *Result) calculateNAV() []float64 {
	nav := make([]float64, len(r.data))
	if len(nav) == 0 {
		return nav
	}
	nav[0] = r.initialCapital

	costRate := r.commission + r.slippage
	prev := 0.0
	for t := 1; t < len(nav); t++ {
		held := r.positions[t-1].Position

		var cost float64
		if held != prev {
			cost = math.Abs(held-prev) * costRate
		}
		nav[t] = nav[t-1] * (1 + r.returns[t]*held - cost)
		prev = held
	}
	return nav
}

// Data returns the price series the result was computed from
func (r *Result) Data() core.Series {
	return r.data
}

// Positions returns the position held at each bar
func (r *Result) Positions() core.PositionSeries {
	return r.positions
}

// InitialCapital returns the starting NAV
func (r *Result) InitialCapital() float64 {
	return r.initialCapital
}

// NAV returns a copy of the account value path
func (r *Result) NAV() []float64 {
	return append([]float64(nil), r.nav...)
}

// Returns returns a copy of the per-bar price returns (first value 0)
func (r *Result) Returns() []float64 {
	return append([]float64(nil), r.returns...)
}

// NAVReturns returns a copy of the per-bar NAV returns (first value 0)
func (r *Result) NAVReturns() []float64 {
	return append([]float64(nil), r.navReturns...)
}

// Drawdown returns the NAV drawdown path
func (r *Result) Drawdown() []float64 {
	return stats.Drawdown(r.nav)
}

// EssentialMetrics computes the headline statistics of the run
func (r *Result) EssentialMetrics() Metrics {
	n := r.periods
	positions := r.positions.Values()

	return Metrics{
		MetricTotalReturn:      (r.nav[len(r.nav)-1]/r.initialCapital - 1) * 100,
		MetricAnnualizedReturn: stats.AnnualizedReturn(r.navReturns, n) * 100,
		MetricVolatility:       stats.AnnualizedStd(r.navReturns, n) * 100,
		MetricSharpe:           stats.Sharpe(r.navReturns, 0, n),
		MetricMaxDrawdown:      stats.MaxDrawdown(r.nav, 0) * 100,
		MetricSortino:          stats.Sortino(r.navReturns, 0, n),
		MetricTrades:           float64(stats.CountTrades(positions)),
		MetricWinRate:          stats.WinRate(positions, r.returns) * 100,
	}
}

// AllMetrics computes the essential metrics plus tail and ratio statistics
func (r *Result) AllMetrics() Metrics {
	n := r.periods
	m := r.EssentialMetrics()

	m[MetricCAGR] = stats.CAGR(r.navReturns, n) * 100
	m[MetricSkewness] = stats.Skewness(r.navReturns)
	m[MetricKurtosis] = stats.Kurtosis(r.navReturns)
	m[MetricAdjustedSharpe] = stats.AdjustedSharpe(r.navReturns, 0, n)
	m[MetricCalmar] = stats.Calmar(r.navReturns, r.nav, n, stats.DefaultCalmarWindow)
	m[MetricPain] = stats.Pain(r.navReturns, r.nav, n)
	m[MetricVaR] = stats.VaRRatio(r.navReturns, n, stats.DefaultConfidence)
	m[MetricCVaR] = stats.CVaRRatio(r.navReturns, n, stats.DefaultConfidence)
	m[MetricGainToPain] = stats.GainToPain(r.navReturns)
	return m
}
