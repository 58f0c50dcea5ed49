package backtest

import (
	"fmt"

	"github.com/newthinker/quantsim/internal/core"
	"github.com/newthinker/quantsim/internal/frequency"
)

// Config holds the immutable parameters of a backtest
type Config struct {
	InitialCapital float64
	Commission     float64 // fraction of turnover
	Slippage       float64 // fraction of turnover
	Rebalancing    string  // one of frequency.Rebalancing
}

// DefaultConfig returns the defaults used when a parameter is not given
func DefaultConfig() Config {
	return Config{
		InitialCapital: 10000,
		Commission:     0.001,
		Slippage:       0,
		Rebalancing:    string(frequency.Daily),
	}
}

func (c Config) validateCosts() error {
	if c.InitialCapital <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("initial capital must be positive, got %v", c.InitialCapital))
	}
	if c.Commission < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("commission cannot be negative, got %v", c.Commission))
	}
	if c.Slippage < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("slippage cannot be negative, got %v", c.Slippage))
	}
	return nil
}

// Metric names exposed by Result, in report order
const (
	MetricTotalReturn      = "Total Return (%)"
	MetricAnnualizedReturn = "Annualized Return (%)"
	MetricVolatility       = "Volatility (%)"
	MetricSharpe           = "Sharpe Ratio"
	MetricMaxDrawdown      = "Maximum Drawdown (%)"
	MetricSortino          = "Sortino Ratio"
	MetricTrades           = "Number of Trades"
	MetricWinRate          = "Winning Trades (%)"

	MetricCAGR           = "CAGR (%)"
	MetricSkewness       = "Skewness"
	MetricKurtosis       = "Kurtosis"
	MetricAdjustedSharpe = "Adjusted Sharpe Ratio"
	MetricCalmar         = "Calmar Ratio"
	MetricPain           = "Pain Ratio"
	MetricVaR            = "VaR Ratio"
	MetricCVaR           = "CVaR Ratio"
	MetricGainToPain     = "Gain to Pain Ratio"
)

// EssentialMetricNames lists the essential metrics in report order
var EssentialMetricNames = []string{
	MetricTotalReturn,
	MetricAnnualizedReturn,
	MetricVolatility,
	MetricSharpe,
	MetricMaxDrawdown,
	MetricSortino,
	MetricTrades,
	MetricWinRate,
}

// AllMetricNames lists every metric in report order
var AllMetricNames = append(append([]string{}, EssentialMetricNames...),
	MetricCAGR,
	MetricSkewness,
	MetricKurtosis,
	MetricAdjustedSharpe,
	MetricCalmar,
	MetricPain,
	MetricVaR,
	MetricCVaR,
	MetricGainToPain,
)

// Metrics maps a metric name to its value. Counts are stored as whole
// numbers. Values may be NaN or ±Inf for degenerate series.
type Metrics map[string]float64
