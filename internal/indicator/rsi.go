package indicator

import (
	cinar "github.com/cinar/indicator"
)

// RSI computes the relative strength index with Wilder smoothing over the
// given period. The output has the same length as closes; values before
// the window is warm are not meaningful.
func RSI(closes []float64, period int) []float64 {
	if period <= 0 || len(closes) == 0 {
		return []float64{}
	}
	_, rsi := cinar.RsiPeriod(period, closes)
	return rsi
}
