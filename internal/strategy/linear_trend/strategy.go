package linear_trend

import (
	"fmt"
	"math"

	"github.com/newthinker/quantsim/internal/core"
	"github.com/newthinker/quantsim/internal/indicator"
	"github.com/newthinker/quantsim/internal/stats"
	"github.com/newthinker/quantsim/internal/strategy"
)

const Name = "linear_trend"

const (
	DefaultWindow    = 20
	DefaultThreshold = 0.001
)

// candidate percentiles of |slope| tried by Fit
var calibrationPercentiles = []float64{50, 60, 70, 80, 90}

// LinearTrend follows the least squares slope of the last window closes.
// Fit replaces the slope threshold with the candidate that maximised the
// in-sample log return.
type LinearTrend struct {
	window    int
	threshold float64
	fitted    bool
	optimal   float64
}

func New(window int, threshold float64) (*LinearTrend, error) {
	if window < 2 {
		return nil, fmt.Errorf("window_size must be at least 2, got %d", window)
	}
	if threshold < 0 {
		return nil, fmt.Errorf("trend_threshold cannot be negative, got %v", threshold)
	}
	return &LinearTrend{window: window, threshold: threshold}, nil
}

func Factory(params strategy.Params) (strategy.Strategy, error) {
	window, err := params.Int("window_size", DefaultWindow)
	if err != nil {
		return nil, err
	}
	threshold, err := params.Float("trend_threshold", DefaultThreshold)
	if err != nil {
		return nil, err
	}
	return New(window, threshold)
}

func (l *LinearTrend) Name() string {
	return Name
}

// Threshold returns the slope threshold in use
func (l *LinearTrend) Threshold() float64 {
	if l.fitted {
		return l.optimal
	}
	return l.threshold
}

// Fitted reports whether Fit calibrated the threshold
func (l *LinearTrend) Fitted() bool {
	return l.fitted
}

// Fit needs at least two windows of data; with less it leaves the
// configured threshold in place.
func (l *LinearTrend) Fit(history core.Series) error {
	if len(history) < 2*l.window {
		return nil
	}

	prices := history.Closes()
	slopes := indicator.RollingSlope(prices, l.window)
	returns := indicator.LogReturns(prices)

	// slopes[k] ends at bar k+window-1, returns[j] ends at bar j+1
	aligned := returns[l.window-2:]

	abs := make([]float64, len(slopes))
	for i, s := range slopes {
		abs[i] = math.Abs(s)
	}

	best := math.Inf(-1)
	bestThreshold := l.threshold
	for _, q := range calibrationPercentiles {
		threshold := stats.Percentile(abs, q)

		var total float64
		for i, s := range slopes {
			total += signal(s, threshold) * aligned[i]
		}
		if total > best {
			best = total
			bestThreshold = threshold
		}
	}

	l.optimal = bestThreshold
	l.fitted = true
	return nil
}

func (l *LinearTrend) Position(history core.Series, current float64) (float64, error) {
	if len(history) < l.window {
		return current, nil
	}

	prices := history.Closes()
	slope := indicator.Slope(prices[len(prices)-l.window:])
	if math.IsNaN(slope) {
		return current, nil
	}
	return signal(slope, l.Threshold()), nil
}

func signal(slope, threshold float64) float64 {
	switch {
	case slope > threshold:
		return 1
	case slope < -threshold:
		return -1
	}
	return 0
}
