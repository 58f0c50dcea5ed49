package autoregressive

import (
	"fmt"
	"math"

	"github.com/newthinker/quantsim/internal/core"
	"github.com/newthinker/quantsim/internal/indicator"
	"github.com/newthinker/quantsim/internal/strategy"
)

const Name = "autoregressive"

const (
	DefaultWindow    = 252
	DefaultThreshold = 0.05
	DefaultMaxOrder  = 3

	// used when no order can be estimated
	fallbackOrder = 1
)

// AR forecasts the next log return with an autoregressive model re-estimated
// on the trailing window at each decision. Fit selects the lag order by BIC.
type AR struct {
	window    int
	threshold float64
	maxOrder  int

	fitted bool
	order  int
}

func New(window int, threshold float64, maxOrder int) (*AR, error) {
	if maxOrder < 0 {
		return nil, fmt.Errorf("max_order cannot be negative, got %d", maxOrder)
	}
	if window <= 2*(maxOrder+1) {
		return nil, fmt.Errorf("window_size %d too small for max_order %d", window, maxOrder)
	}
	if threshold < 0 {
		return nil, fmt.Errorf("threshold cannot be negative, got %v", threshold)
	}
	return &AR{window: window, threshold: threshold, maxOrder: maxOrder}, nil
}

func Factory(params strategy.Params) (strategy.Strategy, error) {
	window, err := params.Int("window_size", DefaultWindow)
	if err != nil {
		return nil, err
	}
	threshold, err := params.Float("threshold", DefaultThreshold)
	if err != nil {
		return nil, err
	}
	maxOrder, err := params.Int("max_order", DefaultMaxOrder)
	if err != nil {
		return nil, err
	}
	return New(window, threshold, maxOrder)
}

func (a *AR) Name() string {
	return Name
}

// Order returns the lag order selected by Fit
func (a *AR) Order() int {
	return a.order
}

// Fitted reports whether Fit estimated a model
func (a *AR) Fitted() bool {
	return a.fitted
}

// Fit selects the order on the last window log returns. With fewer returns
// than the window the strategy stays unfitted and keeps its position.
func (a *AR) Fit(history core.Series) error {
	returns := indicator.LogReturns(history.Closes())
	if len(returns) < a.window {
		return nil
	}
	training := returns[len(returns)-a.window:]

	a.order = a.selectOrder(training)
	if _, err := estimate(training, a.order, a.order); err != nil {
		a.fitted = false
		return nil
	}
	a.fitted = true
	return nil
}

func (a *AR) selectOrder(returns []float64) int {
	best := math.Inf(1)
	order := -1
	for p := 0; p <= a.maxOrder; p++ {
		bic, err := BIC(returns, p, a.maxOrder)
		if err != nil {
			continue
		}
		if bic < best {
			best = bic
			order = p
		}
	}
	if order < 0 {
		return min(fallbackOrder, a.maxOrder)
	}
	return order
}

func (a *AR) Position(history core.Series, current float64) (float64, error) {
	if !a.fitted || len(history) < a.window {
		return current, nil
	}

	returns := indicator.LogReturns(history.Closes())
	if len(returns) > a.window {
		returns = returns[len(returns)-a.window:]
	}

	coef, err := estimate(returns, a.order, a.order)
	if err != nil {
		return current, nil
	}
	forecast := Forecast(coef, returns)

	switch {
	case math.IsNaN(forecast):
		return current, nil
	case forecast > a.threshold:
		return 1, nil
	case forecast < -a.threshold:
		return -1, nil
	}
	return 0, nil
}

// estimate regresses returns[t] on an intercept and p lags, using
// observations from index skip onwards so that models of different order
// share one sample.
func estimate(returns []float64, p, skip int) ([]float64, error) {
	x, y := design(returns, p, skip)
	return indicator.LeastSquares(x, y)
}

func design(returns []float64, p, skip int) ([][]float64, []float64) {
	if skip < p {
		skip = p
	}
	var x [][]float64
	var y []float64
	for t := skip; t < len(returns); t++ {
		row := make([]float64, p+1)
		row[0] = 1
		for i := 1; i <= p; i++ {
			row[i] = returns[t-i]
		}
		x = append(x, row)
		y = append(y, returns[t])
	}
	return x, y
}

// BIC returns the Bayesian information criterion of an AR(p) fit with
// Gaussian errors, conditioned on the first skip observations.
func BIC(returns []float64, p, skip int) (float64, error) {
	x, y := design(returns, p, skip)
	coef, err := indicator.LeastSquares(x, y)
	if err != nil {
		return 0, err
	}

	var rss float64
	for i, row := range x {
		var fit float64
		for j, c := range coef {
			fit += c * row[j]
		}
		rss += (y[i] - fit) * (y[i] - fit)
	}
	n := float64(len(y))
	k := float64(p + 1)
	return n*math.Log(rss/n) + k*math.Log(n), nil
}

// Forecast returns the one-step-ahead prediction of an AR model whose
// coefficients are [intercept, lag1, lag2, ...]
func Forecast(coef, returns []float64) float64 {
	if len(coef) == 0 || len(returns) < len(coef)-1 {
		return math.NaN()
	}
	f := coef[0]
	last := len(returns) - 1
	for i := 1; i < len(coef); i++ {
		f += coef[i] * returns[last-i+1]
	}
	return f
}
