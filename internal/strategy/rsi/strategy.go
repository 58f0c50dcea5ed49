package rsi

import (
	"fmt"
	"math"

	"github.com/newthinker/quantsim/internal/core"
	"github.com/newthinker/quantsim/internal/indicator"
	"github.com/newthinker/quantsim/internal/strategy"
)

const Name = "rsi"

const (
	DefaultPeriod     = 14
	DefaultOverbought = 70.0
	DefaultOversold   = 30.0
)

// RSI buys in the oversold zone and sells in the overbought zone
type RSI struct {
	period     int
	overbought float64
	oversold   float64
}

func New(period int, overbought, oversold float64) (*RSI, error) {
	if period < 2 {
		return nil, fmt.Errorf("rsi_period must be at least 2, got %d", period)
	}
	if !(oversold < overbought) || oversold < 0 || overbought > 100 {
		return nil, fmt.Errorf("need 0 <= oversold < overbought <= 100, got %v/%v", oversold, overbought)
	}
	return &RSI{period: period, overbought: overbought, oversold: oversold}, nil
}

func Factory(params strategy.Params) (strategy.Strategy, error) {
	period, err := params.Int("rsi_period", DefaultPeriod)
	if err != nil {
		return nil, err
	}
	overbought, err := params.Float("overbought", DefaultOverbought)
	if err != nil {
		return nil, err
	}
	oversold, err := params.Float("oversold", DefaultOversold)
	if err != nil {
		return nil, err
	}
	return New(period, overbought, oversold)
}

func (r *RSI) Name() string {
	return Name
}

func (r *RSI) Position(history core.Series, current float64) (float64, error) {
	if len(history) < r.period {
		return 0, nil
	}

	values := indicator.RSI(history.Closes(), r.period)
	last := values[len(values)-1]
	switch {
	case math.IsNaN(last):
		return current, nil
	case last < r.oversold:
		return 1, nil
	case last > r.overbought:
		return -1, nil
	}
	return current, nil
}
