package ma_crossover

import (
	"fmt"

	"github.com/newthinker/quantsim/internal/core"
	"github.com/newthinker/quantsim/internal/indicator"
	"github.com/newthinker/quantsim/internal/strategy"
)

// Name is the registry key of the strategy
const Name = "ma_crossover"

const (
	DefaultShortWindow = 20
	DefaultLongWindow  = 50
)

// MACrossover goes long when the short moving average crosses above the
// long one and short when it crosses below. Between crosses the current
// position is kept.
type MACrossover struct {
	shortWindow int
	longWindow  int
}

// New creates a new MA Crossover strategy
func New(shortWindow, longWindow int) (*MACrossover, error) {
	if shortWindow < 1 {
		return nil, fmt.Errorf("short_window must be at least 1, got %d", shortWindow)
	}
	if longWindow <= shortWindow {
		return nil, fmt.Errorf("long_window (%d) must exceed short_window (%d)", longWindow, shortWindow)
	}
	return &MACrossover{shortWindow: shortWindow, longWindow: longWindow}, nil
}

// Factory builds the strategy from short_window and long_window params
func Factory(params strategy.Params) (strategy.Strategy, error) {
	short, err := params.Int("short_window", DefaultShortWindow)
	if err != nil {
		return nil, err
	}
	long, err := params.Int("long_window", DefaultLongWindow)
	if err != nil {
		return nil, err
	}
	return New(short, long)
}

func (m *MACrossover) Name() string {
	return Name
}

func (m *MACrossover) Description() string {
	return fmt.Sprintf("MA Crossover (%d/%d)", m.shortWindow, m.longWindow)
}

func (m *MACrossover) Position(history core.Series, current float64) (float64, error) {
	if len(history) < m.longWindow {
		return 0, nil
	}

	prices := history.Closes()
	prevShort, currShort, ok := indicator.LastTwo(indicator.SMA(prices, m.shortWindow))
	if !ok {
		return current, nil
	}
	prevLong, currLong, ok := indicator.LastTwo(indicator.SMA(prices, m.longWindow))
	if !ok {
		return current, nil
	}

	switch {
	case currShort > currLong && prevShort <= prevLong:
		return 1, nil
	case currShort < currLong && prevShort >= prevLong:
		return -1, nil
	}
	return current, nil
}
