package backtest

import (
	"fmt"
	"time"

	"github.com/newthinker/quantsim/internal/core"
	"github.com/newthinker/quantsim/internal/frequency"
	"github.com/newthinker/quantsim/internal/strategy"
	"go.uber.org/zap"
)

// Backtester simulates one strategy over a price series.
// It never mutates the series, so one series may back concurrent runs.
type Backtester struct {
	data      core.Series
	cfg       Config
	rebalance frequency.Label
	dataFreq  frequency.Label
	logger    *zap.Logger
}

// Option configures a Backtester
type Option func(*Backtester)

// WithLogger sets the logger used for rebalance diagnostics
func WithLogger(l *zap.Logger) Option {
	return func(b *Backtester) {
		if l != nil {
			b.logger = l
		}
	}
}

// New validates the configuration against the data and returns a
// Backtester ready to run. All configuration errors surface here.
func New(data core.Series, cfg Config, opts ...Option) (*Backtester, error) {
	rebalance, err := frequency.Parse(cfg.Rebalancing)
	if err != nil {
		return nil, err
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.validateCosts(); err != nil {
		return nil, err
	}

	dataFreq := frequency.Infer(data.Times())
	if rebalance.Minutes() < dataFreq.Minutes() {
		return nil, core.WrapError(core.ErrFrequencyTooFine,
			fmt.Errorf("rebalancing frequency (%s) cannot be finer than the data frequency (%s)", rebalance, dataFreq))
	}

	b := &Backtester{
		data:      data,
		cfg:       cfg,
		rebalance: rebalance,
		dataFreq:  dataFreq,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Config returns the configuration the backtester was built with
func (b *Backtester) Config() Config {
	return b.cfg
}

// Data returns the price series being simulated. It must not be modified.
func (b *Backtester) Data() core.Series {
	return b.data
}

// Rebalancing returns the validated rebalancing frequency
func (b *Backtester) Rebalancing() frequency.Label {
	return b.rebalance
}

// DataFrequency returns the sampling frequency inferred from the data
func (b *Backtester) DataFrequency() frequency.Label {
	return b.dataFreq
}

// Run fits the strategy once on the full history, then walks the bars in
// time order collecting the position held at each one. Strategy errors
// abort the run and are returned wrapped in core.ErrStrategyFailed.
func (b *Backtester) Run(strat strategy.Strategy) (*Result, error) {
	if err := strategy.Fit(strat, b.data); err != nil {
		return nil, core.WrapError(core.ErrStrategyFailed, fmt.Errorf("%s: fit: %w", strat.Name(), err))
	}

	var positions core.PositionSeries
	var err error
	if b.rebalance.Minutes() != b.dataFreq.Minutes() {
		positions, err = b.runPeriodic(strat)
	} else {
		positions, err = b.runEveryBar(strat)
	}
	if err != nil {
		return nil, err
	}

	return NewResult(positions, b.data, b.cfg.InitialCapital, b.cfg.Commission, b.cfg.Slippage)
}

// runEveryBar asks the strategy for a position on every bar, exposing the
// raw data up to and including that bar.
func (b *Backtester) runEveryBar(strat strategy.Strategy) (core.PositionSeries, error) {
	positions := make(core.PositionSeries, len(b.data))
	current := 0.0

	for i, bar := range b.data {
		next, err := strat.Position(b.data[:i+1], current)
		if err != nil {
			return nil, b.strategyError(strat, bar.Time, err)
		}
		positions[i] = core.PositionPoint{Time: bar.Time, Position: next}
		current = next
	}
	return positions, nil
}

// runPeriodic only consults the strategy on the first bar of each
// rebalancing period and holds that position for the rest of the period.
// The strategy sees finished periods as their resampled aggregates and the
// opening bar of the current period as the latest row.
func (b *Backtester) runPeriodic(strat strategy.Strategy) (core.PositionSeries, error) {
	view := resamplePeriods(b.data, b.rebalance)
	positions := make(core.PositionSeries, len(b.data))
	current := 0.0

	var anchor time.Time
	for i, bar := range b.data {
		start := frequency.PeriodStart(bar.Time, b.rebalance)
		if i == 0 || !start.Equal(anchor) {
			history := append(view[:i:i], bar)
			next, err := strat.Position(history, current)
			if err != nil {
				return nil, b.strategyError(strat, bar.Time, err)
			}
			if next != current {
				b.logger.Debug("rebalance",
					zap.String("strategy", strat.Name()),
					zap.Time("period", start),
					zap.Float64("from", current),
					zap.Float64("to", next),
				)
			}
			anchor = start
			current = next
		}
		positions[i] = core.PositionPoint{Time: bar.Time, Position: current}
	}
	return positions, nil
}

func (b *Backtester) strategyError(strat strategy.Strategy, at time.Time, err error) error {
	return core.WrapError(core.ErrStrategyFailed,
		fmt.Errorf("%s at %s: %w", strat.Name(), at.Format(time.RFC3339), err))
}
