// Package app runs batches of backtests over one price table.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/newthinker/quantsim/internal/backtest"
	"github.com/newthinker/quantsim/internal/core"
	"github.com/newthinker/quantsim/internal/metrics"
	"github.com/newthinker/quantsim/internal/stats"
	"github.com/newthinker/quantsim/internal/strategy"
	"go.uber.org/zap"
)

// Spec names a registered strategy and the parameters to build it with
type Spec struct {
	Name   string
	Params strategy.Params
}

// Outcome is the result of one backtest in a batch. Exactly one of Result
// and Err is set.
type Outcome struct {
	ID       string
	Strategy string
	Result   *backtest.Result
	Err      error
	Duration time.Duration
}

// Status reports success or failed
func (o Outcome) Status() string {
	if o.Err != nil {
		return metrics.StatusFailed
	}
	return metrics.StatusSuccess
}

// App is the batch orchestrator
type App struct {
	cfg         backtest.Config
	registry    *strategy.Registry
	logger      *zap.Logger
	metrics     *metrics.Registry
	maxParallel int
}

// Option configures an App
type Option func(*App)

// WithMetrics records every run in reg
func WithMetrics(reg *metrics.Registry) Option {
	return func(a *App) { a.metrics = reg }
}

// WithMaxParallel bounds the number of concurrent runs
func WithMaxParallel(n int) Option {
	return func(a *App) {
		if n > 0 {
			a.maxParallel = n
		}
	}
}

// New creates a new App instance
func New(cfg backtest.Config, registry *strategy.Registry, logger *zap.Logger, opts ...Option) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		cfg:         cfg,
		registry:    registry,
		logger:      logger,
		maxParallel: 1,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RunAll backtests every spec against data. Configuration and data errors
// abort the batch; a strategy that cannot be built or fails during the
// simulation only fails its own outcome. Outcomes are returned in spec
// order.
func (a *App) RunAll(ctx context.Context, data core.Series, specs []Spec) ([]Outcome, error) {
	if len(specs) == 0 {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("no strategies to run"))
	}

	bt, err := backtest.New(data, a.cfg, backtest.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}

	a.logger.Info("backtest batch starting",
		zap.Int("strategies", len(specs)),
		zap.Int("bars", len(data)),
		zap.String("data_frequency", string(bt.DataFrequency())),
		zap.String("rebalancing", string(bt.Rebalancing())),
	)

	outcomes := make([]Outcome, len(specs))
	sem := make(chan struct{}, a.maxParallel)
	var wg sync.WaitGroup

	for i, spec := range specs {
		outcomes[i] = Outcome{ID: uuid.NewString(), Strategy: spec.Name}
		if err := ctx.Err(); err != nil {
			outcomes[i].Err = err
			continue
		}

		select {
		case <-ctx.Done():
			outcomes[i].Err = ctx.Err()
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(o *Outcome, spec Spec) {
			defer wg.Done()
			defer func() { <-sem }()
			a.runOne(bt, o, spec)
		}(&outcomes[i], spec)
	}
	wg.Wait()

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	a.logger.Info("backtest batch finished",
		zap.Int("succeeded", len(outcomes)-failed),
		zap.Int("failed", failed),
	)
	return outcomes, nil
}

func (a *App) runOne(bt *backtest.Backtester, o *Outcome, spec Spec) {
	if a.metrics != nil {
		a.metrics.RunStarted()
		defer a.metrics.RunFinished()
	}
	logger := a.logger.With(zap.String("run_id", o.ID), zap.String("strategy", spec.Name))

	start := time.Now()
	o.Result, o.Err = a.execute(bt, spec)
	o.Duration = time.Since(start)

	bars := len(bt.Data())
	trades := 0
	if o.Err != nil {
		o.Result = nil
		logger.Warn("backtest failed", zap.Error(o.Err), zap.Duration("duration", o.Duration))
	} else {
		trades = stats.CountTrades(o.Result.Positions().Values())
		logger.Info("backtest finished",
			zap.Duration("duration", o.Duration),
			zap.Int("trades", trades),
		)
	}

	if a.metrics != nil {
		a.metrics.RecordBacktest(spec.Name, o.Status(), o.Duration.Seconds(), bars, trades)
	}
}

func (a *App) execute(bt *backtest.Backtester, spec Spec) (res *backtest.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = core.WrapError(core.ErrStrategyFailed, fmt.Errorf("%s panicked: %v", spec.Name, r))
		}
	}()

	strat, err := a.registry.Build(spec.Name, spec.Params)
	if err != nil {
		return nil, err
	}
	return bt.Run(strat)
}

// Results returns the results of the successful outcomes in order, with
// their strategy names
func Results(outcomes []Outcome) ([]*backtest.Result, []string) {
	var results []*backtest.Result
	var names []string
	for _, o := range outcomes {
		if o.Err == nil {
			results = append(results, o.Result)
			names = append(names, o.Strategy)
		}
	}
	return results, names
}
