// Package builtin registers the strategies shipped with quantsim
package builtin

import (
	"github.com/newthinker/quantsim/internal/strategy"
	"github.com/newthinker/quantsim/internal/strategy/autoregressive"
	"github.com/newthinker/quantsim/internal/strategy/linear_trend"
	"github.com/newthinker/quantsim/internal/strategy/ma_crossover"
	"github.com/newthinker/quantsim/internal/strategy/rsi"
	"go.uber.org/zap"
)

// Register adds every built-in strategy to r
func Register(r *strategy.Registry) {
	r.Register(ma_crossover.Name, ma_crossover.Factory)
	r.Register(rsi.Name, rsi.Factory)
	r.Register(linear_trend.Name, linear_trend.Factory)
	r.Register(autoregressive.Name, autoregressive.Factory)
}

// NewRegistry returns a registry holding the built-in strategies
func NewRegistry(logger *zap.Logger) *strategy.Registry {
	r := strategy.NewRegistry(logger)
	Register(r)
	return r
}
