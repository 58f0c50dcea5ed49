package strategy

import (
	"github.com/newthinker/quantsim/internal/core"
)

// Strategy decides a target exposure in [-1, 1] from the history observed so
// far. history ends at the bar being decided and must not be modified.
type Strategy interface {
	Name() string
	Position(history core.Series, current float64) (float64, error)
}

// Fitter is implemented by strategies that calibrate once on the full price
// history before the simulation starts. Strategies without it are not fitted.
type Fitter interface {
	Fit(history core.Series) error
}

// Fit calibrates s if it implements Fitter
func Fit(s Strategy, history core.Series) error {
	if f, ok := s.(Fitter); ok {
		return f.Fit(history)
	}
	return nil
}

// PositionFunc is the signature of a stateless strategy
type PositionFunc func(history core.Series, current float64) (float64, error)

type funcStrategy struct {
	name string
	fn   PositionFunc
}

// Func wraps a plain function as a Strategy
func Func(name string, fn PositionFunc) Strategy {
	return &funcStrategy{name: name, fn: fn}
}

func (f *funcStrategy) Name() string {
	return f.name
}

func (f *funcStrategy) Position(history core.Series, current float64) (float64, error) {
	return f.fn(history, current)
}
