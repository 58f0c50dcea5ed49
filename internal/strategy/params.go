package strategy

import (
	"fmt"

	"github.com/spf13/cast"
)

// Params holds strategy parameters as decoded from configuration or flags
type Params map[string]any

// Int returns the named parameter as an int, or def when absent
func (p Params) Int(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, fmt.Errorf("param %s: %w", key, err)
	}
	return n, nil
}

// Float returns the named parameter as a float64, or def when absent
func (p Params) Float(key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("param %s: %w", key, err)
	}
	return f, nil
}
