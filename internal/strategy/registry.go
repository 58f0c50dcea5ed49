package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/newthinker/quantsim/internal/core"
	"go.uber.org/zap"
)

// Factory builds a fresh strategy instance from parameters
type Factory func(params Params) (Strategy, error)

// Registry maps strategy names to factories
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	logger    *zap.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger ...*zap.Logger) *Registry {
	var l *zap.Logger
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	} else {
		l = zap.NewNop()
	}
	return &Registry{
		factories: make(map[string]Factory),
		logger:    l,
	}
}

// Register adds a factory under name, replacing any previous one
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Build instantiates the named strategy. Each call returns a new instance,
// so fitted state is never shared between runs.
func (r *Registry) Build(name string, params Params) (Strategy, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, core.WrapError(core.ErrUnknownStrategy,
			fmt.Errorf("%q, available strategies: %v", name, r.Names()))
	}

	s, err := f(params)
	if err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("strategy %s: %w", name, err))
	}
	r.logger.Debug("strategy built",
		zap.String("strategy", name),
		zap.Any("params", params),
	)
	return s, nil
}

// Names returns the registered strategy names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
