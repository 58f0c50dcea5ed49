package strategy

import (
	"errors"
	"testing"

	"github.com/newthinker/quantsim/internal/core"
)

type fittedStrategy struct {
	fitted int
	seen   int
}

func (f *fittedStrategy) Name() string { return "fitted" }
func (f *fittedStrategy) Fit(history core.Series) error {
	f.fitted++
	f.seen = len(history)
	return nil
}
func (f *fittedStrategy) Position(history core.Series, current float64) (float64, error) {
	return 1, nil
}

func TestRegistry_RegisterAndBuild(t *testing.T) {
	reg := NewRegistry()
	reg.Register("always_long", func(p Params) (Strategy, error) {
		return Func("always_long", func(core.Series, float64) (float64, error) { return 1, nil }), nil
	})

	s, err := reg.Build("always_long", nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if s.Name() != "always_long" {
		t.Errorf("Name() = %s, want always_long", s.Name())
	}

	pos, err := s.Position(core.Series{{Close: 1}}, 0)
	if err != nil || pos != 1 {
		t.Errorf("Position() = %v, %v; want 1, nil", pos, err)
	}
}

func TestRegistry_BuildReturnsFreshInstances(t *testing.T) {
	reg := NewRegistry()
	reg.Register("fitted", func(p Params) (Strategy, error) { return &fittedStrategy{}, nil })

	a, _ := reg.Build("fitted", nil)
	b, _ := reg.Build("fitted", nil)
	if a == b {
		t.Error("expected distinct instances per build")
	}
}

func TestRegistry_UnknownStrategy(t *testing.T) {
	reg := NewRegistry()
	reg.Register("b", func(p Params) (Strategy, error) { return nil, nil })
	reg.Register("a", func(p Params) (Strategy, error) { return nil, nil })

	_, err := reg.Build("missing", nil)
	if !errors.Is(err, core.ErrUnknownStrategy) {
		t.Fatalf("expected ErrUnknownStrategy, got %v", err)
	}

	names := reg.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("Names() = %v, want [a b]", names)
	}
}

func TestRegistry_FactoryError(t *testing.T) {
	reg := NewRegistry()
	reg.Register("broken", func(p Params) (Strategy, error) { return nil, errors.New("bad window") })

	_, err := reg.Build("broken", nil)
	if !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestFit(t *testing.T) {
	history := core.Series{{Close: 1}, {Close: 2}, {Close: 3}}

	f := &fittedStrategy{}
	if err := Fit(f, history); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if f.fitted != 1 || f.seen != 3 {
		t.Errorf("fitted = %d, seen = %d; want 1, 3", f.fitted, f.seen)
	}

	plain := Func("plain", func(core.Series, float64) (float64, error) { return 0, nil })
	if err := Fit(plain, history); err != nil {
		t.Errorf("Fit() on a strategy without Fitter should be a no-op, got %v", err)
	}
}

func TestParams(t *testing.T) {
	p := Params{"window": 20, "threshold": "0.5", "ratio": 1.5, "bad": "x"}

	if n, err := p.Int("window", 0); err != nil || n != 20 {
		t.Errorf("Int(window) = %d, %v", n, err)
	}
	if n, err := p.Int("missing", 7); err != nil || n != 7 {
		t.Errorf("Int(missing) = %d, %v", n, err)
	}
	if f, err := p.Float("threshold", 0); err != nil || f != 0.5 {
		t.Errorf("Float(threshold) = %v, %v", f, err)
	}
	if f, err := p.Float("ratio", 0); err != nil || f != 1.5 {
		t.Errorf("Float(ratio) = %v, %v", f, err)
	}
	if _, err := p.Int("bad", 0); err == nil {
		t.Error("expected error for non-numeric param")
	}
}
