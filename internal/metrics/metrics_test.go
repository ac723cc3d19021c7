package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/cartsim/internal/cartpole"
	"github.com/san-kum/cartsim/internal/dynamo"
)

func TestEnergyObserve(t *testing.T) {
	m := cartpole.New(nil)
	e := NewEnergy(m)

	x := dynamo.State{0, math.Pi / 2, 0, 0}
	e.Observe(x, nil, 0)

	// Hanging->horizontal at rest: PE = m*g*L*(1-cos(pi/2)) = g.
	if math.Abs(e.Value()-cartpole.Gravity) > 1e-9 {
		t.Errorf("expected %v, got %v", cartpole.Gravity, e.Value())
	}

	e.Reset()
	if e.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	m := cartpole.New(nil)
	d := NewEnergyDrift(m)

	x0 := dynamo.State{0, 1.0, 0, 0}
	d.Observe(x0, nil, 0)
	if d.Value() != 0 {
		t.Errorf("expected zero drift at first sample, got %v", d.Value())
	}

	// Same energy state: pendulum mirrored.
	d.Observe(dynamo.State{0, -1.0, 0, 0}, nil, 0.01)
	if d.Value() > 1e-12 {
		t.Errorf("expected no drift for mirrored state, got %v", d.Value())
	}

	// Raised pendulum: drift must register.
	d.Observe(dynamo.State{0, 2.0, 0, 0}, nil, 0.02)
	if d.Value() == 0 {
		t.Error("expected non-zero drift for raised pendulum")
	}
}

func TestExcursion(t *testing.T) {
	e := NewExcursion(1.0)

	e.Observe(dynamo.State{0.5, 0, 0, 0}, nil, 0)
	e.Observe(dynamo.State{-2.0, 0, 0, 0}, nil, 0.01)

	if e.Value() != 0.5 {
		t.Errorf("expected 0.5 in-bound fraction, got %v", e.Value())
	}
	if e.MaxAbs() != 2.0 {
		t.Errorf("expected max displacement 2.0, got %v", e.MaxAbs())
	}

	e.Reset()
	if e.Value() != 1.0 || e.MaxAbs() != 0 {
		t.Error("reset did not clear excursion metric")
	}
}
