package cartpole

import (
	"fmt"
	"math"

	"github.com/san-kum/cartsim/internal/dynamo"
	"github.com/san-kum/cartsim/internal/integrators"
)

// Gravity is the gravitational acceleration used by every model instance.
const Gravity = 9.81

// State vector layout.
const (
	IdxPos = iota
	IdxTheta
	IdxVel
	IdxOmega
	StateDim
)

// Model is a cart sliding on a horizontal axis carrying a pendulum with its
// mass concentrated at the tip. The state is (x, theta, xDot, thetaDot),
// with theta = 0 the hanging (stable) equilibrium and theta = pi the
// inverted (unstable) one. Theta is never normalized.
//
// A Model owns its state exclusively and has no hidden mode: each Advance
// recomputes the derivative from the current state and replaces the state
// wholesale. Instances are not safe for concurrent use; parameter sweeps
// need one Model per goroutine.
type Model struct {
	cartMass       float64
	pendulumMass   float64
	pendulumLength float64
	viscosity      float64
	force          float64

	state dynamo.State
	integ dynamo.Integrator
}

// New returns a model with unit masses and length, zero damping and force,
// at rest at the hanging equilibrium. A nil integrator defaults to RK4.
func New(integ dynamo.Integrator) *Model {
	if integ == nil {
		integ = integrators.NewRK4()
	}
	return &Model{
		cartMass:       1.0,
		pendulumMass:   1.0,
		pendulumLength: 1.0,
		state:          make(dynamo.State, StateDim),
		integ:          integ,
	}
}

func (m *Model) StateDim() int   { return StateDim }
func (m *Model) ControlDim() int { return 1 }

func (m *Model) CartMass() float64       { return m.cartMass }
func (m *Model) PendulumMass() float64   { return m.pendulumMass }
func (m *Model) PendulumLength() float64 { return m.pendulumLength }
func (m *Model) Viscosity() float64      { return m.viscosity }
func (m *Model) Force() float64          { return m.force }

// SetParameters replaces all three physical parameters. The equations of
// motion divide by mass and length terms, so each must be strictly positive.
func (m *Model) SetParameters(cartMass, pendulumMass, pendulumLength float64) error {
	if cartMass <= 0 || math.IsNaN(cartMass) || math.IsInf(cartMass, 0) {
		return fmt.Errorf("%w: cart mass must be positive, got %g", dynamo.ErrInvalidParameter, cartMass)
	}
	if pendulumMass <= 0 || math.IsNaN(pendulumMass) || math.IsInf(pendulumMass, 0) {
		return fmt.Errorf("%w: pendulum mass must be positive, got %g", dynamo.ErrInvalidParameter, pendulumMass)
	}
	if pendulumLength <= 0 || math.IsNaN(pendulumLength) || math.IsInf(pendulumLength, 0) {
		return fmt.Errorf("%w: pendulum length must be positive, got %g", dynamo.ErrInvalidParameter, pendulumLength)
	}
	m.cartMass = cartMass
	m.pendulumMass = pendulumMass
	m.pendulumLength = pendulumLength
	return nil
}

// SetViscosity sets the damping coefficient applied to both generalized
// velocities. Zero disables damping.
func (m *Model) SetViscosity(lambda float64) error {
	if lambda < 0 || math.IsNaN(lambda) || math.IsInf(lambda, 0) {
		return fmt.Errorf("%w: viscosity must be non-negative, got %g", dynamo.ErrInvalidParameter, lambda)
	}
	m.viscosity = lambda
	return nil
}

// SetForce sets the horizontal force applied to the cart on subsequent
// Advance calls. The force is an open-loop input, held constant until
// changed by the caller.
func (m *Model) SetForce(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: force must be finite, got %g", dynamo.ErrInvalidParameter, f)
	}
	m.force = f
	return nil
}

// SetState replaces the state wholesale. The prior state is kept on error.
func (m *Model) SetState(s dynamo.State) error {
	if len(s) != StateDim {
		return fmt.Errorf("%w: need %d components, got %d", dynamo.ErrInvalidState, StateDim, len(s))
	}
	if !s.IsValid() {
		return fmt.Errorf("%w: %v", dynamo.ErrInvalidState, []float64(s))
	}
	m.state = s.Clone()
	return nil
}

// State returns a copy of the current state.
func (m *Model) State() dynamo.State {
	return m.state.Clone()
}

// Derive computes the state derivative from the equations of motion. It is a
// pure function of the parameters and the supplied state; u[0], when
// present, is a horizontal force on the cart.
//
// With M the cart mass, m the pendulum mass, L its length, lambda the
// viscosity and s, c = sin(theta), cos(theta):
//
//	denom = M + m s^2
//	xDD   = (F - lambda xDot + m s (L thDot^2 + g c) + lambda thDot c / L) / denom
//	thDD  = (-c (F - lambda xDot) - m L thDot^2 s c - (M+m) g s
//	         - (M+m) lambda thDot / (m L)) / (L denom)
func (m *Model) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	theta := x[IdxTheta]
	xDot := x[IdxVel]
	thDot := x[IdxOmega]

	force := m.force
	if len(u) > 0 {
		force = u[0]
	}

	mc := m.cartMass
	mp := m.pendulumMass
	l := m.pendulumLength
	lam := m.viscosity

	s := math.Sin(theta)
	c := math.Cos(theta)

	denom := mc + mp*s*s
	drive := force - lam*xDot

	xDD := (drive + mp*s*(l*thDot*thDot+Gravity*c) + lam*thDot*c/l) / denom
	thDD := (-c*drive - mp*l*thDot*thDot*s*c - (mc+mp)*Gravity*s - (mc+mp)*lam*thDot/(mp*l)) / (l * denom)

	return dynamo.State{xDot, thDot, xDD, thDD}
}

// Advance integrates the state forward by dt and replaces it with the
// result. Parameters are untouched; a rejected dt leaves the state as is.
func (m *Model) Advance(dt float64) error {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: dt must be positive and finite, got %g", dynamo.ErrInvalidStep, dt)
	}
	u := dynamo.Control{m.force}
	m.state = m.integ.Step(m, m.state, u, 0, dt)
	return nil
}

// Energy returns the total mechanical energy of the given state, measured
// from the hanging rest position.
func (m *Model) Energy(x dynamo.State) float64 {
	theta := x[IdxTheta]
	xDot := x[IdxVel]
	thDot := x[IdxOmega]

	l := m.pendulumLength
	tipVx := xDot + l*math.Cos(theta)*thDot
	tipVy := l * math.Sin(theta) * thDot

	ke := 0.5*m.cartMass*xDot*xDot + 0.5*m.pendulumMass*(tipVx*tipVx+tipVy*tipVy)
	pe := m.pendulumMass * Gravity * l * (1.0 - math.Cos(theta))
	return ke + pe
}

func (m *Model) GetParams() map[string]float64 {
	return map[string]float64{
		"cart_mass":       m.cartMass,
		"pendulum_mass":   m.pendulumMass,
		"pendulum_length": m.pendulumLength,
		"viscosity":       m.viscosity,
		"force":           m.force,
	}
}

func (m *Model) SetParam(name string, value float64) error {
	switch name {
	case "cart_mass":
		return m.SetParameters(value, m.pendulumMass, m.pendulumLength)
	case "pendulum_mass":
		return m.SetParameters(m.cartMass, value, m.pendulumLength)
	case "pendulum_length":
		return m.SetParameters(m.cartMass, m.pendulumMass, value)
	case "viscosity":
		return m.SetViscosity(value)
	case "force":
		return m.SetForce(value)
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
}
