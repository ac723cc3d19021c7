package dynamo

import (
	"context"
	"errors"
	"math"
	"testing"
)

type decayDynamics struct{}

func (d *decayDynamics) Derive(x State, u Control, t float64) State {
	force := 0.0
	if len(u) > 0 {
		force = u[0]
	}
	return State{-x[0] + force}
}

func (d *decayDynamics) StateDim() int   { return 1 }
func (d *decayDynamics) ControlDim() int { return 1 }

type eulerStep struct{}

func (e *eulerStep) Step(dyn System, x State, u Control, t float64, dt float64) State {
	dx := dyn.Derive(x, u, t)
	result := make(State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}

func TestSimulatorRun(t *testing.T) {
	sim := New(&decayDynamics{}, &eulerStep{}, nil)

	cfg := Config{Dt: 0.1, Duration: 1.0}
	result, err := sim.Run(context.Background(), State{1.0}, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.States) != 11 {
		t.Errorf("expected 11 states, got %d", len(result.States))
	}
	if len(result.Times) != 11 {
		t.Errorf("expected 11 times, got %d", len(result.Times))
	}
	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}

	finalState := result.States[len(result.States)-1][0]
	expected := math.Exp(-1.0)
	if math.Abs(finalState-expected) > 0.2 {
		t.Errorf("expected final state ~%.4f, got %.4f", expected, finalState)
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(&decayDynamics{}, &eulerStep{}, nil)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0}},
		{"NaN dt", Config{Dt: math.NaN(), Duration: 1.0}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
		{"negative duration", Config{Dt: 0.1, Duration: -1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := sim.Run(context.Background(), State{1.0}, tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSimulatorDimensionMismatch(t *testing.T) {
	sim := New(&decayDynamics{}, &eulerStep{}, nil)

	_, err := sim.Run(context.Background(), State{1.0, 2.0}, Config{Dt: 0.1, Duration: 1.0})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestSimulatorForceFunc(t *testing.T) {
	// Constant input drives x toward the input value for dx = -x + u.
	sim := New(&decayDynamics{}, &eulerStep{}, ConstantForce(2.0))

	result, err := sim.Run(context.Background(), State{0.0}, Config{Dt: 0.01, Duration: 10.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	final := result.States[len(result.States)-1][0]
	if math.Abs(final-2.0) > 0.05 {
		t.Errorf("expected final state ~2.0, got %.4f", final)
	}
	if len(result.Controls) == 0 || result.Controls[0][0] != 2.0 {
		t.Error("controls not recorded")
	}
}

type countingMetric struct {
	count int
	sum   float64
}

func (m *countingMetric) Name() string { return "test" }
func (m *countingMetric) Observe(x State, u Control, t float64) {
	m.count++
	m.sum += x[0]
}
func (m *countingMetric) Value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}
func (m *countingMetric) Reset() {
	m.count = 0
	m.sum = 0
}

func TestSimulatorMetrics(t *testing.T) {
	sim := New(&decayDynamics{}, &eulerStep{}, nil)

	metric := &countingMetric{}
	sim.AddMetric(metric)

	result, err := sim.Run(context.Background(), State{1.0}, Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}
	if metric.count != 10 {
		t.Errorf("expected 10 observations, got %d", metric.count)
	}
}

func TestSimulatorCanceled(t *testing.T) {
	sim := New(&decayDynamics{}, &eulerStep{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.Run(ctx, State{1.0}, Config{Dt: 0.1, Duration: 1.0})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestEnsembleIndependentRuns(t *testing.T) {
	e := NewEnsemble(
		func(run int) System { return &decayDynamics{} },
		func(run int) Integrator { return &eulerStep{} },
		nil,
		4,
	)

	results, err := e.Run(context.Background(), State{1.0}, Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("ensemble run failed: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}

	// Deterministic dynamics: every run must agree exactly.
	first := results[0].States[len(results[0].States)-1][0]
	for i, r := range results {
		got := r.States[len(r.States)-1][0]
		if got != first {
			t.Errorf("run %d diverged: %v vs %v", i, got, first)
		}
	}
}
