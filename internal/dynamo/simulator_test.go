package dynamo

import (
	"context"
	"errors"
	"math"
	"testing"
)

type decay struct{}

func (d *decay) Derive(x State, t float64) State { return State{-x[0]} }
func (d *decay) StateDim() int                   { return 1 }

type quadraticBlowup struct{}

func (q *quadraticBlowup) Derive(x State, t float64) State { return State{x[0] * x[0]} }
func (q *quadraticBlowup) StateDim() int                   { return 1 }

type eulerStep struct{}

func (e *eulerStep) Step(dyn System, x State, t float64, dt float64) State {
	dx := dyn.Derive(x, t)
	result := make(State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}

func TestSimulatorRun(t *testing.T) {
	sim := New(&decay{}, &eulerStep{})

	cfg := DefaultConfig()
	cfg.T0 = 0.0
	cfg.T1 = 1.0
	cfg.Dt = 0.1

	result, err := sim.Run(context.Background(), State{1.0}, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.States) != 11 {
		t.Errorf("expected 11 states, got %d", len(result.States))
	}
	if len(result.Times) != len(result.States) {
		t.Errorf("times/states length mismatch: %d vs %d", len(result.Times), len(result.States))
	}
	if got := result.Times[len(result.Times)-1]; math.Abs(got-1.0) > 1e-12 {
		t.Errorf("final time %f, want 1.0", got)
	}

	final := result.States[len(result.States)-1][0]
	expected := math.Exp(-1.0)
	if math.Abs(final-expected) > 0.2 {
		t.Errorf("expected final state ~%.4f, got %.4f", expected, final)
	}
}

func TestSimulatorNonzeroStart(t *testing.T) {
	sim := New(&decay{}, &eulerStep{})

	cfg := DefaultConfig()
	cfg.T0 = 2.0
	cfg.T1 = 3.0
	cfg.Dt = 0.25

	result, err := sim.Run(context.Background(), State{1.0}, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Times[0] != 2.0 {
		t.Errorf("trajectory should start at t0, got %f", result.Times[0])
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(&decay{}, &eulerStep{})

	tests := []struct {
		name     string
		cfg      Config
		wantSpan bool
	}{
		{"zero dt", Config{Dt: 0, T1: 1.0}, false},
		{"negative dt", Config{Dt: -0.1, T1: 1.0}, false},
		{"empty span", Config{Dt: 0.1, T0: 1.0, T1: 1.0}, true},
		{"reversed span", Config{Dt: 0.1, T0: 2.0, T1: 1.0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), State{1.0}, tt.cfg)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.wantSpan && !errors.Is(err, ErrInvalidTimeSpan) {
				t.Errorf("expected ErrInvalidTimeSpan, got %v", err)
			}
		})
	}
}

func TestSimulatorDivergenceGuard(t *testing.T) {
	sim := New(&quadraticBlowup{}, &eulerStep{})

	cfg := DefaultConfig()
	cfg.T1 = 100.0
	cfg.Dt = 0.5
	cfg.Bound = 1e3

	result, err := sim.Run(context.Background(), State{1.0}, cfg)
	if !errors.Is(err, ErrDiverged) {
		t.Fatalf("expected ErrDiverged, got %v", err)
	}

	var simErr *SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected *SimulationError, got %T", err)
	}
	if simErr.Step == 0 {
		t.Error("divergence error should carry the step count")
	}
	if result == nil || len(result.States) == 0 {
		t.Error("partial trajectory should be returned on divergence")
	}
}

func TestSimulatorContextCancel(t *testing.T) {
	sim := New(&decay{}, &eulerStep{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := DefaultConfig()
	_, err := sim.Run(ctx, State{1.0}, cfg)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

type meanMetric struct {
	count int
	sum   float64
}

func (m *meanMetric) Name() string               { return "mean" }
func (m *meanMetric) Observe(x State, t float64) { m.count++; m.sum += x[0] }
func (m *meanMetric) Value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}
func (m *meanMetric) Reset() { m.count = 0; m.sum = 0 }

func TestSimulatorMetrics(t *testing.T) {
	sim := New(&decay{}, &eulerStep{})

	metric := &meanMetric{}
	sim.AddMetric(metric)

	cfg := DefaultConfig()
	cfg.T1 = 1.0
	cfg.Dt = 0.1

	result, err := sim.Run(context.Background(), State{1.0}, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if _, ok := result.Metrics["mean"]; !ok {
		t.Error("metric not found in result")
	}
	if metric.count != 10 {
		t.Errorf("expected 10 observations, got %d", metric.count)
	}
}

func TestEnsembleSeeds(t *testing.T) {
	var mu struct {
		seeds []int64
	}
	var lock = make(chan struct{}, 1)
	lock <- struct{}{}

	fn := func(ctx context.Context, seed int64) (*Result, error) {
		<-lock
		mu.seeds = append(mu.seeds, seed)
		lock <- struct{}{}
		return &Result{Sampled: map[string]float64{"seed": float64(seed)}}, nil
	}

	results, err := NewEnsemble(4, 100, fn).Run(context.Background())
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	// Results keep run order regardless of completion order.
	for i, r := range results {
		if r.Sampled["seed"] != float64(100+i) {
			t.Errorf("slot %d has seed %f, want %d", i, r.Sampled["seed"], 100+i)
		}
	}
	if len(mu.seeds) != 4 {
		t.Errorf("expected 4 runs, got %d", len(mu.seeds))
	}
}

func TestEnsembleError(t *testing.T) {
	boom := errors.New("boom")
	fn := func(ctx context.Context, seed int64) (*Result, error) {
		if seed == 1 {
			return nil, boom
		}
		return &Result{}, nil
	}

	_, err := NewEnsemble(3, 0, fn).Run(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("expected run error to surface, got %v", err)
	}
}
