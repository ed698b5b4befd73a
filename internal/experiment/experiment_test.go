package experiment

import (
	"context"
	"math"
	"os"
	"testing"

	"github.com/san-kum/ratenet/internal/dynamo"
	"github.com/san-kum/ratenet/internal/petri"
)

func halfar(t *testing.T) *petri.Model {
	t.Helper()
	data, err := os.ReadFile("../../examples/halfar.json")
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	m, err := petri.Load(data)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return m
}

func baseConfig() Config {
	return Config{
		Integrator: "rk4",
		T0:         0.0,
		T1:         1.0,
		Dt:         0.01,
		Seed:       42,
		Bound:      1e6,
	}
}

func TestRunHalfar(t *testing.T) {
	exp := New(halfar(t), baseConfig())

	result, err := exp.Run(context.Background(), 42)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.States) != 101 {
		t.Errorf("expected 101 trajectory points, got %d", len(result.States))
	}
	if len(result.States[0]) != 5 {
		t.Errorf("state vectors should have 5 components, got %d", len(result.States[0]))
	}
	if result.Times[0] != 0.0 {
		t.Errorf("trajectory should start at t0, got %f", result.Times[0])
	}
	if len(result.Sampled) != 0 {
		t.Errorf("non-sampling run should record no draws, got %v", result.Sampled)
	}

	// The net is flux-balanced, so integration must conserve total mass.
	if drift := result.Metrics["mass_drift"]; drift > 1e-9 {
		t.Errorf("mass drift too high: %e", drift)
	}
}

func TestRunDeterministic(t *testing.T) {
	exp := New(halfar(t), baseConfig())

	a, err := exp.Run(context.Background(), 7)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	b, err := exp.Run(context.Background(), 7)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	for i := range a.States {
		for j := range a.States[i] {
			if a.States[i][j] != b.States[i][j] {
				t.Fatalf("runs with identical inputs diverged at step %d slot %d", i, j)
			}
		}
	}
}

func TestRunSampled(t *testing.T) {
	cfg := baseConfig()
	cfg.Sample = true
	exp := New(halfar(t), cfg)

	result, err := exp.Run(context.Background(), 99)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	gamma, ok := result.Sampled["gamma"]
	if !ok {
		t.Fatal("sampled run should record the gamma draw")
	}
	if gamma < 0.0 || gamma > 2.0 {
		t.Errorf("gamma draw out of declared bounds: %f", gamma)
	}

	// Same seed, same draw, same trajectory.
	again, err := exp.Run(context.Background(), 99)
	if err != nil {
		t.Fatalf("repeat run failed: %v", err)
	}
	if again.Sampled["gamma"] != gamma {
		t.Errorf("same seed should reproduce the draw: %f vs %f", again.Sampled["gamma"], gamma)
	}
}

func TestRunEnsemble(t *testing.T) {
	cfg := baseConfig()
	cfg.Sample = true
	cfg.Runs = 4
	exp := New(halfar(t), cfg)

	results, err := exp.RunEnsemble(context.Background())
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}

	draws := make(map[float64]bool)
	for _, r := range results {
		draws[r.Sampled["gamma"]] = true
	}
	if len(draws) < 2 {
		t.Error("distinct seeds should produce distinct draws")
	}
}

func TestConvergenceUnderStepRefinement(t *testing.T) {
	model := halfar(t)

	run := func(dt float64) dynamo.State {
		cfg := baseConfig()
		cfg.Integrator = "euler"
		cfg.Dt = dt
		result, err := New(model, cfg).Run(context.Background(), 1)
		if err != nil {
			t.Fatalf("run with dt=%f failed: %v", dt, err)
		}
		return result.States[len(result.States)-1]
	}

	ref := run(0.00125)
	coarse := run(0.01).Sub(ref).Norm()
	fine := run(0.005).Sub(ref).Norm()

	if fine >= coarse {
		t.Errorf("halving dt should move the solution toward the reference: %.3e -> %.3e", coarse, fine)
	}
	if math.IsNaN(fine) || math.IsNaN(coarse) {
		t.Error("refinement produced NaN")
	}
}

func TestUnknownIntegrator(t *testing.T) {
	cfg := baseConfig()
	cfg.Integrator = "simpson"
	if _, err := New(halfar(t), cfg).Run(context.Background(), 1); err == nil {
		t.Error("expected error for unknown integrator")
	}
}
