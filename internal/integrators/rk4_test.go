package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/ratenet/internal/dynamo"
)

type harmonicOscillator struct{}

func (h *harmonicOscillator) StateDim() int { return 2 }

func (h *harmonicOscillator) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (h *harmonicOscillator) Energy(x dynamo.State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

func TestRK4Accuracy(t *testing.T) {
	dyn := &harmonicOscillator{}
	integ := NewRK4()

	x := dynamo.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestRK4DoesNotMutateInput(t *testing.T) {
	dyn := &harmonicOscillator{}
	integ := NewRK4()

	x := dynamo.State{1.0, 0.0}
	before := x.Clone()
	_ = integ.Step(dyn, x, 0, 0.1)

	for i := range x {
		if x[i] != before[i] {
			t.Fatalf("input state mutated at %d: %f -> %f", i, before[i], x[i])
		}
	}
}

// Halving the step size must shrink the error against the analytic
// solution, for every fixed-step integrator.
func TestStepHalvingConverges(t *testing.T) {
	dyn := &harmonicOscillator{}
	span := 1.0

	integrate := func(integ dynamo.Integrator, dt float64) dynamo.State {
		x := dynamo.State{1.0, 0.0}
		steps := int(span / dt)
		for i := 0; i < steps; i++ {
			x = integ.Step(dyn, x, float64(i)*dt, dt)
		}
		return x
	}

	exact := dynamo.State{math.Cos(span), -math.Sin(span)}

	tests := []struct {
		name  string
		integ dynamo.Integrator
	}{
		{"euler", NewEuler()},
		{"rk4", NewRK4()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coarse := integrate(tt.integ, 0.01).Sub(exact).Norm()
			fine := integrate(tt.integ, 0.005).Sub(exact).Norm()
			if fine >= coarse {
				t.Errorf("error did not shrink with halved step: %.3e -> %.3e", coarse, fine)
			}
		})
	}
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		if _, err := ByName(name); err != nil {
			t.Errorf("ByName(%s) failed: %v", name, err)
		}
	}
	if _, err := ByName("simpson"); err == nil {
		t.Error("expected error for unknown integrator")
	}
}
