package dynamo

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// MaxAbs returns the largest component magnitude, the quantity checked by
// the divergence guard.
func (s State) MaxAbs() float64 {
	m := 0.0
	for _, v := range s {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// System is an ODE right-hand side, dX/dt = f(X, t). Derive must treat x
// as read-only and return a fresh vector.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) State
}

type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(dyn System, x State, t, dt, tol float64) (State, float64, error)
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, t float64)
}

type Config struct {
	T0        float64
	T1        float64
	Dt        float64
	Seed      int64
	Tolerance float64
	MaxDt     float64
	MinDt     float64
	Adaptive  bool
	Bound     float64 // divergence guard on MaxAbs; <= 0 means unbounded
}

func DefaultConfig() Config {
	return Config{
		T0:        0.0,
		T1:        10.0,
		Dt:        0.01,
		Tolerance: 1e-6,
		MaxDt:     0.1,
		MinDt:     1e-8,
		Adaptive:  false,
		Bound:     1e9,
	}
}

// Result is one run's trajectory plus bookkeeping. States[i] is the state
// vector at Times[i], in the model's declared state order. Sampled records
// the concrete value drawn for each uncertain parameter of the run.
type Result struct {
	Times      []float64
	States     []State
	Metrics    map[string]float64
	Sampled    map[string]float64
	StepsTaken int
}
