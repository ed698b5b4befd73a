package dynamo

import (
	"context"
	"fmt"
)

type Simulator struct {
	dyn        System
	integrator Integrator
	metrics    []Metric
	observers  []Observer
}

func New(dyn System, integrator Integrator) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run integrates from x0 over [cfg.T0, cfg.T1] and returns the trajectory.
// On divergence the partial trajectory is returned together with a
// *SimulationError wrapping ErrDiverged.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	estimate := int((cfg.T1-cfg.T0)/cfg.Dt) + 2
	result := &Result{
		Times:   make([]float64, 0, estimate),
		States:  make([]State, 0, estimate),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := cfg.T0
	dt := cfg.Dt

	result.Times = append(result.Times, t)
	result.States = append(result.States, x.Clone())

	// Tolerance on the end of the span absorbs accumulated rounding in t.
	for cfg.T1-t > 1e-9*cfg.Dt {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		for _, m := range s.metrics {
			m.Observe(x, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, t)
		}

		// Never overshoot the end of the span.
		if t+dt > cfg.T1 {
			dt = cfg.T1 - t
		}

		var newX State
		if cfg.Adaptive {
			var taken, next float64
			var err error
			newX, taken, next, err = s.adaptiveStep(x, t, dt, cfg)
			if err != nil {
				return result, &SimulationError{Step: result.StepsTaken, Time: t, State: x, Wrapped: err}
			}
			t += taken
			dt = next
		} else {
			newX = s.integrator.Step(s.dyn, x, t, dt)
			t += dt
		}

		x = newX
		result.StepsTaken++

		if !x.IsValid() {
			return result, &SimulationError{Step: result.StepsTaken, Time: t, State: x, Wrapped: ErrInvalidState}
		}
		if cfg.Bound > 0 && x.MaxAbs() > cfg.Bound {
			return result, &SimulationError{Step: result.StepsTaken, Time: t, State: x, Wrapped: ErrDiverged}
		}

		result.Times = append(result.Times, t)
		result.States = append(result.States, x.Clone())
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.T1 <= cfg.T0 {
		return ErrInvalidTimeSpan
	}
	if cfg.Adaptive && cfg.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive for adaptive stepping")
	}
	return nil
}

// adaptiveStep advances one step, returning the width actually taken and
// the suggested width for the next step.
func (s *Simulator) adaptiveStep(x State, t, dt float64, cfg Config) (State, float64, float64, error) {
	if adaptive, ok := s.integrator.(AdaptiveIntegrator); ok {
		newX, next, err := adaptive.StepAdaptive(s.dyn, x, t, dt, cfg.Tolerance)
		if err != nil {
			return nil, 0, 0, err
		}
		if cfg.MaxDt > 0 && next > cfg.MaxDt {
			next = cfg.MaxDt
		}
		if cfg.MinDt > 0 && next < cfg.MinDt {
			return nil, 0, 0, ErrStepTooSmall
		}
		return newX, dt, next, nil
	}

	// Step-doubling fallback for fixed-step integrators.
	x1 := s.integrator.Step(s.dyn, x, t, dt)
	xHalf := s.integrator.Step(s.dyn, x, t, dt/2)
	x2 := s.integrator.Step(s.dyn, xHalf, t+dt/2, dt/2)

	errEst := x1.Sub(x2).Norm()
	if errEst > cfg.Tolerance {
		if dt/2 < cfg.MinDt {
			return nil, 0, 0, ErrStepTooSmall
		}
		return s.adaptiveStep(x, t, dt/2, cfg)
	}

	next := dt
	if errEst < cfg.Tolerance/10 && (cfg.MaxDt <= 0 || dt*2 <= cfg.MaxDt) {
		next = dt * 2
	}
	return x2, dt, next, nil
}
